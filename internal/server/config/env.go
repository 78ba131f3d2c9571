package config

import "github.com/ilyakaznacheev/cleanenv"

// parseEnv overlays AUTH_* variables. Unset variables keep the current value.
func parseEnv(config *Config) {
	if err := cleanenv.ReadEnv(config); err != nil {
		panic(err)
	}
}
