// Package config holds the CLI client's settings: defaults, then a JSON file
// named by -c/-config, then flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the CLI.
//
// ServerEndpointAddr is the host:port of the gRPC endpoint. The CLI pings
// the health service every OnlineCheckInterval and gives each request
// RequestTimeout to complete.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
