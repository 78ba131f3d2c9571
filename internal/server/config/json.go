package config

import (
	"encoding/json"
	"os"

	"github.com/sethnnections/authkeeper/internal/flagx"
	"github.com/sethnnections/authkeeper/internal/timex"
)

// JsonConfig is the shape of the config file. Durations accept "15m" or an
// integer number of nanoseconds. Empty and zero fields leave the current
// value alone.
type JsonConfig struct {
	Env                   string              `json:"env"`
	EndpointAddrGRPC      string              `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP      string              `json:"endpoint_addr_http"`
	Storage               string              `json:"storage"`
	Ledger                string              `json:"ledger"`
	DatabaseDSN           string              `json:"database_dsn"`
	RedisAddr             string              `json:"redis_addr"`
	RedisPrefix           string              `json:"redis_prefix"`
	AccessSecret          string              `json:"access_secret"`
	RefreshSecret         string              `json:"refresh_secret"`
	AccessTokenTTL        timex.Duration      `json:"access_token_ttl"`
	RefreshTokenTTL       timex.Duration      `json:"refresh_token_ttl"`
	ResetPasswordTokenTTL timex.Duration      `json:"reset_password_token_ttl"`
	VerifyEmailTokenTTL   timex.Duration      `json:"verify_email_token_ttl"`
	ClientURL             string              `json:"client_url"`
	Notifier              string              `json:"notifier"`
	RabbitMQURL           string              `json:"rabbitmq_url"`
	RabbitMQQueue         string              `json:"rabbitmq_queue"`
	KafkaBrokers          []string            `json:"kafka_brokers"`
	KafkaTopic            string              `json:"kafka_topic"`
	S3RootUser            string              `json:"s3_root_user"`
	S3RootPassword        string              `json:"s3_root_password"`
	S3Bucket              string              `json:"s3_bucket"`
	S3Region              string              `json:"s3_region"`
	S3BaseEndpoint        string              `json:"s3_base_endpoint"`
	Roles                 map[string][]string `json:"roles"`
}

// parseJson overlays the file named by -c/-config, if any. A missing or
// malformed file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.Env, c.Env)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.Storage, c.Storage)
	setString(&config.Ledger, c.Ledger)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPrefix, c.RedisPrefix)
	setString(&config.AccessSecret, c.AccessSecret)
	setString(&config.RefreshSecret, c.RefreshSecret)
	setString(&config.ClientURL, c.ClientURL)
	setString(&config.Notifier, c.Notifier)
	setString(&config.RabbitMQURL, c.RabbitMQURL)
	setString(&config.RabbitMQQueue, c.RabbitMQQueue)
	setString(&config.KafkaTopic, c.KafkaTopic)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration != 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.ResetPasswordTokenTTL.Duration != 0 {
		config.ResetPasswordTokenTTL = c.ResetPasswordTokenTTL.Duration
	}
	if c.VerifyEmailTokenTTL.Duration != 0 {
		config.VerifyEmailTokenTTL = c.VerifyEmailTokenTTL.Duration
	}
	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
	if len(c.Roles) > 0 {
		config.Roles = c.Roles
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
