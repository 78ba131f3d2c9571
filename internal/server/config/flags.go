package config

import (
	"flag"

	"github.com/sethnnections/authkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   gRPC bind address
//	-w string   HTTP bind address
//	-d string   PostgreSQL DSN
//	-s string   access token secret
//	-rs string  refresh token secret
//	-t int      access token ttl, minutes
//	-r int      refresh token ttl, minutes
//	-storage, -ledger, -notifier, -redis, -client-url, -env
//	-u, -p, -b, -g, -e  S3 user, password, bucket, region, endpoint
//	-k string   Kafka brokers, comma-separated
//
// Only the flags listed here are parsed, so other components may define
// their own.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{
		"-a", "-w", "-d", "-s", "-rs", "-t", "-r",
		"-storage", "-ledger", "-notifier", "-redis", "-client-url", "-env",
		"-u", "-p", "-b", "-g", "-e", "-k",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessSecret, "s", config.AccessSecret, "access token secret")
	fs.StringVar(&config.RefreshSecret, "rs", config.RefreshSecret, "refresh token secret")
	fs.Var(flagx.Minutes{D: &config.AccessTokenTTL}, "t", "access token ttl (in minutes)")
	fs.Var(flagx.Minutes{D: &config.RefreshTokenTTL}, "r", "refresh token ttl (in minutes)")

	fs.StringVar(&config.Storage, "storage", config.Storage, "user storage: memory or postgres")
	fs.StringVar(&config.Ledger, "ledger", config.Ledger, "token ledger: sql or redis")
	fs.StringVar(&config.Notifier, "notifier", config.Notifier, "notifier: log, rabbitmq, kafka or s3")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address")
	fs.StringVar(&config.ClientURL, "client-url", config.ClientURL, "base URL for links in emails")
	fs.StringVar(&config.Env, "env", config.Env, "environment: local, dev or prod")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.Var(flagx.List{S: &config.KafkaBrokers}, "k", "kafka brokers, comma-separated")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
