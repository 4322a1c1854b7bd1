package config

import (
	"flag"
	"io"

	"github.com/tentech-me/tentech-api/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8000")
//	-r string     gRPC health bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-k string     token secret key, base64url of 32 bytes
//	-t duration   token validity (e.g., "24h")
//	-l string     activation base URL
//	-m string     mail provider: smtp, sendgrid, mailgun or log
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-w string     public base URL of uploaded objects
//	-o duration   request timeout
//	-v string     log level
//
// Unknown arguments, such as -c, are filtered out first.
func parseFlags(config *Config, args []string) error {
	args = flagx.Filter(args, []string{
		"-a", "-r", "-d", "-k", "-t", "-l", "-m", "-u", "-p", "-b", "-g", "-e", "-w", "-o", "-v",
	})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "r", config.GRPCAddr, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TokenSecretKey, "k", config.TokenSecretKey, "token secret key")
	fs.DurationVar(&config.TokenValidity, "t", config.TokenValidity, "token validity")
	fs.StringVar(&config.ActivationBaseURL, "l", config.ActivationBaseURL, "activation base URL")
	fs.StringVar(&config.MailProvider, "m", config.MailProvider, "mail provider")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "w", config.S3PublicBaseURL, "public base URL of uploaded objects")
	fs.DurationVar(&config.RequestTimeout, "o", config.RequestTimeout, "request timeout")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	return fs.Parse(args)
}
