package config

import (
	"fmt"
	"strconv"
	"time"
)

const envPrefix = "TENTECH_"

// parseEnv overlays TENTECH_* variables onto config.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HTTP_ADDR":           &config.HTTPAddr,
		"GRPC_ADDR":           &config.GRPCAddr,
		"DATABASE_DSN":        &config.DatabaseDSN,
		"TOKEN_SECRET_KEY":    &config.TokenSecretKey,
		"ACTIVATION_BASE_URL": &config.ActivationBaseURL,
		"MAIL_PROVIDER":       &config.MailProvider,
		"SMTP_HOST":           &config.SMTPHost,
		"SMTP_USERNAME":       &config.SMTPUsername,
		"SMTP_PASSWORD":       &config.SMTPPassword,
		"MAIL_FROM":           &config.MailFrom,
		"SENDGRID_API_KEY":    &config.SendGridAPIKey,
		"MAILGUN_DOMAIN":      &config.MailgunDomain,
		"MAILGUN_API_KEY":     &config.MailgunAPIKey,
		"S3_ROOT_USER":        &config.S3RootUser,
		"S3_ROOT_PASSWORD":    &config.S3RootPassword,
		"S3_BUCKET":           &config.S3Bucket,
		"S3_REGION":           &config.S3Region,
		"S3_BASE_ENDPOINT":    &config.S3BaseEndpoint,
		"S3_PUBLIC_BASE_URL":  &config.S3PublicBaseURL,
		"LOG_LEVEL":           &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"TOKEN_VALIDITY":  &config.TokenValidity,
		"REQUEST_TIMEOUT": &config.RequestTimeout,
	}
	for name, dst := range durations {
		v, ok := lookup(envPrefix + name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}

	if v, ok := lookup(envPrefix + "SMTP_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSMTP_PORT: %w", envPrefix, err)
		}
		config.SMTPPort = port
	}
	return nil
}
