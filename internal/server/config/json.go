package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tentech-me/tentech-api/internal/flagx"
	"github.com/tentech-me/tentech-api/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "24h" as well
// as integer nanoseconds.
type JsonConfig struct {
	HTTPAddr          string         `json:"http_addr"`
	GRPCAddr          string         `json:"grpc_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	TokenSecretKey    string         `json:"token_secret_key"`
	TokenValidity     timex.Duration `json:"token_validity"`
	ActivationBaseURL string         `json:"activation_base_url"`
	MailProvider      string         `json:"mail_provider"`
	SMTPHost          string         `json:"smtp_host"`
	SMTPPort          int            `json:"smtp_port"`
	SMTPUsername      string         `json:"smtp_username"`
	SMTPPassword      string         `json:"smtp_password"`
	MailFrom          string         `json:"mail_from"`
	SendGridAPIKey    string         `json:"sendgrid_api_key"`
	MailgunDomain     string         `json:"mailgun_domain"`
	MailgunAPIKey     string         `json:"mailgun_api_key"`
	S3RootUser        string         `json:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	S3PublicBaseURL   string         `json:"s3_public_base_url"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	LogLevel          string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config onto config. Keys absent
// from the file keep their current values. No flag means no file.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	fromJson(config, c)
	return nil
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:          c.HTTPAddr,
		GRPCAddr:          c.GRPCAddr,
		DatabaseDSN:       c.DatabaseDSN,
		TokenSecretKey:    c.TokenSecretKey,
		TokenValidity:     timex.Duration{Duration: c.TokenValidity},
		ActivationBaseURL: c.ActivationBaseURL,
		MailProvider:      c.MailProvider,
		SMTPHost:          c.SMTPHost,
		SMTPPort:          c.SMTPPort,
		SMTPUsername:      c.SMTPUsername,
		SMTPPassword:      c.SMTPPassword,
		MailFrom:          c.MailFrom,
		SendGridAPIKey:    c.SendGridAPIKey,
		MailgunDomain:     c.MailgunDomain,
		MailgunAPIKey:     c.MailgunAPIKey,
		S3RootUser:        c.S3RootUser,
		S3RootPassword:    c.S3RootPassword,
		S3Bucket:          c.S3Bucket,
		S3Region:          c.S3Region,
		S3BaseEndpoint:    c.S3BaseEndpoint,
		S3PublicBaseURL:   c.S3PublicBaseURL,
		RequestTimeout:    timex.Duration{Duration: c.RequestTimeout},
		LogLevel:          c.LogLevel,
	}
}

func fromJson(config *Config, c *JsonConfig) {
	config.HTTPAddr = c.HTTPAddr
	config.GRPCAddr = c.GRPCAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.TokenSecretKey = c.TokenSecretKey
	config.TokenValidity = time.Duration(c.TokenValidity.Duration)
	config.ActivationBaseURL = c.ActivationBaseURL
	config.MailProvider = c.MailProvider
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUsername = c.SMTPUsername
	config.SMTPPassword = c.SMTPPassword
	config.MailFrom = c.MailFrom
	config.SendGridAPIKey = c.SendGridAPIKey
	config.MailgunDomain = c.MailgunDomain
	config.MailgunAPIKey = c.MailgunAPIKey
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3PublicBaseURL = c.S3PublicBaseURL
	config.RequestTimeout = time.Duration(c.RequestTimeout.Duration)
	config.LogLevel = c.LogLevel
}
