package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:8080", "-r", "127.0.0.1:9090", "-d", "db", "-k", "key",
				"-t", "1h", "-l", "https://example.com/activate", "-m", "smtp",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-w", "https://cdn.example.com", "-o", "3s", "-v", "debug",
			},
			expected: &Config{
				HTTPAddr:          "127.0.0.1:8080",
				GRPCAddr:          "127.0.0.1:9090",
				DatabaseDSN:       "db",
				TokenSecretKey:    "key",
				TokenValidity:     time.Hour,
				ActivationBaseURL: "https://example.com/activate",
				MailProvider:      "smtp",
				S3RootUser:        "user",
				S3RootPassword:    "password",
				S3Bucket:          "bucket",
				S3Region:          "us-west-1",
				S3BaseEndpoint:    "http://endpoint",
				S3PublicBaseURL:   "https://cdn.example.com",
				RequestTimeout:    3 * time.Second,
				LogLevel:          "debug",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"-c", "cfg.json", "-x", "-a", ":1"},
			expected: &Config{HTTPAddr: ":1"},
		},
		{
			name:      "bad duration",
			args:      []string{"-o", "never"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
