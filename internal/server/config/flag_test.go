package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK",
			args:        []string{"cmd", "-a", ":9090", "-d", "postgres://u:p@db:5432/x", "-s", "key1", "-t", "30", "-r", "60", "-u", "user1", "-p", "pass1", "-b", "bucket1", "-g", "eu-west-1", "-e", "http://s3:9000/"},
			expectPanic: false,
			expected: &Config{
				EndpointAddr:                 ":9090",
				DatabaseDSN:                  "postgres://u:p@db:5432/x",
				SecretKey:                    "key1",
				AccessTokenValidityDuration:  30 * time.Minute,
				RefreshTokenValidityDuration: 60 * time.Minute,
				S3RootUser:                   "user1",
				S3RootPassword:               "pass1",
				S3Bucket:                     "bucket1",
				S3Region:                     "eu-west-1",
				S3BaseEndpoint:               "http://s3:9000/",
			}},
		{name: "Test2 incorrect token validity", args: []string{"cmd", "-a", ":9090", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Equal(t, tt.expected, config)
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
