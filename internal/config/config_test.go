package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "authors_test")
	t.Setenv("AUTHOR_PAGE_SIZE", "5")
	t.Setenv("AUTHOR_ERROR_MODE", "Legacy")
	t.Setenv("REDIS_HOST", "localhost")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "authors_test", cfg.MongoDB.Database)
	require.Equal(t, "Author", cfg.MongoDB.Collection)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, 5, cfg.Author.PageSize)
	require.Equal(t, ErrorModeLegacy, cfg.Author.ErrorMode)
	require.Equal(t, "localhost", cfg.Redis.Host)
	require.Equal(t, "0.0.0.0:3000", cfg.Addr())
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	require.Equal(t, "AuthorData", cfg.MongoDB.Database)
	require.Equal(t, 3, cfg.Author.PageSize)
	require.Equal(t, ErrorModeStrict, cfg.Author.ErrorMode)
	require.False(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"page size zero":    {"AUTHOR_PAGE_SIZE": "0"},
		"unknown mode":      {"AUTHOR_ERROR_MODE": "lenient"},
		"non-positive dial": {"MONGODB_TIMEOUT": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			viper.Reset()
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
