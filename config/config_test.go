package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, ":3001", config.ListenAddr)
	assert.Equal(t, "localhost:6379", config.RedisAddr)
	assert.Equal(t, 0, config.RedisDB)
	assert.Equal(t, "memory", config.CacheBackend)
	assert.Equal(t, "https://www.gsalr.com", config.GSALRURL)
	assert.Equal(t, 10, config.SearchRadius)
	assert.Equal(t, 3, config.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, config.Retry.Backoff)
	assert.True(t, config.Browser.Headless)
	assert.Equal(t, 1920, config.Browser.WindowWidth)
	assert.Equal(t, 15*time.Second, config.Navigation.ResultsTimeout)
	assert.Empty(t, config.WatchZips)

	// Test with environment variables
	os.Setenv("LISTEN_ADDR", ":8080")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("GSALR_URL", "https://example.com/gsalr")
	os.Setenv("SCRAPE_MAX_ATTEMPTS", "5")
	os.Setenv("BROWSER_HEADLESS", "false")
	os.Setenv("WATCH_ZIPS", "33101, 90210")
	os.Setenv("WATCH_INTERVAL_SECONDS", "60")

	config = LoadConfig()
	assert.Equal(t, ":8080", config.ListenAddr)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, "https://example.com/gsalr", config.GSALRURL)
	assert.Equal(t, 5, config.Retry.MaxAttempts)
	assert.False(t, config.Browser.Headless)
	assert.Equal(t, []string{"33101", "90210"}, config.WatchZips)
	assert.Equal(t, 60*time.Second, config.WatchInterval)

	// Clean up
	os.Unsetenv("LISTEN_ADDR")
	os.Unsetenv("REDIS_ADDR")
	os.Unsetenv("GSALR_URL")
	os.Unsetenv("SCRAPE_MAX_ATTEMPTS")
	os.Unsetenv("BROWSER_HEADLESS")
	os.Unsetenv("WATCH_ZIPS")
	os.Unsetenv("WATCH_INTERVAL_SECONDS")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	assert.NoError(t, config.Validate())

	config.Retry.MaxAttempts = 0
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.CacheBackend = "etcd"
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.CacheBackend = "memcache"
	config.MemcacheAddr = ""
	assert.Error(t, config.Validate())

	config = LoadConfig()
	config.GSALRURL = ""
	assert.Error(t, config.Validate())
}
