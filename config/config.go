package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BrowserConfig holds the startup configuration for the automation browser.
// It is constructed once at process start and passed by reference into the
// session manager; nothing reads browser settings from ambient globals.
type BrowserConfig struct {
	Headless     bool
	ChromePath   string
	WindowWidth  int
	WindowHeight int
	UserAgent    string
}

// NavigationConfig holds per-step timeouts and delays for the scrape flow
type NavigationConfig struct {
	PageLoadTimeout time.Duration // homepage load
	SlotTimeout     time.Duration // location input / submit control
	ResultsTimeout  time.Duration // listing container
	PopupTimeout    time.Duration // interstitial close control
	SubmitDelay     time.Duration // settle after submitting the location
	ReloadDelay     time.Duration // settle after the popup-avoidance reload
	PopupCloseDelay time.Duration // settle after dismissing a popup
}

// RetryConfig bounds the fresh-session retry loop
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Config represents the application configuration
type Config struct {
	// HTTP API
	ListenAddr    string
	SearchTimeout time.Duration

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Cache configuration
	CacheBackend string // "memory" or "memcache"
	MemcacheAddr string

	// Location lookup
	LocationAPIURL string

	// Source URLs
	GSALRURL       string
	GSALRBaseURL   string
	CraigslistBase string

	// Search defaults
	SearchRadius int

	// Watch worker
	WatchZips     []string
	WatchInterval time.Duration

	// Browser automation
	Browser    BrowserConfig
	Navigation NavigationConfig
	Retry      RetryConfig

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	searchTimeout, _ := strconv.Atoi(getEnv("SEARCH_TIMEOUT_SECONDS", "120"))
	watchInterval, _ := strconv.Atoi(getEnv("WATCH_INTERVAL_SECONDS", "1800"))
	searchRadius, _ := strconv.Atoi(getEnv("SEARCH_RADIUS_MILES", "10"))
	maxAttempts, _ := strconv.Atoi(getEnv("SCRAPE_MAX_ATTEMPTS", "3"))
	backoff, _ := strconv.Atoi(getEnv("SCRAPE_RETRY_BACKOFF_SECONDS", "2"))
	headless, _ := strconv.ParseBool(getEnv("BROWSER_HEADLESS", "true"))
	winW, _ := strconv.Atoi(getEnv("BROWSER_WINDOW_WIDTH", "1920"))
	winH, _ := strconv.Atoi(getEnv("BROWSER_WINDOW_HEIGHT", "1080"))

	var watchZips []string
	if raw := getEnv("WATCH_ZIPS", ""); raw != "" {
		for _, z := range strings.Split(raw, ",") {
			if z = strings.TrimSpace(z); z != "" {
				watchZips = append(watchZips, z)
			}
		}
	}

	return &Config{
		ListenAddr:           getEnv("LISTEN_ADDR", ":3001"),
		SearchTimeout:        time.Duration(searchTimeout) * time.Second,
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "garagesales"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		CacheBackend:         getEnv("CACHE_BACKEND", "memory"),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		LocationAPIURL:       getEnv("LOCATION_API_URL", "https://api.zippopotam.us/us"),
		GSALRURL:             getEnv("GSALR_URL", "https://www.gsalr.com"),
		GSALRBaseURL:         getEnv("GSALR_BASE_URL", "https://www.gsalr.com"),
		CraigslistBase:       getEnv("CRAIGSLIST_BASE", "https://%s.craigslist.org/search/gms"),
		SearchRadius:         searchRadius,
		WatchZips:            watchZips,
		WatchInterval:        time.Duration(watchInterval) * time.Second,
		Browser: BrowserConfig{
			Headless:     headless,
			ChromePath:   getEnv("CHROME_BIN", ""),
			WindowWidth:  winW,
			WindowHeight: winH,
			UserAgent: getEnv("BROWSER_USER_AGENT",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
		Navigation: NavigationConfig{
			PageLoadTimeout: 10 * time.Second,
			SlotTimeout:     10 * time.Second,
			ResultsTimeout:  15 * time.Second,
			PopupTimeout:    5 * time.Second,
			SubmitDelay:     3 * time.Second,
			ReloadDelay:     2 * time.Second,
			PopupCloseDelay: 1 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: maxAttempts,
			Backoff:     time.Duration(backoff) * time.Second,
		},
		Environment: getEnv("GSF_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.GSALRURL == "" || c.GSALRBaseURL == "" {
		return fmt.Errorf("gsalr urls must not be empty")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("scrape max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.SearchRadius < 1 {
		return fmt.Errorf("search radius must be at least 1, got %d", c.SearchRadius)
	}
	if c.CacheBackend != "memory" && c.CacheBackend != "memcache" {
		return fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
	if c.CacheBackend == "memcache" && c.MemcacheAddr == "" {
		return fmt.Errorf("memcache backend selected but no memcache address set")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
