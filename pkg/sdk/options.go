package clearmark

import (
	"time"

	"go.uber.org/zap"
)

type clientConfig struct {
	addrs    []string
	password string

	registryBaseURL string
	registryAPIKey  string
	pageSize        int
	sortSpec        string
	callTimeout     time.Duration
	maxConcurrent   int

	keyPrefix string
	logger    *zap.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		pageSize:      100,
		sortSpec:      "applicationDate",
		callTimeout:   15 * time.Second,
		maxConcurrent: 5,
		keyPrefix:     "clearmark:",
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithRedis sets the Redis connection parameters.
func WithRedis(addrs []string, password string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
		c.password = password
	}
}

// WithRegistry sets the trademark registry endpoint and credentials.
func WithRegistry(baseURL, apiKey string) Option {
	return func(c *clientConfig) {
		c.registryBaseURL = baseURL
		c.registryAPIKey = apiKey
	}
}

// WithPageSize sets how many rows each registry call requests.
func WithPageSize(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithConcurrency caps simultaneous in-flight registry calls.
func WithConcurrency(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// WithCallTimeout bounds each registry call.
func WithCallTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// WithKeyPrefix sets the storage key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithLogger sets a custom logger. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
