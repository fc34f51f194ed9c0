package refinery

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "memory" or "redis"
	addrs    []string
	password string
	db       int

	maxRatio        float64
	maxResults      int
	defaultRadiusKm float64
	maxRadiusKm     float64

	historyMaxEntries int
	historyTTL        time.Duration
	keyPrefix         string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMemoryStore keeps visitor history in process memory. This is the default.
func WithMemoryStore() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
		c.addrs = nil
	})
}

// WithRedis keeps visitor history in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisDB selects the logical Redis database. Ignored for the memory store.
func WithRedisDB(db int) Option {
	return optionFunc(func(c *clientConfig) {
		c.db = db
	})
}

// WithMaxRatio sets the edit-distance ratio at or below which two titles
// from the same source count as near-duplicates. Default: 0.2.
func WithMaxRatio(ratio float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRatio = ratio
	})
}

// WithMaxResults rejects result or point lists longer than n. Zero disables the cap.
func WithMaxResults(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxResults = n
	})
}

// WithRadius sets the radius used when a geo query passes none, and the
// largest radius a query may request. Defaults: 10km and 500km.
func WithRadius(defaultKm, maxKm float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultRadiusKm = defaultKm
		c.maxRadiusKm = maxKm
	})
}

// WithHistory configures visitor history retention.
// Defaults: 10 entries, kept for 30 days, keys prefixed with "refinery:".
func WithHistory(maxEntries int, ttl time.Duration, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.historyMaxEntries = maxEntries
		c.historyTTL = ttl
		c.keyPrefix = keyPrefix
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
