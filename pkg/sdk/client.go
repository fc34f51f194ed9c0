package refinery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/servo-app/refinery/internal/db"
	"github.com/servo-app/refinery/internal/db/memory"
	dbRedis "github.com/servo-app/refinery/internal/db/redis"
	"github.com/servo-app/refinery/internal/domain/geo"
	domhist "github.com/servo-app/refinery/internal/domain/history"
	"github.com/servo-app/refinery/internal/domain/search/dedupe"
	"github.com/servo-app/refinery/internal/domain/search/raw"
	"github.com/servo-app/refinery/internal/domain/search/request"
	"github.com/servo-app/refinery/internal/domain/search/result"
	historyrepo "github.com/servo-app/refinery/internal/repository/history"
	healthuc "github.com/servo-app/refinery/internal/usecase/health"
	historyuc "github.com/servo-app/refinery/internal/usecase/history"
	refineuc "github.com/servo-app/refinery/internal/usecase/refine"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultHistoryTTL       = 30 * 24 * time.Hour
)

// Internal interfaces, swapped for mocks in tests.
type refineUseCase interface {
	RefineSearch(ctx context.Context, recs []raw.Record) ([]result.Result, error)
	Refine(ctx context.Context, results []result.Result) ([]result.Result, error)
	Dedupe(ctx context.Context, results []result.Result) ([]result.Result, error)
	FilterBySimilarity(ctx context.Context, results []result.Result) ([]result.Result, error)
	WithinRadius(ctx context.Context, q *request.RadiusQuery, points []geo.Point) ([]geo.Point, error)
	Nearby(ctx context.Context, q *request.RadiusQuery, points []geo.Point) ([]geo.Neighbor, error)
	Correlate(ctx context.Context, results []result.Result, points []geo.Point) ([]geo.Point, error)
	Similar(ctx context.Context, a, b string, maxRatio float64) refineuc.Comparison
}

type historyUseCase interface {
	Record(ctx context.Context, visitorID, query string) ([]domhist.Entry, error)
	List(ctx context.Context, visitorID string) ([]domhist.Entry, error)
	Clear(ctx context.Context, visitorID string) error
	RecordPath(ctx context.Context, visitorID, path string) error
	PreviousPath(ctx context.Context, visitorID string) (string, error)
}

// Client is the refinery SDK entry point. It is safe for concurrent use.
type Client struct {
	store      db.Store
	refineSvc  refineUseCase
	historySvc historyUseCase
	healthSvc  healthUseCase
	radius     radiusLimits
	obs        *observer
}

type radiusLimits struct {
	defaultKm float64
	maxKm     float64
}

// New creates a refinery Client. Without WithRedis the client keeps history in memory.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{driver: "memory"}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.maxRatio < 0 || cfg.maxRatio > 1 {
		return nil, fmt.Errorf("refinery: max ratio %v outside [0, 1]", cfg.maxRatio)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("refinery: store not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "memory":
		return memory.NewStore(memory.DefaultCleanupInterval), nil
	case "redis":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, errors.New("refinery: redis address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
			DB:       cfg.db,
		})
		if err != nil {
			return nil, fmt.Errorf("refinery: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("refinery: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	refineSvc := refineuc.New(
		dedupe.New(cfg.maxRatio),
		refineuc.WithMaxResults(cfg.maxResults),
	)

	ttl := cfg.historyTTL
	if ttl <= 0 {
		ttl = defaultHistoryTTL
	}
	prefix := cfg.keyPrefix
	if prefix == "" {
		prefix = historyrepo.DefaultKeyPrefix
	}
	historySvc := historyuc.New(historyrepo.New(store, prefix, ttl), cfg.historyMaxEntries, nil)

	return &Client{
		store:      store,
		refineSvc:  refineSvc,
		historySvc: historySvc,
		healthSvc:  healthuc.New(store),
		radius:     radiusLimits{defaultKm: cfg.defaultRadiusKm, maxKm: cfg.maxRadiusKm},
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks history store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// History returns the visitor history service.
func (c *Client) History() *HistoryService {
	return &HistoryService{svc: c.historySvc, obs: c.obs}
}
