// internal/interface/dataaccess/facade.go
package dataaccess

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"acmeair-service/internal/domain/repository"
	"acmeair-service/internal/infrastructure/config"
	"acmeair-service/pkg/logger"
	"acmeair-service/pkg/metrics"
)

const (
	initMaxAttempts = 5
	initRetryDelay  = 10 * time.Second
)

// Facade selects a storage driver from configuration and fronts it with a
// one-shot initialization gate. Operations reaching the facade before the
// connection is up get repository.ErrNotReady instead of triggering a
// second connection attempt.
type Facade struct {
	driver  repository.DataAccess
	backend string
	logger  logger.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	ready      atomic.Bool
	attempts   int
	retryDelay time.Duration
}

type closer interface {
	Close(ctx context.Context) error
}

// NewFacade creates a facade over the backend selected by the configuration
func NewFacade(cfg *config.Config, log logger.Logger, m *metrics.Metrics) (*Facade, error) {
	var driver repository.DataAccess
	switch cfg.DBType {
	case config.BackendMongo:
		driver = NewMongoStore(cfg, log)
	case config.BackendPostgres:
		driver = NewPostgresStore(cfg, log)
	case config.BackendRedis:
		driver = NewRedisStore(cfg, log)
	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.DBType)
	}
	log.Info("Using db", "backend", cfg.DBType)
	return &Facade{
		driver:     driver,
		backend:    cfg.DBType,
		logger:     log,
		metrics:    m,
		attempts:   initMaxAttempts,
		retryDelay: initRetryDelay,
	}, nil
}

// Backend returns the selected backend type
func (f *Facade) Backend() string {
	return f.backend
}

// Ready reports whether the connection has been initialized
func (f *Facade) Ready() bool {
	return f.ready.Load()
}

// Initialize establishes the shared connection, retrying on failure with a
// bounded attempt budget. It is idempotent, and concurrent callers are
// serialized so at most one connection sequence runs.
func (f *Facade) Initialize(ctx context.Context) error {
	if f.ready.Load() {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready.Load() {
		return nil
	}

	f.logger.Info("Initializing database connections")
	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		lastErr = f.driver.Initialize(ctx)
		if lastErr == nil {
			f.ready.Store(true)
			f.logger.Info("Initialized database connections")
			return nil
		}
		f.logger.Warn("Error connecting to database",
			"attempt", attempt, "maxAttempts", f.attempts, "error", lastErr)
		if attempt < f.attempts {
			f.logger.Info("Retrying database connection", "delay", f.retryDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(f.retryDelay):
			}
		}
	}
	f.logger.Error("Max retries reached, could not connect to database")
	return fmt.Errorf("initialize database connections: %w", lastErr)
}

// Names returns the driver's collection name table
func (f *Facade) Names() repository.DBNames {
	return f.driver.Names()
}

// InsertOne forwards to the driver once ready
func (f *Facade) InsertOne(ctx context.Context, collection string, doc interface{}) error {
	if !f.ready.Load() {
		return repository.ErrNotReady
	}
	defer f.observe(time.Now())
	return f.driver.InsertOne(ctx, collection, doc)
}

// FindOne forwards to the driver once ready
func (f *Facade) FindOne(ctx context.Context, collection, id string, out interface{}) (bool, error) {
	if !f.ready.Load() {
		return false, repository.ErrNotReady
	}
	defer f.observe(time.Now())
	return f.driver.FindOne(ctx, collection, id, out)
}

// Update forwards to the driver once ready
func (f *Facade) Update(ctx context.Context, collection, id string, doc interface{}) error {
	if !f.ready.Load() {
		return repository.ErrNotReady
	}
	defer f.observe(time.Now())
	return f.driver.Update(ctx, collection, id, doc)
}

// Remove forwards to the driver once ready
func (f *Facade) Remove(ctx context.Context, collection string, criteria repository.Criteria) error {
	if !f.ready.Load() {
		return repository.ErrNotReady
	}
	defer f.observe(time.Now())
	return f.driver.Remove(ctx, collection, criteria)
}

// FindBy forwards to the driver once ready
func (f *Facade) FindBy(ctx context.Context, collection string, criteria repository.Criteria, out interface{}) error {
	if !f.ready.Load() {
		return repository.ErrNotReady
	}
	defer f.observe(time.Now())
	return f.driver.FindBy(ctx, collection, criteria, out)
}

// Count forwards to the driver once ready
func (f *Facade) Count(ctx context.Context, collection string, criteria repository.Criteria) (int64, error) {
	if !f.ready.Load() {
		return 0, repository.ErrNotReady
	}
	defer f.observe(time.Now())
	return f.driver.Count(ctx, collection, criteria)
}

// RequiresRevisionFetch forwards the driver capability flag
func (f *Facade) RequiresRevisionFetch() bool {
	return f.driver.RequiresRevisionFetch()
}

// Close releases the driver connection when it holds one
func (f *Facade) Close(ctx context.Context) error {
	if c, ok := f.driver.(closer); ok {
		return c.Close(ctx)
	}
	return nil
}

func (f *Facade) observe(start time.Time) {
	f.metrics.ObserveStoreLatency(time.Since(start).Seconds())
}
