package pgvector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Postgres wraps a gorm.DB with connection monitoring and automatic
// reconnection.
//
// Concurrency: the active *gorm.DB is held in an atomic pointer and can be
// swapped during reconnection without blocking readers.
type Postgres struct {
	cfg             Config
	client          atomic.Pointer[gorm.DB]
	shutdownSignal  chan struct{}
	retryChanSignal chan error

	closeRetryChanOnce sync.Once
	closeShutdownOnce  sync.Once

	extensionMu      sync.Mutex
	extensionCreated bool
}

// NewPostgres connects to the server described by cfg.
func NewPostgres(cfg *Config) (*Postgres, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[PgVector] config must not be nil")
	}
	if cfg.Connection.Host == "" {
		return nil, fmt.Errorf("[PgVector] missing POSTGRES_HOST")
	}
	conn, err := connectToPostgres(*cfg)
	if err != nil {
		return nil, fmt.Errorf("[PgVector] error in connecting to postgres: %w", err)
	}
	return NewFromDB(conn, cfg), nil
}

// NewFromDB wraps an already opened connection. The connection must use a
// PostgreSQL dialector.
func NewFromDB(db *gorm.DB, cfg *Config) *Postgres {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	pg := &Postgres{
		cfg:             *cfg,
		shutdownSignal:  make(chan struct{}),
		retryChanSignal: make(chan error, 1),
	}
	pg.client.Store(db)
	return pg
}

// connectToPostgres opens the connection and configures the pool.
func connectToPostgres(cfg Config) (*gorm.DB, error) {
	database, err := gorm.Open(
		postgres.Open(cfg.DSN()),
		&gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	databaseInstance, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get PostgreSQL database instance: %w", err)
	}

	maxOpen := cfg.ConnectionDetails.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = 50
	}
	maxIdle := cfg.ConnectionDetails.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 25
	}
	maxLifetime := cfg.ConnectionDetails.ConnMaxLifetime
	if maxLifetime == 0 {
		maxLifetime = time.Minute
	}
	databaseInstance.SetMaxOpenConns(maxOpen)
	databaseInstance.SetMaxIdleConns(maxIdle)
	databaseInstance.SetConnMaxLifetime(maxLifetime)

	log.Printf("[PgVector] Connected to %s:%s/%s", cfg.Connection.Host, cfg.Connection.Port, cfg.Connection.DbName)
	return database, nil
}

// DB returns the current connection.
func (p *Postgres) DB() *gorm.DB {
	return p.client.Load()
}

// Config returns a copy of the client configuration.
func (p *Postgres) Config() Config {
	return p.cfg
}

// RetryConnection reconnects whenever MonitorConnection reports a failure.
// It returns when ctx is done or the client shuts down.
func (p *Postgres) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		select {
		case <-p.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case _, ok := <-p.retryChanSignal:
			if !ok {
				return
			}
		innerLoop:
			for {
				select {
				case <-p.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
					newConn, err := connectToPostgres(p.cfg)
					if err != nil {
						log.Printf("[PgVector] reconnection failed: %v", err)
						time.Sleep(time.Second)
						continue innerLoop
					}
					old := p.client.Swap(newConn)
					if sqlDB, err := old.DB(); err == nil {
						_ = sqlDB.Close()
					}
					log.Println("[PgVector] Reconnected to PostgreSQL")
					continue outerLoop
				}
			}
		}
	}
}

// MonitorConnection pings the server every 10 seconds and signals
// RetryConnection when the ping fails.
func (p *Postgres) MonitorConnection(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-p.shutdownSignal:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Ping(ctx); err != nil {
				select {
				case p.retryChanSignal <- err:
				default:
				}
			}
		}
	}
}

// Ping checks the server with a five second timeout.
func (p *Postgres) Ping(ctx context.Context) error {
	dbConn := p.DB()
	if dbConn == nil {
		return errors.New("[PgVector] client is not initialized")
	}
	db, err := dbConn.DB()
	if err != nil {
		return fmt.Errorf("[PgVector] failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("[PgVector] ping failed: %w", err)
	}
	return nil
}

// Transaction runs fn in a transaction that commits when fn returns nil.
func (p *Postgres) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return p.DB().WithContext(ctx).Transaction(fn)
}

// EnsureExtension creates the vector extension when Config.CreateExtension
// is set. After the first success it returns without a round trip.
func (p *Postgres) EnsureExtension(ctx context.Context) error {
	if !p.cfg.CreateExtension {
		return nil
	}
	p.extensionMu.Lock()
	defer p.extensionMu.Unlock()
	if p.extensionCreated {
		return nil
	}
	if err := p.DB().WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}
	p.extensionCreated = true
	return nil
}

// GracefulShutdown stops the monitoring loops and closes the pool.
func (p *Postgres) GracefulShutdown() error {
	p.closeShutdownOnce.Do(func() {
		close(p.shutdownSignal)
	})
	p.closeRetryChanOnce.Do(func() {
		close(p.retryChanSignal)
	})

	sqlDB, err := p.DB().DB()
	if err != nil {
		return nil
	}
	return sqlDB.Close()
}
