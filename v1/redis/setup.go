package redis

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/Aleph-Alpha/vectorstore/v1/observability"
	"github.com/redis/go-redis/v9"
)

// searchProtocol is the RESP version used for connections. Search command
// replies are parsed in their RESP2 shape.
const searchProtocol = 2

// RedisClient represents a client for interacting with Redis Stack.
// It wraps the go-redis client and exposes the hash, JSON and search commands
// used by the record store and the collection manager.
//
// RedisClient implements the Commands interface.
type RedisClient struct {
	// client is the underlying Redis client
	client redis.UniversalClient

	// layout controls how records are laid out in Redis
	layout Layout

	// logger is used for structured logging
	logger Logger

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// mu protects concurrent access to client
	mu sync.RWMutex

	closeOnce sync.Once
	closeErr  error
}

// NewClient creates and initializes a new Redis client with the provided configuration.
// This is for connecting to a standalone Redis Stack instance.
//
// Parameters:
//   - cfg: Configuration for connecting to Redis
//
// Returns a new Redis client instance that is ready to use.
//
// Example:
//
//	client, err := redis.NewClient(redis.FromEndpoint("localhost", 6379))
//	if err != nil {
//		log.Printf("ERROR: failed to create Redis client: %v", err)
//		return nil, err
//	}
//	defer client.Close()
func NewClient(cfg Config) (*RedisClient, error) {
	// Apply defaults
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MinRetryBackoff == 0 {
		cfg.MinRetryBackoff = DefaultMinRetryBackoff
	}
	if cfg.MaxRetryBackoff == 0 {
		cfg.MaxRetryBackoff = DefaultMaxRetryBackoff
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if err := cfg.Layout.validate(); err != nil {
		return nil, err
	}

	// Set up TLS config if enabled
	var tlsConfig *tls.Config
	var err error
	if cfg.TLS.Enabled {
		tlsConfig, err = createTLSConfig(cfg.TLS, cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	// Create Redis options
	opts := &redis.Options{
		Addr:            fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Protocol:        searchProtocol,
		Username:        cfg.Username,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxLifetime: cfg.MaxConnAge,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		TLSConfig:       tlsConfig,
	}

	r := NewClientFromUniversal(redis.NewClient(opts), cfg.Layout)
	r.logger = cfg.Logger

	log.Println("INFO: Redis client initialized")
	return r, nil
}

// NewFailoverClient creates and initializes a new Redis Sentinel (failover) client.
// This is for connecting to a Redis Sentinel setup for high availability.
//
// Example:
//
//	client, err := redis.NewFailoverClient(redis.FailoverConfig{
//		MasterName: "mymaster",
//		SentinelAddrs: []string{
//			"localhost:26379",
//			"localhost:26380",
//		},
//		Layout: redis.DefaultLayout(),
//	})
func NewFailoverClient(cfg FailoverConfig) (*RedisClient, error) {
	if cfg.MasterName == "" || len(cfg.SentinelAddrs) == 0 {
		return nil, fmt.Errorf("failover config requires a master name and at least one sentinel address")
	}
	// Apply defaults
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if err := cfg.Layout.validate(); err != nil {
		return nil, err
	}

	// Set up TLS config if enabled
	var tlsConfig *tls.Config
	var err error
	if cfg.TLS.Enabled {
		tlsConfig, err = createTLSConfig(cfg.TLS, "")
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	opts := &redis.FailoverOptions{
		MasterName:       cfg.MasterName,
		SentinelAddrs:    cfg.SentinelAddrs,
		SentinelUsername: cfg.SentinelUsername,
		SentinelPassword: cfg.SentinelPassword,
		Protocol:         searchProtocol,
		Username:         cfg.Username,
		Password:         cfg.Password,
		ReplicaOnly:      cfg.ReplicaOnly,
		PoolSize:         cfg.PoolSize,
		MaxRetries:       cfg.MaxRetries,
		MinRetryBackoff:  DefaultMinRetryBackoff,
		MaxRetryBackoff:  DefaultMaxRetryBackoff,
		DialTimeout:      cfg.DialTimeout,
		ReadTimeout:      cfg.ReadTimeout,
		ConnMaxIdleTime:  DefaultIdleTimeout,
		TLSConfig:        tlsConfig,
	}

	r := NewClientFromUniversal(redis.NewFailoverClient(opts), cfg.Layout)
	r.logger = cfg.Logger

	log.Println("INFO: Redis Failover client initialized")
	return r, nil
}

// NewClientFromUniversal wraps an existing go-redis client, e.g. one built by
// the application or by a test harness.
func NewClientFromUniversal(client redis.UniversalClient, layout Layout) *RedisClient {
	return &RedisClient{
		client: client,
		layout: layout,
	}
}

// createTLSConfig creates a TLS configuration from the provided config
func createTLSConfig(cfg TLSConfig, defaultServerName string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	// Set server name for TLS verification
	if cfg.ServerName != "" {
		tlsConfig.ServerName = cfg.ServerName
	} else if defaultServerName != "" {
		tlsConfig.ServerName = defaultServerName
	}

	// Load CA certificate
	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	// Load client certificate
	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Client returns the underlying go-redis client for advanced operations.
func (r *RedisClient) Client() redis.UniversalClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

// Layout returns the record layout the client was configured with.
func (r *RedisClient) Layout() Layout {
	return r.layout
}

// Close closes the Redis client and releases all resources.
// Only the first call closes the connection pool; later calls return its result.
func (r *RedisClient) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		log.Println("INFO: Closing Redis client")

		if r.client != nil {
			if err := r.client.Close(); err != nil {
				log.Printf("WARN: Failed to close Redis client: %v", err)
				r.closeErr = err
			}
		}
	})
	return r.closeErr
}

// WithObserver sets the observer for this client and returns the client for method chaining.
// The observer receives one event per Redis command.
//
// Example:
//
//	client := client.WithObserver(myObserver).WithLogger(myLogger)
func (r *RedisClient) WithObserver(observer observability.Observer) *RedisClient {
	r.observer = observer
	return r
}

// WithLogger sets the logger for this client and returns the client for method chaining.
// The logger receives failed commands at error level.
//
// Example:
//
//	client := client.WithObserver(myObserver).WithLogger(myLogger)
func (r *RedisClient) WithLogger(logger Logger) *RedisClient {
	r.logger = logger
	return r
}
