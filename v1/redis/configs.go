package redis

import (
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
)

// Config defines the top-level configuration structure for the Redis backend.
// It contains the connection settings, the connection pool, TLS/SSL and the
// settings that control how records are laid out in Redis.
type Config struct {
	// Host is the Redis server hostname or IP address
	// Default: "localhost"
	Host string `yaml:"host" env:"REDIS_HOST"`

	// Port is the Redis server port
	// Default: 6379
	Port int `yaml:"port" env:"REDIS_PORT"`

	// Username is the Redis username for ACL authentication (Redis 6.0+)
	// Leave empty for no username-based authentication
	Username string `yaml:"username" env:"REDIS_USERNAME"`

	// Password is the Redis password for authentication
	// Leave empty for no authentication
	Password string `yaml:"password" env:"REDIS_PASSWORD"`

	// DB is the Redis database number to use.
	// RediSearch only indexes database 0, so leave this at the default.
	DB int `yaml:"db" env:"REDIS_DB"`

	// PoolSize is the maximum number of socket connections
	// Default: 10 per CPU
	PoolSize int `yaml:"pool_size" env:"REDIS_POOL_SIZE"`

	// MinIdleConns is the minimum number of idle connections to maintain
	// Default: 0 (no minimum)
	MinIdleConns int `yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS"`

	// MaxConnAge is the maximum duration a connection can be reused
	// Default: 0 (no maximum age)
	MaxConnAge time.Duration `yaml:"max_conn_age" env:"REDIS_MAX_CONN_AGE"`

	// PoolTimeout is the amount of time to wait for a connection from the pool
	// Default: ReadTimeout + 1 second
	PoolTimeout time.Duration `yaml:"pool_timeout" env:"REDIS_POOL_TIMEOUT"`

	// IdleTimeout is the amount of time after which idle connections are closed
	// Default: 5 minutes
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"REDIS_IDLE_TIMEOUT"`

	// MaxRetries is the maximum number of retries before giving up
	// Default: 3
	// Set to -1 to disable retries
	MaxRetries int `yaml:"max_retries" env:"REDIS_MAX_RETRIES"`

	// MinRetryBackoff is the minimum backoff between each retry
	// Default: 8 milliseconds
	MinRetryBackoff time.Duration `yaml:"min_retry_backoff" env:"REDIS_MIN_RETRY_BACKOFF"`

	// MaxRetryBackoff is the maximum backoff between each retry
	// Default: 512 milliseconds
	MaxRetryBackoff time.Duration `yaml:"max_retry_backoff" env:"REDIS_MAX_RETRY_BACKOFF"`

	// DialTimeout is the timeout for establishing new connections
	// Default: 5 seconds
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`

	// ReadTimeout is the timeout for socket reads
	// Default: 3 seconds
	ReadTimeout time.Duration `yaml:"read_timeout" env:"REDIS_READ_TIMEOUT"`

	// WriteTimeout is the timeout for socket writes
	// Default: ReadTimeout
	WriteTimeout time.Duration `yaml:"write_timeout" env:"REDIS_WRITE_TIMEOUT"`

	// TLS contains TLS/SSL configuration
	TLS TLSConfig `yaml:"tls"`

	// Layout controls how records are stored.
	Layout `yaml:",inline"`

	// Logger is an optional logger from the v1/logger package
	// If provided, it will be used for Redis error logging
	Logger Logger `yaml:"-"`
}

// Layout controls how records and indexes are laid out in Redis. It is shared
// by the standalone and the failover configuration.
type Layout struct {
	// Storage selects how records are stored: as hashes (default) or as
	// RedisJSON documents.
	Storage StorageType `yaml:"storage" env:"REDIS_STORAGE"`

	// PrefixCollectionName stores each record under "{collection}:{key}" and
	// restricts the collection's index to that prefix. DefaultConfig enables it.
	PrefixCollectionName bool `yaml:"prefix_collection_name" env:"REDIS_PREFIX_COLLECTION_NAME"`

	// DefaultCollection is used by stores when a call does not name one.
	DefaultCollection string `yaml:"default_collection" env:"REDIS_DEFAULT_COLLECTION"`

	// MaxParallelism bounds concurrent lookups in GetBatch. Default: 50
	MaxParallelism int `yaml:"max_parallelism" env:"REDIS_MAX_PARALLELISM"`
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	// Enabled determines whether to use TLS/SSL for the connection
	Enabled bool `yaml:"enabled" env:"REDIS_TLS_ENABLED"`

	// CACertPath is the file path to the CA certificate for verifying the server
	CACertPath string `yaml:"ca_cert_path" env:"REDIS_TLS_CA_CERT_PATH"`

	// ClientCertPath is the file path to the client certificate
	ClientCertPath string `yaml:"client_cert_path" env:"REDIS_TLS_CLIENT_CERT_PATH"`

	// ClientKeyPath is the file path to the client certificate's private key
	ClientKeyPath string `yaml:"client_key_path" env:"REDIS_TLS_CLIENT_KEY_PATH"`

	// InsecureSkipVerify controls whether to skip verification of the server's certificate
	// WARNING: Setting this to true is insecure and should only be used in testing
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" env:"REDIS_TLS_INSECURE_SKIP_VERIFY"`

	// ServerName is used to verify the hostname on the returned certificates
	// If empty, the Host from the main config is used
	ServerName string `yaml:"server_name" env:"REDIS_TLS_SERVER_NAME"`
}

// FailoverConfig defines the configuration for Redis Sentinel (failover) mode.
// Use this when connecting to a Redis Sentinel setup for high availability.
type FailoverConfig struct {
	// MasterName is the name of the master instance as configured in Sentinel
	MasterName string `yaml:"master_name" env:"REDIS_SENTINEL_MASTER_NAME"`

	// SentinelAddrs is a list of Sentinel node addresses
	// Example: []string{"localhost:26379", "localhost:26380", "localhost:26381"}
	SentinelAddrs []string `yaml:"sentinel_addrs" env:"REDIS_SENTINEL_ADDRS"`

	// SentinelUsername is the username for Sentinel authentication (Redis 6.0+)
	SentinelUsername string `yaml:"sentinel_username" env:"REDIS_SENTINEL_USERNAME"`

	// SentinelPassword is the password for Sentinel authentication
	SentinelPassword string `yaml:"sentinel_password" env:"REDIS_SENTINEL_PASSWORD"`

	// Username is the Redis username for ACL authentication (Redis 6.0+)
	Username string `yaml:"username" env:"REDIS_USERNAME"`

	// Password is the Redis password for authentication
	Password string `yaml:"password" env:"REDIS_PASSWORD"`

	// ReplicaOnly forces read-only queries to go to replica nodes
	ReplicaOnly bool `yaml:"replica_only" env:"REDIS_REPLICA_ONLY"`

	// PoolSize is the maximum number of socket connections
	PoolSize int `yaml:"pool_size" env:"REDIS_POOL_SIZE"`

	// DialTimeout is the timeout for establishing new connections
	// Default: 5 seconds
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT"`

	// ReadTimeout is the timeout for socket reads
	// Default: 3 seconds
	ReadTimeout time.Duration `yaml:"read_timeout" env:"REDIS_READ_TIMEOUT"`

	// MaxRetries is the maximum number of retries before giving up
	// Default: 3
	MaxRetries int `yaml:"max_retries" env:"REDIS_MAX_RETRIES"`

	// TLS contains TLS/SSL configuration
	TLS TLSConfig `yaml:"tls"`

	// Layout controls how records are stored.
	Layout `yaml:",inline"`

	// Logger is an optional logger from the v1/logger package
	Logger Logger `yaml:"-"`
}

// Logger is an interface that matches the v1/logger.Logger
type Logger interface {
	Error(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Default values for configuration
const (
	DefaultHost            = "localhost"
	DefaultPort            = 6379
	DefaultIdleTimeout     = 5 * time.Minute
	DefaultMaxRetries      = 3
	DefaultMinRetryBackoff = 8 * time.Millisecond
	DefaultMaxRetryBackoff = 512 * time.Millisecond
	DefaultDialTimeout     = 5 * time.Second
	DefaultReadTimeout     = 3 * time.Second
	DefaultStorage         = StorageHash
)

// DefaultConfig returns a config for a local Redis Stack with hash storage
// and collection prefixes.
func DefaultConfig() Config {
	return Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		IdleTimeout:     DefaultIdleTimeout,
		MaxRetries:      DefaultMaxRetries,
		MinRetryBackoff: DefaultMinRetryBackoff,
		MaxRetryBackoff: DefaultMaxRetryBackoff,
		DialTimeout:     DefaultDialTimeout,
		ReadTimeout:     DefaultReadTimeout,
		Layout:          DefaultLayout(),
	}
}

// DefaultLayout returns hash storage with collection prefixes.
func DefaultLayout() Layout {
	return Layout{
		Storage:              DefaultStorage,
		PrefixCollectionName: true,
		MaxParallelism:       vectordb.DefaultMaxParallelism,
	}
}

// FromEndpoint returns a default config pre-filled with host and port.
func FromEndpoint(host string, port int) Config {
	cfg := DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	return cfg
}

// Builder-style helpers

func (c Config) WithPassword(password string) Config {
	c.Password = password
	return c
}

func (c Config) WithStorage(s StorageType) Config {
	c.Storage = s
	return c
}

func (c Config) WithPrefixCollectionName(enabled bool) Config {
	c.PrefixCollectionName = enabled
	return c
}

func (c Config) WithDefaultCollection(name string) Config {
	c.DefaultCollection = name
	return c
}

func (c Config) WithMaxParallelism(n int) Config {
	c.MaxParallelism = n
	return c
}

// StoreConfig returns the store settings carried by this layout.
func (l Layout) StoreConfig() vectordb.StoreConfig {
	return vectordb.StoreConfig{
		DefaultCollection: l.DefaultCollection,
		MaxParallelism:    l.MaxParallelism,
	}
}

func (l Layout) storage() StorageType {
	if l.Storage == "" {
		return DefaultStorage
	}
	return l.Storage
}

// key returns the Redis key of a record.
func (l Layout) key(collection, key string) string {
	if l.PrefixCollectionName {
		return collection + ":" + key
	}
	return key
}
