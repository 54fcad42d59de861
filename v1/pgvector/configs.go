package pgvector

import (
	"net"
	"net/url"
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
)

// Config holds connection and behavior settings for a PostgreSQL server with
// the pgvector extension.
//
// Example:
//
//	cfg := pgvector.DefaultConfig()
//	cfg.Connection.Host = "localhost"
//	cfg.Connection.User = "search"
//	cfg.Connection.Password = os.Getenv("POSTGRES_PASSWORD")
//	cfg.Connection.DbName = "vectors"
type Config struct {
	Connection        Connection        `yaml:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details"`

	// Default table used by stores when a call does not name one.
	DefaultCollection string `yaml:"default_collection" env:"POSTGRES_DEFAULT_COLLECTION"`

	// MaxParallelism bounds concurrent row lookups in GetBatch. Defaults to 50.
	MaxParallelism int `yaml:"max_parallelism" env:"POSTGRES_MAX_PARALLELISM"`

	// CreateExtension runs CREATE EXTENSION IF NOT EXISTS vector before the
	// first table is created. It needs the matching privilege.
	CreateExtension bool `yaml:"create_extension" env:"POSTGRES_CREATE_EXTENSION"`
}

// Connection identifies the server and database.
type Connection struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST"`
	Port     string `yaml:"port" env:"POSTGRES_PORT"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DbName   string `yaml:"db_name" env:"POSTGRES_DB"`
	SSLMode  string `yaml:"ssl_mode" env:"POSTGRES_SSL_MODE"`
}

// ConnectionDetails tunes the connection pool. Zero values fall back to
// 50 open connections, 25 idle connections and a one minute lifetime.
type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns" env:"POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"POSTGRES_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"POSTGRES_CONN_MAX_LIFETIME"`
}

// DefaultConfig provides sensible defaults for a local server.
func DefaultConfig() *Config {
	return &Config{
		Connection: Connection{
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "disable",
		},
		MaxParallelism:  vectordb.DefaultMaxParallelism,
		CreateExtension: true,
	}
}

// DSN renders the connection as a postgres:// URL. User and password are
// escaped, so they may contain any character.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Connection.Host, c.Connection.Port),
		Path:   "/" + c.Connection.DbName,
	}
	if c.Connection.User != "" {
		u.User = url.UserPassword(c.Connection.User, c.Connection.Password)
	}
	if c.Connection.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.Connection.SSLMode}}.Encode()
	}
	return u.String()
}

// StoreConfig returns the store-level settings of the config.
func (c *Config) StoreConfig() vectordb.StoreConfig {
	return vectordb.StoreConfig{
		DefaultCollection: c.DefaultCollection,
		MaxParallelism:    c.MaxParallelism,
	}
}
