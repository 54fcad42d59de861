package azuresearch

import (
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
)

// DefaultAPIVersion is the REST API version sent with every request.
const DefaultAPIVersion = "2024-07-01"

// Config holds connection and behavior settings for an Azure AI Search service.
//
// Example (builder style):
//
//	cfg := azuresearch.FromEndpoint("https://my-service.search.windows.net").
//	    WithAPIKey(os.Getenv("AZURE_SEARCH_API_KEY")).
//	    WithDefaultCollection("hotels")
type Config struct {
	// Endpoint is the service URL, e.g. "https://my-service.search.windows.net".
	Endpoint string `yaml:"endpoint" env:"AZURE_SEARCH_ENDPOINT"`

	// APIKey is an admin key of the service. It is sent in the api-key header.
	APIKey string `yaml:"api_key" env:"AZURE_SEARCH_API_KEY"`

	// APIVersion of the REST API. Defaults to DefaultAPIVersion.
	APIVersion string `yaml:"api_version" env:"AZURE_SEARCH_API_VERSION"`

	// Default index used by stores when a call does not name one.
	DefaultCollection string `yaml:"default_collection" env:"AZURE_SEARCH_DEFAULT_COLLECTION"`

	// MaxParallelism bounds concurrent document lookups in GetBatch. Defaults to 50.
	MaxParallelism int `yaml:"max_parallelism" env:"AZURE_SEARCH_MAX_PARALLELISM"`

	// Timeout of a single HTTP request.
	Timeout time.Duration `yaml:"timeout" env:"AZURE_SEARCH_TIMEOUT"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		APIVersion:     DefaultAPIVersion,
		MaxParallelism: vectordb.DefaultMaxParallelism,
		Timeout:        30 * time.Second,
	}
}

// FromEndpoint returns a default config pre-filled with a specific endpoint.
func FromEndpoint(endpoint string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	return cfg
}

// Builder-style helpers
func (c *Config) WithAPIKey(key string) *Config {
	c.APIKey = key
	return c
}

func (c *Config) WithAPIVersion(version string) *Config {
	c.APIVersion = version
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithDefaultCollection(name string) *Config {
	c.DefaultCollection = name
	return c
}

func (c *Config) WithMaxParallelism(n int) *Config {
	c.MaxParallelism = n
	return c
}

// StoreConfig returns the store settings carried by this config.
func (c *Config) StoreConfig() vectordb.StoreConfig {
	return vectordb.StoreConfig{
		DefaultCollection: c.DefaultCollection,
		MaxParallelism:    c.MaxParallelism,
	}
}
