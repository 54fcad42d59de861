package qdrant

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
)

//
// ──────────────────────────────────────────────────────────────
//   QDRANT CLIENT WRAPPER
// ──────────────────────────────────────────────────────────────
//
// This file defines a thin wrapper around the official Qdrant Go client.
// Record mapping, collection translation and the store live in their own
// files; this type only owns the connection.
//
// Responsibilities:
//   • Establish and validate connectivity with Qdrant.
//   • Expose the narrow API used by stores and collection managers.
//   • Offer a safe API suitable for Fx dependency injection.
//

// QdrantClient wraps the official Qdrant Go client.
type QdrantClient struct {
	api       API
	cfg       *Config
	started   bool
	closeOnce sync.Once
}

const defaultPort = 6334

// ──────────────────────────────────────────────────────────────
// NewQdrantClient
// ──────────────────────────────────────────────────────────────

// NewQdrantClient constructs a new instance of QdrantClient and validates
// connectivity via a health check.
//
// The Qdrant Go SDK creates lightweight gRPC connections, so this method
// performs an immediate health check to fail fast if the service is unreachable.
//
// Example:
//
//	client, err := qdrant.NewQdrantClient(qdrant.QdrantParams{Config: cfg})
func NewQdrantClient(p QdrantParams) (*QdrantClient, error) {
	if p.Config == nil {
		return nil, fmt.Errorf("[Qdrant] config is required")
	}
	log.Printf("[Qdrant] Connecting to endpoint: %s:%d", p.Config.Endpoint, p.Config.Port)

	port := p.Config.Port
	if port == 0 {
		port = defaultPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   p.Config.Endpoint,
		Port:                   port,
		APIKey:                 p.Config.ApiKey,
		SkipCompatibilityCheck: !p.Config.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to initialize client: %w", err)
	}

	qc := NewQdrantClientWithAPI(client, p.Config)
	if err := qc.healthCheck(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	log.Println("[Qdrant] Client connected successfully")
	return qc, nil
}

// NewQdrantClientWithAPI wraps an existing API implementation without a health
// check. A nil cfg means DefaultConfig.
func NewQdrantClientWithAPI(api API, cfg *Config) *QdrantClient {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &QdrantClient{api: api, cfg: cfg, started: true}
}

// ──────────────────────────────────────────────────────────────
// healthCheck
// ──────────────────────────────────────────────────────────────
//
// healthCheck verifies the availability of the Qdrant service
// by calling the health endpoint through the SDK.
func (c *QdrantClient) healthCheck() error {
	if !c.started {
		return fmt.Errorf("[Qdrant] client not started")
	}
	if c.api == nil {
		return fmt.Errorf("[Qdrant] client not initialized")
	}

	timeout := c.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	log.Printf("[Qdrant] Health check passed (title=%s, version=%s, endpoint=%s)", resp.GetTitle(), resp.GetVersion(), c.cfg.Endpoint)
	return nil
}

// API returns the underlying Qdrant API.
func (c *QdrantClient) API() API {
	return c.api
}

// Config returns the client configuration.
func (c *QdrantClient) Config() *Config {
	return c.cfg
}

// ──────────────────────────────────────────────────────────────
// Close
// ──────────────────────────────────────────────────────────────

// Close shuts down the underlying gRPC connection. Safe to call more than once.
func (c *QdrantClient) Close() error {
	if !c.started || c.api == nil {
		return nil
	}

	var err error
	c.closeOnce.Do(func() {
		log.Println("[Qdrant] closing client")
		err = c.api.Close()
	})
	return err
}
