// Package neo4jdb owns the Neo4j driver: connection setup plus session helpers that run
// a closure in a managed read or write transaction.
package neo4jdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/sayevvv/LearnUp-sub001/internal/platform/logger"
)

// ErrDisabled is returned by session helpers on a nil or closed client.
var ErrDisabled = errors.New("neo4j not configured")

type Config struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

func (c Config) normalized() Config {
	c.URI = strings.TrimSpace(c.URI)
	c.Database = strings.TrimSpace(c.Database)
	if c.User = strings.TrimSpace(c.User); c.User == "" {
		c.User = "neo4j"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxPoolSize <= 0 {
		c.MaxPoolSize = 50
	}
	return c
}

type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// New dials Neo4j and verifies connectivity within cfg.Timeout. An empty URI yields
// (nil, nil): the graph is optional.
func New(log *logger.Logger, cfg Config) (*Client, error) {
	cfg = cfg.normalized()
	if cfg.URI == "" {
		return nil, nil
	}
	if log == nil {
		log = logger.Nop()
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
			c.SocketConnectTimeout = cfg.Timeout
		})
	if err != nil {
		return nil, fmt.Errorf("neo4jdb: driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4jdb: connectivity: %w", err)
	}
	log.Info("neo4j connected", "uri", cfg.URI, "database", cfg.Database)
	return &Client{driver: driver, database: cfg.Database}, nil
}

func (c *Client) Enabled() bool { return c != nil && c.driver != nil }

// Write runs fn in a managed write transaction; the driver retries transient failures.
func (c *Client) Write(ctx context.Context, fn func(tx neo4j.ManagedTransaction) error) error {
	_, err := c.run(ctx, neo4j.AccessModeWrite, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(tx)
	})
	return err
}

// Read runs fn in a managed read transaction and returns its result.
func (c *Client) Read(ctx context.Context, fn func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	return c.run(ctx, neo4j.AccessModeRead, fn)
}

func (c *Client) run(ctx context.Context, mode neo4j.AccessMode, fn neo4j.ManagedTransactionWork) (any, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: c.database})
	defer session.Close(ctx)
	if mode == neo4j.AccessModeRead {
		return session.ExecuteRead(ctx, fn)
	}
	return session.ExecuteWrite(ctx, fn)
}

// Exec runs one statement and discards its records.
func Exec(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

func (c *Client) Close(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	return err
}
