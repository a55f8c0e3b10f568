package graph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrStoreUnavailable marks every failure to execute a query against the graph
// store (connection, auth, timeout, malformed Cypher). Callers use errors.Is to
// tell "retrieval failed" apart from "no matches".
var ErrStoreUnavailable = errors.New("graph store unavailable")

// Unavailable wraps a driver error into the store-unavailable taxonomy.
func Unavailable(op string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, cause)
}

// Record is one row of a query result, keyed by the RETURN column names.
type Record map[string]any

type Config struct {
	URI          string
	Username     string
	Password     string
	Database     string // empty means the server default database
	MaxPoolSize  int
	QueryTimeout time.Duration
}

func (c Config) Validate() error {
	if c.URI == "" {
		return errors.New("graph: URI is required")
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("graph: credentials are required")
	}
	return nil
}

// Client is a long-lived, read-mostly Neo4j connection shared across requests.
// Sessions are created per call, so concurrent reads are safe.
type Client struct {
	cfg    Config
	driver neo4j.DriverWithContext
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = 50
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 30 * time.Second
	}
	return &Client{cfg: cfg}, nil
}

// Connect establishes the driver connection and verifies connectivity,
// retrying with exponential backoff. Call once at startup.
func (c *Client) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.cfg.Username, c.cfg.Password, "")

	configure := func(config *neo4j.Config) {
		config.MaxConnectionPoolSize = c.cfg.MaxPoolSize
		config.ConnectionAcquisitionTimeout = c.cfg.QueryTimeout
	}

	var lastErr error
	maxRetries := 5
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		driver, err := neo4j.NewDriverWithContext(c.cfg.URI, auth, configure)
		if err == nil {
			err = driver.VerifyConnectivity(ctx)
			if err == nil {
				c.driver = driver
				return nil
			}
			// release the half-open pool before the next attempt
			driver.Close(ctx)
		}
		lastErr = err

		if ctx.Err() != nil {
			return Unavailable("connect", ctx.Err())
		}

		delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.cfg.QueryTimeout {
			delay = c.cfg.QueryTimeout
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Unavailable("connect", ctx.Err())
		}
	}

	return Unavailable(fmt.Sprintf("connect after %d attempts", maxRetries), lastErr)
}

// Close releases the driver. Safe to call on a client that never connected.
func (c *Client) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	if err := c.driver.Close(ctx); err != nil {
		return Unavailable("close", err)
	}
	c.driver = nil
	return nil
}

// Ping verifies connectivity, used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if c.driver == nil {
		return Unavailable("ping", errors.New("driver not connected"))
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.driver.VerifyConnectivity(pingCtx); err != nil {
		return Unavailable("ping", err)
	}
	return nil
}

// Read executes a parameterized Cypher query in a managed read transaction and
// returns the rows as column-keyed records. The query runs under the configured
// query timeout so a slow store cannot hang a request indefinitely.
func (c *Client) Read(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	if c.driver == nil {
		return nil, Unavailable("read", errors.New("driver not connected"))
	}

	queryCtx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeout)
	defer cancel()

	session := c.driver.NewSession(queryCtx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.cfg.Database,
	})
	defer session.Close(queryCtx)

	result, err := session.ExecuteRead(queryCtx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(queryCtx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(queryCtx)
		if err != nil {
			return nil, err
		}
		return convertRecords(records), nil
	})
	if err != nil {
		return nil, Unavailable("read", err)
	}

	return result.([]Record), nil
}

func convertRecords(records []*neo4j.Record) []Record {
	rows := make([]Record, 0, len(records))
	for _, record := range records {
		row := make(Record, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = record.Values[i]
		}
		rows = append(rows, row)
	}
	return rows
}
