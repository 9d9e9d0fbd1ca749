// Package contextgraph implements the property-graph persistence
// layer: one connection to a Neo4j database, idempotent uniqueness
// constraints, and the four primitives (store_metric,
// store_system_state, create_relationship, find_patterns) every
// plugin that writes context-graph state is built on.
//
// There is no process-wide lazy-global handle here: callers construct
// a Client once in main and pass it into whatever needs it.
package contextgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/quartzhollow/mcpgraph/internal/logging"
)

const (
	maxConnectAttempts = 5
	connectRetryDelay  = 2 * time.Second
)

// Graph is the interface plugins depend on, so tests can substitute a
// fake without a live database.
type Graph interface {
	StoreMetric(ctx context.Context, metricType string, value any, timestamp time.Time) (*Node, error)
	StoreSystemState(ctx context.Context, state map[string]any) (*Node, error)
	CreateRelationship(ctx context.Context, fromID, toID string, relType RelationType, properties map[string]string) error
	FindPatterns(ctx context.Context, nodeType NodeType, window time.Duration) ([]*Node, error)
	// RunQuery executes an arbitrary Cypher statement, for the neo4j
	// plugin's direct-query capability. Only plugins/neo4jplugin uses
	// it; the other plugins stay on the fixed primitives above.
	RunQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	Close(ctx context.Context) error
}

// Config identifies the target database.
type Config struct {
	URI      string
	User     string
	Password string
}

// Client is the single reused connection to the context graph.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *logging.Logger
}

var _ Graph = (*Client)(nil)

// New connects to the database named by cfg, making up to five
// attempts at two-second intervals, then asserts the uniqueness
// constraints for every node label. cfg.Password is required.
func New(ctx context.Context, cfg Config, logger *logging.Logger) (*Client, error) {
	if cfg.Password == "" {
		return nil, fmt.Errorf("contextgraph: password is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("contextgraph: build driver: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxConnectAttempts; attempt++ {
		lastErr = driver.VerifyConnectivity(ctx)
		if lastErr == nil {
			break
		}
		logger.Warn(ctx, "context graph connect attempt failed")
		if attempt < maxConnectAttempts {
			time.Sleep(connectRetryDelay)
		}
	}
	if lastErr != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("contextgraph: connect after %d attempts: %w", maxConnectAttempts, lastErr)
	}

	c := &Client{driver: driver, database: "neo4j", logger: logger}
	if err := c.initSchema(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("contextgraph: init schema: %w", err)
	}
	return c, nil
}

// initSchema creates the per-label uniqueness constraints. The
// statement is idempotent: running it twice is a no-op.
func (c *Client) initSchema(ctx context.Context) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	for _, nt := range nodeTypes {
		stmt := fmt.Sprintf("CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE", nt)
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("constraint for %s: %w", nt, err)
		}
	}
	return nil
}

// Close releases the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// StoreMetric creates a Metric node with a freshly generated id.
func (c *Client) StoreMetric(ctx context.Context, metricType string, value any, timestamp time.Time) (*Node, error) {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("contextgraph: marshal metric value: %w", err)
	}

	id := uuid.NewString()
	ts := timestamp.UTC().Format(time.RFC3339)

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			`CREATE (m:Metric {id:$id, type:$type, value:$value, timestamp:$timestamp}) RETURN m`,
			map[string]any{"id": id, "type": metricType, "value": string(valueJSON), "timestamp": ts})
		if err != nil {
			return nil, err
		}
		if _, err := res.Single(ctx); err != nil {
			return nil, fmt.Errorf("no row returned: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("contextgraph: store_metric: %w", err)
	}

	return &Node{
		ID:        id,
		Type:      NodeTypeMetric,
		Timestamp: timestamp.UTC(),
		Properties: map[string]any{
			"type":  metricType,
			"value": string(valueJSON),
		},
	}, nil
}

// StoreSystemState creates a SystemState node with a freshly generated
// id and the current UTC timestamp.
func (c *Client) StoreSystemState(ctx context.Context, state map[string]any) (*Node, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("contextgraph: marshal system state: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	ts := now.Format(time.RFC3339)

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			`CREATE (s:SystemState {id:$id, state:$state, timestamp:$timestamp}) RETURN s`,
			map[string]any{"id": id, "state": string(stateJSON), "timestamp": ts})
		if err != nil {
			return nil, err
		}
		if _, err := res.Single(ctx); err != nil {
			return nil, fmt.Errorf("no row returned: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("contextgraph: store_system_state: %w", err)
	}

	return &Node{
		ID:        id,
		Type:      NodeTypeSystemState,
		Timestamp: now,
		Properties: map[string]any{
			"state": string(stateJSON),
		},
	}, nil
}

// CreateRelationship matches two nodes by id across all labels and
// creates the directed, typed edge between them, replacing (not
// merging) its property map. properties values are stringified: the
// underlying driver accepts only primitive relationship properties,
// so richer values must be flattened by the caller before this call.
func (c *Client) CreateRelationship(ctx context.Context, fromID, toID string, relType RelationType, properties map[string]string) error {
	if properties == nil {
		properties = map[string]string{}
	}
	props := make(map[string]any, len(properties))
	for k, v := range properties {
		props[k] = v
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	stmt := fmt.Sprintf(
		`MATCH (a {id:$from}), (b {id:$to}) CREATE (a)-[r:%s]->(b) SET r = $props RETURN r`,
		relType,
	)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, stmt, map[string]any{"from": fromID, "to": toID, "props": props})
		if err != nil {
			return nil, err
		}
		if _, err := res.Single(ctx); err != nil {
			return nil, fmt.Errorf("endpoint not found: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("contextgraph: create_relationship: %w", err)
	}
	return nil
}

// FindPatterns returns every node of nodeType whose timestamp falls
// within window of now, ordered ascending by timestamp.
func (c *Client) FindPatterns(ctx context.Context, nodeType NodeType, window time.Duration) ([]*Node, error) {
	since := time.Now().UTC().Add(-window).Format(time.RFC3339)

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	stmt := fmt.Sprintf(`MATCH (n:%s) WHERE n.timestamp >= $since RETURN n ORDER BY n.timestamp ASC`, nodeType)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, stmt, map[string]any{"since": since})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("contextgraph: find_patterns: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	nodes := make([]*Node, 0, len(records))
	for _, rec := range records {
		raw, ok := rec.Get("n")
		if !ok {
			continue
		}
		n, ok := raw.(neo4j.Node)
		if !ok {
			continue
		}
		nodes = append(nodes, nodeFromDriver(nodeType, n))
	}
	return nodes, nil
}

// RunQuery executes an arbitrary Cypher statement and flattens each
// returned record into a map keyed by column name, for the neo4j
// plugin's generic "query" capability.
func (c *Client) RunQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("contextgraph: run_query: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := make(map[string]any, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = rec.Values[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func nodeFromDriver(nodeType NodeType, n neo4j.Node) *Node {
	props := n.Props
	id, _ := props["id"].(string)
	tsRaw, _ := props["timestamp"].(string)
	ts, err := time.Parse(time.RFC3339, tsRaw)
	if err != nil {
		ts = time.Time{}
	}
	return &Node{ID: id, Type: nodeType, Timestamp: ts, Properties: props}
}
