package knowledge

import (
	"context"
	"errors"
	"fmt"

	"compliance-agent-be/pkg/graph"
)

// Querier is the slice of the graph client the retriever needs.
type Querier interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]graph.Record, error)
}

// controlSearchCypher matches Controls by case-insensitive substring against
// title, identifier and description, and left-joins their rules. A Control
// with an absent property never matches on that property: Neo4j evaluates
// `null CONTAINS x` to null, which excludes the row. The bound applies at the
// Control level; one Control can bring arbitrarily many rules.
const controlSearchCypher = `
MATCH (c:Control)
WHERE toLower(c.title) CONTAINS toLower($query)
   OR toLower(c.control_id) CONTAINS toLower($query)
   OR toLower(c.description) CONTAINS toLower($query)
OPTIONAL MATCH (c)-[:HAS_RULE]->(r:Rule)
RETURN c, collect(r) AS rules
LIMIT $top_k
`

// ControlRetriever translates one free-text query into a bounded set of
// normalized Documents. Stateless aside from its fixed configuration, so
// concurrent Retrieve calls are safe.
type ControlRetriever struct {
	store Querier
	topK  int
}

// NewControlRetriever builds a retriever returning at most topK Documents per
// query. topK is fixed for the lifetime of the retriever.
func NewControlRetriever(store Querier, topK int) (*ControlRetriever, error) {
	if store == nil {
		return nil, errors.New("knowledge: store is required")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("knowledge: top_k must be positive, got %d", topK)
	}
	return &ControlRetriever{store: store, topK: topK}, nil
}

// TopK returns the configured result bound.
func (r *ControlRetriever) TopK() int {
	return r.topK
}

// Retrieve runs the control search and shapes each matched Control into
// exactly one Document, preserving store order. An empty result is a valid,
// successful outcome; a store failure propagates as ErrStoreUnavailable so
// callers can distinguish it from "no matches".
func (r *ControlRetriever) Retrieve(ctx context.Context, query string) ([]Document, error) {
	params := map[string]any{
		"query": query,
		"top_k": r.topK,
	}

	rows, err := r.store.Read(ctx, controlSearchCypher, params)
	if err != nil {
		if errors.Is(err, graph.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, graph.Unavailable("control search", err)
	}

	documents := make([]Document, 0, len(rows))
	for _, row := range rows {
		control, ok := controlFromRow(row)
		if !ok {
			continue
		}
		documents = append(documents, buildDocument(control, rulesFromRow(row)))
	}

	return documents, nil
}
