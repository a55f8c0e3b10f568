package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-agent-be/pkg/graph"
)

// fakeStore mimics the store-side semantics of the control search query:
// case-insensitive substring match over title/control_id/description, absent
// (nil) fields never matching, rules joined per control, bounded by top_k.
type fakeStore struct {
	rows  []graph.Record
	calls int
	err   error
}

type fakeControl struct {
	props map[string]any
	rules []map[string]any
}

func newFakeStore(controls ...fakeControl) *fakeStore {
	fs := &fakeStore{}
	for _, c := range controls {
		collected := make([]any, 0, len(c.rules))
		for _, r := range c.rules {
			collected = append(collected, r)
		}
		if len(collected) == 0 {
			// OPTIONAL MATCH with no rule collects a single null
			collected = append(collected, nil)
		}
		fs.rows = append(fs.rows, graph.Record{"c": c.props, "rules": collected})
	}
	return fs
}

func (fs *fakeStore) Read(ctx context.Context, cypher string, params map[string]any) ([]graph.Record, error) {
	fs.calls++
	if fs.err != nil {
		return nil, fs.err
	}

	query := strings.ToLower(params["query"].(string))
	topK := params["top_k"].(int)

	matched := make([]graph.Record, 0)
	for _, row := range fs.rows {
		props := row["c"].(map[string]any)
		if propContains(props, "title", query) ||
			propContains(props, "control_id", query) ||
			propContains(props, "description", query) {
			matched = append(matched, row)
		}
		if len(matched) == topK {
			break
		}
	}
	return matched, nil
}

func propContains(props map[string]any, key, query string) bool {
	s, ok := props[key].(string)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(s), query)
}

func sshControl() fakeControl {
	return fakeControl{
		props: map[string]any{
			"control_id":    "CCE-001",
			"title":         "Disable root login",
			"description":   "Remote root login over SSH must be disabled.",
			"control_group": "SSH",
		},
		rules: []map[string]any{
			{"rule_id": "R1", "text": "sshd_config PermitRootLogin no", "platform": "linux"},
		},
	}
}

func TestRetrieveShapesDocument(t *testing.T) {
	store := newFakeStore(sshControl())
	retriever, err := NewControlRetriever(store, 10)
	require.NoError(t, err)

	docs, err := retriever.Retrieve(context.Background(), "root login")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.True(t, strings.HasPrefix(doc.Content, "Disable root login"))
	assert.Equal(t, "Disable root login\n\nRemote root login over SSH must be disabled.", doc.Content)
	assert.Equal(t, "CCE-001", doc.Metadata.ControlId)
	assert.Equal(t, "SSH", doc.Metadata.GroupId)
	assert.Equal(t, []Rule{{RuleId: "R1", Text: "sshd_config PermitRootLogin no", Platform: "linux"}}, doc.Metadata.Rules)
}

func TestRetrieveIsCaseInsensitive(t *testing.T) {
	store := newFakeStore(sshControl())
	retriever, err := NewControlRetriever(store, 10)
	require.NoError(t, err)

	lower, err := retriever.Retrieve(context.Background(), "root login")
	require.NoError(t, err)
	upper, err := retriever.Retrieve(context.Background(), "ROOT LOGIN")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
}

func TestRetrieveEnforcesBound(t *testing.T) {
	controls := make([]fakeControl, 0, 8)
	for i := 0; i < 8; i++ {
		controls = append(controls, fakeControl{
			props: map[string]any{
				"control_id": "CCE-00" + string(rune('0'+i)),
				"title":      "Firewall baseline",
			},
		})
	}
	store := newFakeStore(controls...)
	retriever, err := NewControlRetriever(store, 5)
	require.NoError(t, err)

	// empty query matches every control; the bound still applies
	docs, err := retriever.Retrieve(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, docs, 5)

	// store-returned order is preserved, no re-sorting
	for i, doc := range docs {
		assert.Equal(t, "CCE-00"+string(rune('0'+i)), doc.Metadata.ControlId)
	}
}

func TestRetrieveControlWithoutRules(t *testing.T) {
	store := newFakeStore(fakeControl{
		props: map[string]any{
			"control_id": "CCE-002",
			"title":      "Enable firewall",
		},
	})
	retriever, err := NewControlRetriever(store, 10)
	require.NoError(t, err)

	docs, err := retriever.Retrieve(context.Background(), "firewall")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	// the null placeholder from OPTIONAL MATCH must not survive mapping
	assert.NotNil(t, docs[0].Metadata.Rules)
	assert.Empty(t, docs[0].Metadata.Rules)
}

func TestRetrieveContentSkipsAbsentParts(t *testing.T) {
	store := newFakeStore(
		fakeControl{props: map[string]any{"control_id": "CCE-010", "title": "Audit logging"}},
		fakeControl{props: map[string]any{"control_id": "CCE-011", "description": "Audit daemon must run."}},
		fakeControl{props: map[string]any{"control_id": "CCE-012-audit"}},
	)
	retriever, err := NewControlRetriever(store, 10)
	require.NoError(t, err)

	docs, err := retriever.Retrieve(context.Background(), "audit")
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "Audit logging", docs[0].Content)
	assert.Equal(t, "Audit daemon must run.", docs[1].Content)
	assert.Equal(t, "", docs[2].Content)
}

func TestRetrieveNoMatchesIsNotAnError(t *testing.T) {
	store := newFakeStore(sshControl())
	retriever, err := NewControlRetriever(store, 10)
	require.NoError(t, err)

	docs, err := retriever.Retrieve(context.Background(), "kubernetes")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRetrieveIsIdempotent(t *testing.T) {
	store := newFakeStore(sshControl(), fakeControl{
		props: map[string]any{"control_id": "CCE-003", "title": "Restrict su command", "control_group": "SSH"},
	})
	retriever, err := NewControlRetriever(store, 10)
	require.NoError(t, err)

	first, err := retriever.Retrieve(context.Background(), "ss")
	require.NoError(t, err)
	second, err := retriever.Retrieve(context.Background(), "ss")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, store.calls)
}

func TestRetrieveStoreFailurePropagates(t *testing.T) {
	store := newFakeStore(sshControl())
	store.err = graph.Unavailable("read", errors.New("connection refused"))
	retriever, err := NewControlRetriever(store, 10)
	require.NoError(t, err)

	docs, err := retriever.Retrieve(context.Background(), "root")
	assert.Nil(t, docs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrStoreUnavailable))
}

func TestRetrieveWrapsBareStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("socket closed")
	retriever, err := NewControlRetriever(store, 3)
	require.NoError(t, err)

	_, err = retriever.Retrieve(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrStoreUnavailable))
}

func TestNewControlRetrieverValidation(t *testing.T) {
	_, err := NewControlRetriever(nil, 5)
	assert.Error(t, err)

	_, err = NewControlRetriever(newFakeStore(), 0)
	assert.Error(t, err)

	_, err = NewControlRetriever(newFakeStore(), -1)
	assert.Error(t, err)
}
