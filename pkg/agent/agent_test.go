package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-agent-be/pkg/graph"
	"compliance-agent-be/pkg/knowledge"
)

type stubRetriever struct {
	docs  []knowledge.Document
	err   error
	calls int
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]knowledge.Document, error) {
	s.calls++
	return s.docs, s.err
}

func (s *stubRetriever) TopK() int { return 10 }

type stubGenerator struct {
	text  string
	err   error
	calls int
	seen  []knowledge.Document
}

func (s *stubGenerator) Generate(ctx context.Context, query string, documents []knowledge.Document) (string, error) {
	s.calls++
	s.seen = documents
	return s.text, s.err
}

func TestAskBeforeStartFailsNotReady(t *testing.T) {
	a, err := New(&stubRetriever{}, &stubGenerator{})
	require.NoError(t, err)

	_, err = a.Ask(context.Background(), "anything")
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestAskAfterStopFailsNotReady(t *testing.T) {
	a, err := New(&stubRetriever{}, &stubGenerator{text: "ok"})
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, a.Stop(context.Background()))

	_, err = a.Ask(context.Background(), "anything")
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestAskRunsRetrievalBeforeGeneration(t *testing.T) {
	docs := []knowledge.Document{{Content: "Disable root login"}}
	retriever := &stubRetriever{docs: docs}
	generator := &stubGenerator{text: "answer"}

	a, err := New(retriever, generator)
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))

	answer, err := a.Ask(context.Background(), "root login?")
	require.NoError(t, err)
	assert.Equal(t, "answer", answer.Text)
	assert.Equal(t, docs, answer.Documents)
	assert.Equal(t, docs, generator.seen)
}

func TestAskSkipsGenerationOnRetrievalFailure(t *testing.T) {
	retriever := &stubRetriever{err: graph.Unavailable("read", errors.New("down"))}
	generator := &stubGenerator{}

	a, err := New(retriever, generator)
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))

	_, err = a.Ask(context.Background(), "root login?")
	assert.True(t, errors.Is(err, graph.ErrStoreUnavailable))
	assert.Equal(t, 0, generator.calls)
}

func TestNewValidatesCollaborators(t *testing.T) {
	_, err := New(nil, &stubGenerator{})
	assert.Error(t, err)
	_, err = New(&stubRetriever{}, nil)
	assert.Error(t, err)
}
