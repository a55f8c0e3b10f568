package agent

import (
	"context"
	"errors"
	"sync/atomic"

	"compliance-agent-be/pkg/knowledge"
)

// ErrNotReady is returned for requests arriving before Start or after Stop.
var ErrNotReady = errors.New("agent is not ready")

// Retriever is the retrieval half of the pairing.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]knowledge.Document, error)
	TopK() int
}

// Generator is the synthesis half of the pairing.
type Generator interface {
	Generate(ctx context.Context, query string, documents []knowledge.Document) (string, error)
}

// Answer pairs the synthesized text with the Documents it was grounded on so
// the API layer can enrich its response with citations and control summaries.
type Answer struct {
	Text      string
	Documents []knowledge.Document
}

// Agent is the Retriever+Generator pairing, constructed once at startup and
// shared across requests. It replaces a hidden mutable global with an explicit
// lifecycle: Ask only works between Start and Stop.
type Agent struct {
	retriever Retriever
	generator Generator
	ready     atomic.Bool
}

func New(retriever Retriever, generator Generator) (*Agent, error) {
	if retriever == nil || generator == nil {
		return nil, errors.New("agent: retriever and generator are required")
	}
	return &Agent{
		retriever: retriever,
		generator: generator,
	}, nil
}

// Start marks the agent ready to serve.
func (a *Agent) Start(ctx context.Context) error {
	a.ready.Store(true)
	return nil
}

// Stop tears the agent down; subsequent Asks fail with ErrNotReady.
func (a *Agent) Stop(ctx context.Context) error {
	a.ready.Store(false)
	return nil
}

// TopK exposes the retriever's configured bound for response metadata.
func (a *Agent) TopK() int {
	return a.retriever.TopK()
}

// Ask answers one question: retrieval runs to completion first, then a single
// generation call over the retrieved Documents. Retrieval and generation
// failures propagate unchanged, each carrying its own taxonomy tag.
func (a *Agent) Ask(ctx context.Context, question string) (*Answer, error) {
	if !a.ready.Load() {
		return nil, ErrNotReady
	}

	documents, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	text, err := a.generator.Generate(ctx, question, documents)
	if err != nil {
		return nil, err
	}

	return &Answer{Text: text, Documents: documents}, nil
}
