package answer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"compliance-agent-be/pkg/knowledge"
	"compliance-agent-be/pkg/llm"
)

// Generator synthesizes an answer from retrieved control Documents using the
// "stuff" strategy: every Document body goes into a single grounded prompt and
// one model call produces the answer. No chunking, no iterative summarization.
// Total context size is bounded only by the retriever's top_k, so that knob is
// the safety valve against oversized prompts.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Generate answers the query from the given Documents. An empty Document set
// is a valid input: the model is told no controls matched and asked for a
// best-effort answer. A model failure propagates tagged as a generation
// failure; it is never converted into a canned answer string.
func (g *Generator) Generate(ctx context.Context, query string, documents []knowledge.Document) (string, error) {
	prompt := g.buildGroundedPrompt(query, documents)

	response, err := g.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		g.logger.Printf("[ERROR] LLM generation failed: %v", err)
		if !errors.Is(err, llm.ErrGenerationFailure) {
			err = fmt.Errorf("%w: %v", llm.ErrGenerationFailure, err)
		}
		return "", err
	}

	g.logger.Printf("[GENERATION] Answer generated from %d controls", len(documents))
	return response, nil
}

func (g *Generator) buildGroundedPrompt(query string, documents []knowledge.Document) string {
	var prompt strings.Builder

	prompt.WriteString("You are a compliance assistant answering questions about security controls.\n\n")

	if len(documents) == 0 {
		prompt.WriteString("No matching controls were found in the knowledge base for this question.\n")
		prompt.WriteString("Say so explicitly, then give a careful best-effort answer if you can.\n\n")
	} else {
		prompt.WriteString("<controls>\n")
		prompt.WriteString("Answer ONLY from the controls below. Cite control ids where relevant.\n\n")
		for i, doc := range documents {
			prompt.WriteString(fmt.Sprintf("--- Control %d: %s ---\n", i+1, doc.Metadata.ControlId))
			if doc.Content != "" {
				prompt.WriteString(doc.Content)
				prompt.WriteString("\n")
			}
			for _, rule := range doc.Metadata.Rules {
				prompt.WriteString(fmt.Sprintf("Rule %s [%s]: %s\n", rule.RuleId, rule.Platform, rule.Text))
			}
			prompt.WriteString("\n")
		}
		prompt.WriteString("</controls>\n\n")
	}

	prompt.WriteString("Question: ")
	prompt.WriteString(query)
	return prompt.String()
}
