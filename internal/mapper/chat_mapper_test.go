package mapper

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-agent-be/internal/entity"
	"compliance-agent-be/pkg/knowledge"
)

func TestToCitationsLabelAndSnippet(t *testing.T) {
	docs := []knowledge.Document{
		{
			Content:  "Disable root login\n\nRemote root login must be disabled.",
			Metadata: knowledge.DocumentMetadata{ControlId: "CCE-001", Title: "Disable root login"},
		},
		{
			Content:  "Enable firewall",
			Metadata: knowledge.DocumentMetadata{ControlId: "CCE-002"},
		},
	}

	citations := ToCitations(docs)
	require.Len(t, citations, 2)
	assert.Equal(t, "CCE-001: Disable root login", citations[0].Label)
	assert.Equal(t, "CCE-002", citations[1].Label)
	assert.Equal(t, "Enable firewall", citations[1].Snippet)
}

func TestToCitationsSnippetKeepsValidUTF8(t *testing.T) {
	// 200 three-byte runes; a byte-indexed cut would land mid-rune
	content := strings.Repeat("制", 200)
	docs := []knowledge.Document{
		{Content: content, Metadata: knowledge.DocumentMetadata{ControlId: "CCE-003"}},
	}

	citations := ToCitations(docs)
	require.Len(t, citations, 1)

	snippet := citations[0].Snippet
	assert.True(t, utf8.ValidString(snippet))
	assert.Equal(t, 160, utf8.RuneCountInString(snippet))
	assert.True(t, strings.HasPrefix(content, snippet))
}

func TestToRuleSummariesFlattens(t *testing.T) {
	docs := []knowledge.Document{
		{Metadata: knowledge.DocumentMetadata{ControlId: "CCE-001", Rules: []knowledge.Rule{
			{RuleId: "R1", Platform: "linux"},
			{RuleId: "R2", Platform: "windows"},
		}}},
		{Metadata: knowledge.DocumentMetadata{ControlId: "CCE-002", Rules: []knowledge.Rule{}}},
	}

	rules := ToRuleSummaries(docs)
	require.Len(t, rules, 2)
	assert.Equal(t, "R1", rules[0].RuleId)
	assert.Equal(t, "windows", rules[1].Platform)
}

func TestToChatHistoryResponse(t *testing.T) {
	now := time.Now()
	messages := []*entity.ChatMessage{
		{Id: uuid.New(), Role: entity.ChatMessageRoleUser, Chat: "question", CreatedAt: now},
		{Id: uuid.New(), Role: entity.ChatMessageRoleModel, Chat: "answer", CreatedAt: now.Add(time.Second)},
	}

	history := ToChatHistoryResponse(messages)
	require.Len(t, history, 2)
	assert.Equal(t, "question", history[0].Chat)
	assert.Equal(t, entity.ChatMessageRoleModel, history[1].Role)
}
