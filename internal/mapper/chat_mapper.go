package mapper

import (
	"compliance-agent-be/internal/dto"
	"compliance-agent-be/internal/entity"
	"compliance-agent-be/pkg/knowledge"
)

const citationSnippetLimit = 160

// ToControlSummaries flattens retrieved documents into the response's
// controls list, one entry per matched Control, in retrieval order.
func ToControlSummaries(documents []knowledge.Document) []dto.ControlSummary {
	controls := make([]dto.ControlSummary, 0, len(documents))
	for _, doc := range documents {
		controls = append(controls, dto.ControlSummary{
			ControlId: doc.Metadata.ControlId,
			Title:     doc.Metadata.Title,
			GroupId:   doc.Metadata.GroupId,
		})
	}
	return controls
}

func ToRuleSummaries(documents []knowledge.Document) []dto.RuleSummary {
	rules := make([]dto.RuleSummary, 0)
	for _, doc := range documents {
		for _, rule := range doc.Metadata.Rules {
			rules = append(rules, dto.RuleSummary{
				RuleId:   rule.RuleId,
				Platform: rule.Platform,
			})
		}
	}
	return rules
}

func ToCitations(documents []knowledge.Document) []dto.Citation {
	citations := make([]dto.Citation, 0, len(documents))
	for _, doc := range documents {
		label := doc.Metadata.ControlId
		if doc.Metadata.Title != "" {
			label = doc.Metadata.ControlId + ": " + doc.Metadata.Title
		}
		snippet := doc.Content
		if runes := []rune(snippet); len(runes) > citationSnippetLimit {
			// cut on a rune boundary so non-ASCII content stays valid UTF-8
			snippet = string(runes[:citationSnippetLimit])
		}
		citations = append(citations, dto.Citation{
			Label:   label,
			Snippet: snippet,
		})
	}
	return citations
}

func ToChatHistoryResponse(messages []*entity.ChatMessage) []*dto.GetChatHistoryResponse {
	history := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		history = append(history, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			CreatedAt: msg.CreatedAt,
		})
	}
	return history
}
