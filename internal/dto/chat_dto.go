package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChatTurn is one prior exchange supplied by the client. Accepted and
// persisted, but not consumed by the retrieval/generation core.
type ChatTurn struct {
	User      string `json:"user" validate:"required"`
	Assistant string `json:"assistant,omitempty"`
}

type ChatRequest struct {
	Question  string     `json:"question" validate:"required"`
	SessionId string     `json:"session_id,omitempty" validate:"omitempty,uuid4"`
	History   []ChatTurn `json:"history,omitempty" validate:"omitempty,max=50,dive"`
}

type Citation struct {
	Label   string `json:"label"`
	Snippet string `json:"snippet,omitempty"`
	Url     string `json:"url,omitempty"`
}

type ControlSummary struct {
	ControlId string `json:"control_id"`
	Title     string `json:"title,omitempty"`
	GroupId   string `json:"group_id,omitempty"`
}

type RuleSummary struct {
	RuleId   string `json:"rule_id"`
	Platform string `json:"platform,omitempty"`
}

// ChatResponse always carries an answer; the remaining fields are built from
// the retrieved documents and may be empty.
type ChatResponse struct {
	Answer    string           `json:"answer"`
	Citations []Citation       `json:"citations"`
	Controls  []ControlSummary `json:"controls"`
	Rules     []RuleSummary    `json:"rules"`
	Metadata  map[string]any   `json:"metadata"`
	SessionId uuid.UUID        `json:"session_id"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
}

// TranscriptMessage is the payload published to the transcript topic after an
// exchange completes; the consumer persists it asynchronously.
type TranscriptMessage struct {
	SessionId  uuid.UUID  `json:"session_id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	History    []ChatTurn `json:"history,omitempty"`
	AnsweredAt time.Time  `json:"answered_at"`
}

// --- Limit Exceeded Error Types ---

// LimitExceededError is a custom error that carries usage details
type LimitExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *LimitExceededError) Error() string {
	return "daily question limit exceeded"
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

// LimitExceededResponse is the full 429 response structure
type LimitExceededResponse struct {
	Success   bool              `json:"success"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	ErrorType string            `json:"error_type"`
	Data      LimitExceededData `json:"data"`
}
