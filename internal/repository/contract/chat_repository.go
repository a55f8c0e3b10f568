package contract

import (
	"context"

	"github.com/google/uuid"

	"compliance-agent-be/internal/entity"
)

type ChatSessionRepository interface {
	Upsert(ctx context.Context, session *entity.ChatSession) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error)
}

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	FindBySessionId(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error)
}
