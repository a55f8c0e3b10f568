package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatMessageRoleUser  = "user"
	ChatMessageRoleModel = "model"
)

type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Chat          string
	Role          string
	ChatSessionId uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time
}
