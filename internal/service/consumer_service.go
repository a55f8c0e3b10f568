package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"compliance-agent-be/internal/dto"
	"compliance-agent-be/internal/entity"
	"compliance-agent-be/internal/pkg/logger"
	"compliance-agent-be/internal/repository/contract"
)

const sessionTitleLimit = 80

// IConsumerService drains the transcript topic and persists exchanges. Runs as
// a background worker; chat answering never waits on it.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	sessionRepo contract.ChatSessionRepository
	messageRepo contract.ChatMessageRepository
	sysLogger   logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sessionRepo contract.ChatSessionRepository,
	messageRepo contract.ChatMessageRepository,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		sysLogger:   sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var transcript dto.TranscriptMessage
	if err := json.Unmarshal(msg.Payload, &transcript); err != nil {
		cs.sysLogger.Error("ConsumerService", "Failed to unmarshal transcript message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if err := cs.persistTranscript(ctx, &transcript); err != nil {
		cs.sysLogger.Error("ConsumerService", "Failed to persist transcript", map[string]interface{}{
			"session_id": transcript.SessionId.String(),
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}

func (cs *consumerService) persistTranscript(ctx context.Context, transcript *dto.TranscriptMessage) error {
	now := transcript.AnsweredAt
	if now.IsZero() {
		now = time.Now()
	}

	session := entity.ChatSession{
		Id:        transcript.SessionId,
		Title:     truncateRunes(transcript.Question, sessionTitleLimit),
		CreatedAt: now,
	}
	if err := cs.sessionRepo.Upsert(ctx, &session); err != nil {
		return err
	}

	question := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          transcript.Question,
		Role:          entity.ChatMessageRoleUser,
		ChatSessionId: transcript.SessionId,
		CreatedAt:     now,
	}
	if err := cs.messageRepo.Create(ctx, &question); err != nil {
		return err
	}

	answer := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          transcript.Answer,
		Role:          entity.ChatMessageRoleModel,
		ChatSessionId: transcript.SessionId,
		CreatedAt:     now.Add(time.Second),
	}
	return cs.messageRepo.Create(ctx, &answer)
}

// truncateRunes shortens s to at most n runes, never splitting a multi-byte
// character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
