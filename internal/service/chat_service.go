package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"compliance-agent-be/internal/dto"
	"compliance-agent-be/internal/mapper"
	"compliance-agent-be/internal/pkg/logger"
	"compliance-agent-be/internal/repository/contract"
	"compliance-agent-be/pkg/agent"
	"compliance-agent-be/pkg/events"
	"compliance-agent-be/pkg/nats"
	"compliance-agent-be/pkg/usage"
)

// ErrSessionNotFound is returned when a history request names a session that
// was never persisted.
var ErrSessionNotFound = errors.New("chat session not found")

// QuestionAgent is the slice of the agent the chat service depends on.
type QuestionAgent interface {
	Ask(ctx context.Context, question string) (*agent.Answer, error)
	TopK() int
}

// UsageLimiter guards the endpoint with a daily allowance.
type UsageLimiter interface {
	Allow(ctx context.Context, key string) usage.Quota
}

type IChatService interface {
	SendChat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
}

type chatService struct {
	agent       QuestionAgent
	limiter     UsageLimiter
	publisher   IPublisherService
	sessionRepo contract.ChatSessionRepository // nil when persistence is disabled
	messageRepo contract.ChatMessageRepository // nil when persistence is disabled
	natsPub     *nats.Publisher                // nil when NATS is unavailable
	sysLogger   logger.ILogger
}

func NewChatService(
	questionAgent QuestionAgent,
	limiter UsageLimiter,
	publisher IPublisherService,
	sessionRepo contract.ChatSessionRepository,
	messageRepo contract.ChatMessageRepository,
	natsPub *nats.Publisher,
	sysLogger logger.ILogger,
) IChatService {
	return &chatService{
		agent:       questionAgent,
		limiter:     limiter,
		publisher:   publisher,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		natsPub:     natsPub,
		sysLogger:   sysLogger,
	}
}

// SendChat answers one question. Retrieval and generation run synchronously;
// transcript persistence and event publishing happen off the critical path and
// never fail the request.
func (cs *chatService) SendChat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	sessionId := uuid.New()
	if request.SessionId != "" {
		if parsed, err := uuid.Parse(request.SessionId); err == nil {
			sessionId = parsed
		}
	}

	quota := cs.limiter.Allow(ctx, sessionId.String())
	if quota.FailedOpen {
		cs.sysLogger.Warn("ChatService", "Usage limiter unreachable, allowing request", map[string]interface{}{
			"session_id": sessionId.String(),
		})
	}
	if quota.Exceeded {
		return nil, &dto.LimitExceededError{
			Limit:      quota.Limit,
			Used:       quota.Used,
			ResetAfter: quota.ResetAfter,
		}
	}

	answer, err := cs.agent.Ask(ctx, request.Question)
	if err != nil {
		return nil, err
	}

	response := &dto.ChatResponse{
		Answer:    answer.Text,
		Citations: mapper.ToCitations(answer.Documents),
		Controls:  mapper.ToControlSummaries(answer.Documents),
		Rules:     mapper.ToRuleSummaries(answer.Documents),
		Metadata: map[string]any{
			"retrieved": len(answer.Documents),
			"top_k":     cs.agent.TopK(),
		},
		SessionId: sessionId,
	}

	if cs.publisher != nil {
		transcript := &dto.TranscriptMessage{
			SessionId:  sessionId,
			Question:   request.Question,
			Answer:     answer.Text,
			History:    request.History,
			AnsweredAt: time.Now(),
		}
		if err := cs.publisher.PublishTranscript(ctx, transcript); err != nil {
			cs.sysLogger.Warn("ChatService", "Failed to publish transcript", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
	}

	if cs.natsPub != nil {
		event := events.NewChatAnsweredEvent(sessionId.String(), len(answer.Documents), len(answer.Documents) > 0)
		if err := cs.natsPub.Publish(ctx, event); err != nil {
			cs.sysLogger.Warn("ChatService", "Failed to publish chat answered event", map[string]interface{}{
				"session_id": sessionId.String(),
				"error":      err.Error(),
			})
		}
	}

	return response, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	if cs.messageRepo == nil {
		return []*dto.GetChatHistoryResponse{}, nil
	}

	if cs.sessionRepo != nil {
		session, err := cs.sessionRepo.FindById(ctx, sessionId)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrSessionNotFound
		}
	}

	messages, err := cs.messageRepo.FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return mapper.ToChatHistoryResponse(messages), nil
}
