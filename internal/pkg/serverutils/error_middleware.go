package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"compliance-agent-be/internal/dto"
	"compliance-agent-be/internal/pkg/logger"
	"compliance-agent-be/internal/service"
	"compliance-agent-be/pkg/agent"
	"compliance-agent-be/pkg/graph"
	"compliance-agent-be/pkg/llm"
)

// ErrorHandlerMiddleware maps the error taxonomy to client-visible responses:
// not-ready and store failures are 503, generation failures are 502, quota
// exhaustion is 429. The distinction matters for monitoring: a 503 here means
// the graph store, a 502 means the model provider. Server-side failures are
// logged through sysLogger so they surface in the admin logs endpoint.
func ErrorHandlerMiddleware(sysLogger logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var limitErr *dto.LimitExceededError
		if errors.As(err, &limitErr) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(dto.LimitExceededResponse{
				Success:   false,
				Code:      fiber.StatusTooManyRequests,
				Message:   limitErr.Error(),
				ErrorType: "LIMIT_EXCEEDED",
				Data: dto.LimitExceededData{
					Limit:      limitErr.Limit,
					Used:       limitErr.Used,
					ResetAfter: limitErr.ResetAfter,
				},
			})
		}

		var fiberErr *fiber.Error
		switch {
		case errors.Is(err, agent.ErrNotReady):
			sysLogger.Warn("Http", "Request rejected, agent not ready", map[string]interface{}{
				"path": ctx.Path(),
			})
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse("service is not ready"))
		case errors.Is(err, graph.ErrStoreUnavailable):
			sysLogger.Error("Http", "Knowledge store unavailable", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse("knowledge store is unavailable"))
		case errors.Is(err, llm.ErrGenerationFailure):
			sysLogger.Error("Http", "Answer generation failed", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse("answer generation failed"))
		case errors.Is(err, service.ErrSessionNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse("chat session not found"))
		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		default:
			sysLogger.Error("Http", "Unhandled error", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
		}
	}
}
