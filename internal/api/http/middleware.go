package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/azis003/tick-track/internal/observability"
	apperrors "github.com/azis003/tick-track/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware renders every error as the {"error": {code, message,
// details}} envelope. Lifecycle conflicts (invalid transition, lost
// compare-and-set race) are expected ticket traffic and log at info; only
// 5xx conditions log as errors.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			domainErr := apperrors.ToDomainError(err)
			if metrics != nil {
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			}
			switch {
			case domainErr.HTTPStatus >= 500:
				logger.Error("request failed",
					zap.String("method", c.Method()), zap.String("path", c.Path()), zap.Error(domainErr))
			case domainErr.Code == apperrors.CodeInvalidTransition ||
				domainErr.Code == apperrors.CodeConcurrentModification:
				logger.Info("lifecycle conflict",
					zap.String("path", c.Path()), zap.String("code", domainErr.Code))
			}

			errBody := fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}
			if len(domainErr.Details) > 0 {
				errBody["details"] = domainErr.Details
			}
			c.Status(domainErr.HTTPStatus)
			_ = c.JSON(fiber.Map{"error": errBody})
			err = nil
		}()
		return c.Next()
	}
}
