package notify

import (
	"context"

	"product-catalog/internal/logger"

	"go.uber.org/zap"
)

// LogNotifier records reset links in the application log. Meant for development.
type LogNotifier struct{}

func (LogNotifier) SendPasswordReset(_ context.Context, msg ResetMessage) error {
	logger.Info("Password reset link issued",
		zap.String("email", msg.Email),
		zap.String("link", msg.Link),
		zap.String("event", "password_reset_link"),
	)
	return nil
}
