package middleware

import (
	"fmt"
	"net/http"

	"product-catalog/internal/logger"
	"product-catalog/pkg/envelope"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a panic into a 500 envelope.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.WithRequestID(GetRequestID(c)).Error("Recovered from panic",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("event", "panic_recovered"),
			zap.Stack("stack"),
		)

		res := envelope.Internal[envelope.None](fmt.Errorf("%v", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, res)
	})
}
