package utils

import (
	"product-catalog/pkg/envelope"

	"github.com/gin-gonic/gin"
)

// Result is anything that knows the HTTP status it should be written with.
type Result interface {
	HTTPStatus() int
}

// Respond writes res as the body, using its own status as the HTTP status.
func Respond(c *gin.Context, res Result) {
	c.JSON(res.HTTPStatus(), res)
}

// ErrorResponse writes an envelope with a null payload and aborts the chain.
func ErrorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope.Empty[envelope.None](status, message))
}
