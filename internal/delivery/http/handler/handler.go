// Package handler adapts gin requests to service calls and writes the
// returned envelopes unchanged.
package handler

import (
	"errors"
	"io"
	"net/http"

	"product-catalog/internal/auth"
	"product-catalog/internal/middleware"
	appErrors "product-catalog/pkg/errors"
	"product-catalog/pkg/utils"

	"github.com/gin-gonic/gin"
)

const MsgInvalidBody = "Invalid request body"

// bind decodes the body by content type. An empty body is left to the
// validation rules of the operation.
func bind(c *gin.Context, req any) bool {
	err := c.ShouldBind(req)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	badRequest(c, err)
	return false
}

func badRequest(c *gin.Context, err error) {
	appErr := appErrors.NewAppError("INVALID_BODY", MsgInvalidBody, err)
	_ = c.Error(appErr)
	utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
}

// identity returns the authenticated caller, writing the rejection when the
// route was mounted without AuthMiddleware.
func identity(c *gin.Context) (*auth.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusBadRequest, middleware.MsgTokenNotFound)
	}
	return id, ok
}
