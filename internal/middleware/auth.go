package middleware

import (
	"net/http"
	"strings"

	"product-catalog/internal/auth"
	appErrors "product-catalog/pkg/errors"
	"product-catalog/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	IdentityKey = "identity"
	TokenKey    = "token"

	MsgTokenNotFound = "Authorization token not found"
	MsgTokenInvalid  = "Token is Invalid"
	MsgTokenExpired  = "Token is Expired"
)

// Verifier classifies a presented bearer token.
type Verifier interface {
	Verify(token string) (*auth.Identity, auth.Outcome)
}

type authOptions struct {
	allowExpired bool
}

type AuthOption func(*authOptions)

// AllowExpired lets tokens with a good signature but past their expiry
// through. Only the refresh route is mounted with it.
func AllowExpired() AuthOption {
	return func(o *authOptions) { o.allowExpired = true }
}

func AuthMiddleware(verifier Verifier, opts ...AuthOption) gin.HandlerFunc {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		token := bearerToken(c)

		identity, outcome := verifier.Verify(token)
		switch {
		case outcome == auth.Missing:
			_ = c.Error(appErrors.ErrTokenNotFound)
			utils.ErrorResponse(c, http.StatusBadRequest, MsgTokenNotFound)
			return
		case outcome == auth.Invalid:
			_ = c.Error(appErrors.ErrTokenInvalid)
			utils.ErrorResponse(c, http.StatusUnauthorized, MsgTokenInvalid)
			return
		case outcome == auth.Expired && !o.allowExpired:
			_ = c.Error(appErrors.ErrTokenExpired)
			utils.ErrorResponse(c, http.StatusUnauthorized, MsgTokenExpired)
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(TokenKey, token)

		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to ?token=.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(c.Query("token"))
}

// GetIdentity returns the caller bound by AuthMiddleware.
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok && identity != nil
}

// GetToken returns the raw token accepted by AuthMiddleware.
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
