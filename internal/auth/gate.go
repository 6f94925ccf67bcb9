// Package auth issues and verifies the bearer tokens guarding protected routes.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"product-catalog/internal/config"
	domainUser "product-catalog/internal/domain/user"
	appErrors "product-catalog/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/segmentio/ksuid"
)

const TokenType = "bearer"

// Outcome is the terminal state of verifying a presented token.
type Outcome int

const (
	Valid Outcome = iota
	Missing
	Expired
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Missing:
		return "missing"
	case Expired:
		return "expired"
	default:
		return "invalid"
	}
}

// Claims is the payload of an access token.
type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the caller bound to a request by a verified token.
type Identity struct {
	UserID    int64
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// TokenInfo is the token shape returned to clients.
type TokenInfo struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Gate signs and checks HS256 tokens. It holds no per-request state.
type Gate struct {
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
	clock      clockwork.Clock
}

func NewGate(cfg config.JWTConfig, clock clockwork.Clock) *Gate {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL < ttl {
		refreshTTL = ttl
	}
	return &Gate{
		secret:     []byte(cfg.Secret),
		ttl:        ttl,
		refreshTTL: refreshTTL,
		clock:      clock,
	}
}

// Issue signs a new token for u.
func (g *Gate) Issue(u *domainUser.User) (*TokenInfo, error) {
	return g.sign(u.ID, u.Email)
}

// Verify classifies token into one of the terminal outcomes. The identity is
// returned for Valid and Expired tokens, both of which carry a good signature.
func (g *Gate) Verify(token string) (*Identity, Outcome) {
	if token == "" {
		return nil, Missing
	}

	claims := &Claims{}
	_, err := g.parser(jwt.WithExpirationRequired()).ParseWithClaims(token, claims, g.keyFunc)
	switch {
	case err == nil:
		return claims.identity(), Valid
	case errors.Is(err, jwt.ErrTokenExpired):
		return claims.identity(), Expired
	default:
		return nil, Invalid
	}
}

// Refresh exchanges a token with a good signature, expired or not, for a new
// one, provided it was issued within the refresh window.
func (g *Gate) Refresh(token string) (*TokenInfo, error) {
	claims := &Claims{}
	if _, err := g.parser(jwt.WithoutClaimsValidation()).ParseWithClaims(token, claims, g.keyFunc); err != nil {
		return nil, appErrors.ErrTokenInvalid
	}
	if claims.IssuedAt == nil || claims.UserID == 0 {
		return nil, appErrors.ErrTokenInvalid
	}
	if !g.clock.Now().Before(claims.IssuedAt.Add(g.refreshTTL)) {
		return nil, appErrors.ErrTokenExpired
	}

	return g.sign(claims.UserID, claims.Email)
}

func (g *Gate) sign(userID int64, email string) (*TokenInfo, error) {
	now := g.clock.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ksuid.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenInfo{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresIn:   int64(g.ttl / time.Second),
	}, nil
}

func (g *Gate) parser(opts ...jwt.ParserOption) *jwt.Parser {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(g.clock.Now),
	)
	return jwt.NewParser(opts...)
}

func (g *Gate) keyFunc(*jwt.Token) (interface{}, error) {
	return g.secret, nil
}

func (c *Claims) identity() *Identity {
	id := &Identity{UserID: c.UserID, Email: c.Email, TokenID: c.ID}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}
