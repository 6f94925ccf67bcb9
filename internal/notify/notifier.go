// Package notify delivers password reset links.
package notify

import (
	"context"
	"net/url"
)

// ResetMessage is what a user needs to finish a password reset.
type ResetMessage struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
	Link  string `json:"link"`
}

// Notifier sends reset messages. Implementations must not retain msg.
type Notifier interface {
	SendPasswordReset(ctx context.Context, msg ResetMessage) error
}

// ResetLink appends token and email to base as query parameters.
func ResetLink(base, token, email string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("email", email)
	u.RawQuery = q.Encode()
	return u.String()
}
