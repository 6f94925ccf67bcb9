package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"product-catalog/internal/config"
)

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails reset links through an SMTP relay.
type SMTPNotifier struct {
	cfg      config.SMTPConfig
	sendMail SendMailFunc
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, sendMail: smtp.SendMail}
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, msg ResetMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	if err := n.sendMail(addr, auth, n.cfg.From, []string{msg.Email}, resetMail(n.cfg.From, msg)); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	return nil
}

func resetMail(from string, msg ResetMessage) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.Email)
	b.WriteString("Subject: Reset Password Notification\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", msg.Name)
	b.WriteString("You are receiving this email because we received a password reset request for your account.\r\n\r\n")
	fmt.Fprintf(&b, "Reset Password: %s\r\n\r\n", msg.Link)
	b.WriteString("This password reset link will expire in 60 minutes.\r\n")
	b.WriteString("If you did not request a password reset, no further action is required.\r\n")
	return b.Bytes()
}
