// Package mailer relays notifications to users' e-mail addresses through an
// SMTP smarthost.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"
)

// DefaultFromName is the display name of relayed mail
const DefaultFromName = "ProjectHub"

// Config holds the relay settings
type Config struct {
	// Addr is the host:port of the SMTP relay
	Addr string
	// From is the envelope and header sender address
	From string
	// FromName is the display name of the sender
	FromName string
}

// Relay sends one message per recipient so addresses are never disclosed
// to other recipients
type Relay struct {
	config Config
	logger *slog.Logger
}

// New creates a Relay. It returns nil when no relay address is configured.
func New(config Config, logger *slog.Logger) *Relay {
	if config.Addr == "" {
		return nil
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{config: config, logger: logger}
}

// Relay delivers subject and body to every address in to. Delivery stops
// early only when ctx is done; per-recipient failures are joined.
func (r *Relay) Relay(ctx context.Context, to []string, subject, body string) error {
	var errs []error
	for _, addr := range to {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := BuildMessage(r.config.FromName, r.config.From, addr, subject, body)
		if err != nil {
			errs = append(errs, fmt.Errorf("build message for %s: %w", addr, err))
			continue
		}

		if err := smtp.SendMail(r.config.Addr, nil, r.config.From, []string{addr}, bytes.NewReader(msg)); err != nil {
			errs = append(errs, fmt.Errorf("send to %s: %w", addr, err))
			continue
		}

		r.logger.Debug("notification relayed", slog.String("subject", subject))
	}
	return errors.Join(errs...)
}

// BuildMessage encodes a plain text message
func BuildMessage(fromName, from, to, subject, body string) ([]byte, error) {
	if strings.TrimSpace(to) == "" {
		return nil, errors.New("recipient address is required")
	}

	part, err := enmime.Builder().
		From(fromName, from).
		To("", to).
		Subject(subject).
		Text([]byte(body)).
		Build()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
