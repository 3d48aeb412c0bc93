// Package notify prepares contact messages. Messages are logged and stored,
// never delivered.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ZanzyTHEbar/glucoscreen/internal/database"
	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/locale"
	"github.com/ZanzyTHEbar/glucoscreen/internal/monitoring"
	"github.com/ZanzyTHEbar/glucoscreen/internal/security"
)

// MaxMessageLength bounds subject and message text in runes
const MaxMessageLength = 5000

// Store persists composed messages
type Store interface {
	SaveContactMessage(m *database.ContactMessage) error
}

// ContactRequest is the contact form payload
type ContactRequest struct {
	Subject string `json:"subject" binding:"required" validate:"required"`
	Message string `json:"message" binding:"required" validate:"required"`
	Email   string `json:"email" binding:"required,email" validate:"required,email"`
}

// Composed is a prepared message
type Composed struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	ReplyTo   string    `json:"reply_to"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Composer validates, composes, logs and stores contact messages
type Composer struct {
	recipient string
	store     Store
	logger    *monitoring.Logger
	metrics   *monitoring.Metrics
	validate  *validator.Validate
}

// NewComposer creates a composer addressing messages to recipient. store and
// metrics may be nil.
func NewComposer(recipient string, store Store, logger *monitoring.Logger, metrics *monitoring.Metrics) *Composer {
	return &Composer{
		recipient: recipient,
		store:     store,
		logger:    logger,
		metrics:   metrics,
		validate:  validator.New(),
	}
}

// ComposeContent renders the message text
func ComposeContent(subject, body string) string {
	return fmt.Sprintf("Subject: %s\n\n%s", subject, body)
}

// Compose validates req and prepares the message. A missing field yields a
// validation error carrying the localized "fill out all fields" text.
func (c *Composer) Compose(sessionID string, req ContactRequest, loc locale.Localizer) (*Composed, error) {
	req.Subject = security.SanitizeText(req.Subject)
	req.Message = security.SanitizeText(req.Message)
	req.Email = strings.TrimSpace(req.Email)

	if problems := c.check(req); len(problems) > 0 {
		return nil, apperrors.NewValidationErrorWithFields(loc.T(locale.KeyFillOutAllFields), problems)
	}

	msg := database.NewContactMessage(sessionID, req.Email, req.Subject, req.Message)
	composed := &Composed{
		ID:        msg.ID,
		To:        c.recipient,
		ReplyTo:   req.Email,
		Content:   ComposeContent(req.Subject, req.Message),
		CreatedAt: msg.CreatedAt,
	}

	if c.store != nil {
		if err := c.store.SaveContactMessage(msg); err != nil {
			return nil, apperrors.NewInternalError("failed to store contact message", err)
		}
	}

	if c.logger != nil {
		c.logger.ContactLogger(composed.ID, composed.To, composed.ReplyTo, composed.Content)
	}
	if c.metrics != nil {
		c.metrics.IncrementContactMessages()
	}

	return composed, nil
}

func (c *Composer) check(req ContactRequest) map[string]string {
	problems := make(map[string]string)

	if err := c.validate.Struct(req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				problems[strings.ToLower(fe.Field())] = fe.Tag()
			}
		} else {
			problems["request"] = err.Error()
		}
	}

	for field, text := range map[string]string{"subject": req.Subject, "message": req.Message} {
		if _, bad := problems[field]; bad {
			continue
		}
		if err := security.ValidateText(text, MaxMessageLength); err != nil {
			problems[field] = err.Error()
		}
	}

	return problems
}
