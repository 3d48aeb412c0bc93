package database

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/ZanzyTHEbar/glucoscreen/internal/analysis"
	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// Session is an anonymous browser session; no account data is kept
type Session struct {
	ID         string    `json:"id" db:"id"`
	IPHash     string    `json:"-" db:"ip_hash"`
	Locale     string    `json:"locale" db:"locale"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at" db:"last_seen_at"`
}

// AssessmentRecord is a stored assessment. Advice is recomputed from the vector on demand.
type AssessmentRecord struct {
	ID          string              `json:"id" db:"id"`
	SessionID   string              `json:"-" db:"session_id"`
	Source      string              `json:"source" db:"source"`
	Label       int                 `json:"label" db:"label"`
	Margin      float64             `json:"margin" db:"margin"`
	Vector      types.FeatureVector `json:"vector" db:"vector"`
	AdviceCount int                 `json:"advice_count" db:"advice_count"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
}

// ContactMessage is a composed contact form message
type ContactMessage struct {
	ID        string    `json:"id" db:"id"`
	SessionID string    `json:"-" db:"session_id"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// HashIP anonymizes a client address before it is stored
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// NewSession creates a new session with generated ID
func NewSession(ipAddress, locale string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:         uuid.New().String(),
		IPHash:     HashIP(ipAddress),
		Locale:     locale,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

// NewAssessmentRecord converts a pipeline result for storage
func NewAssessmentRecord(sessionID string, a *analysis.Assessment) *AssessmentRecord {
	return &AssessmentRecord{
		ID:          a.ID,
		SessionID:   sessionID,
		Source:      string(a.Source),
		Label:       a.Label,
		Margin:      a.Margin,
		Vector:      a.Vector,
		AdviceCount: len(a.Advice),
		CreatedAt:   a.AssessedAt.UTC(),
	}
}

// NewContactMessage creates a contact message with generated ID
func NewContactMessage(sessionID, email, subject, body string) *ContactMessage {
	return &ContactMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Email:     email,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}
