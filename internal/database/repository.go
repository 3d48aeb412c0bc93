package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned when a session id is unknown
var ErrSessionNotFound = errors.New("session not found")

// DefaultHistoryLimit caps ListAssessments when no limit is given
const DefaultHistoryLimit = 50

// Repository handles database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateSession stores a new anonymous session
func (r *Repository) CreateSession(s *Session) error {
	stmt, err := r.db.GetPreparedStatement("insert_session")
	if err != nil {
		return err
	}

	if _, err := stmt.Exec(s.ID, s.IPHash, s.Locale, s.CreatedAt, s.LastSeenAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession loads a session by id
func (r *Repository) GetSession(id string) (*Session, error) {
	stmt, err := r.db.GetPreparedStatement("get_session")
	if err != nil {
		return nil, err
	}

	var s Session
	err = stmt.QueryRow(id).Scan(&s.ID, &s.IPHash, &s.Locale, &s.CreatedAt, &s.LastSeenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &s, nil
}

// TouchSession updates the last-seen time of a session
func (r *Repository) TouchSession(id string) error {
	stmt, err := r.db.GetPreparedStatement("touch_session")
	if err != nil {
		return err
	}

	result, err := stmt.Exec(time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// SaveAssessment stores an assessment under its session
func (r *Repository) SaveAssessment(rec *AssessmentRecord) error {
	stmt, err := r.db.GetPreparedStatement("insert_assessment")
	if err != nil {
		return err
	}

	vector, err := json.Marshal(rec.Vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}

	_, err = stmt.Exec(rec.ID, rec.SessionID, rec.Source, rec.Label, rec.Margin,
		string(vector), rec.AdviceCount, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}
	return nil
}

// ListAssessments returns the most recent assessments of a session, newest first
func (r *Repository) ListAssessments(sessionID string, limit int) ([]*AssessmentRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	stmt, err := r.db.GetPreparedStatement("list_assessments")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	records := []*AssessmentRecord{}
	for rows.Next() {
		var rec AssessmentRecord
		var vector string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Source, &rec.Label, &rec.Margin,
			&vector, &rec.AdviceCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		if err := json.Unmarshal([]byte(vector), &rec.Vector); err != nil {
			return nil, fmt.Errorf("failed to decode vector of assessment %s: %w", rec.ID, err)
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// CountAssessments returns the number of stored assessments
func (r *Repository) CountAssessments() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM assessments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}

// SaveContactMessage stores a composed contact message
func (r *Repository) SaveContactMessage(m *ContactMessage) error {
	stmt, err := r.db.GetPreparedStatement("insert_contact")
	if err != nil {
		return err
	}

	sessionID := sql.NullString{String: m.SessionID, Valid: m.SessionID != ""}
	if _, err := stmt.Exec(m.ID, sessionID, m.Email, m.Subject, m.Body, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	return nil
}
