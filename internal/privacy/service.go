package privacy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ZanzyTHEbar/glucoscreen/internal/database"
)

// DeletionResult counts rows removed by a deletion or cleanup
type DeletionResult struct {
	Assessments     int64 `json:"assessments"`
	ContactMessages int64 `json:"contact_messages"`
	Sessions        int64 `json:"sessions"`
}

// PrivacyService enforces retention and on-request deletion of session data
type PrivacyService struct {
	db            *database.DB
	retentionDays int
}

// NewService creates a new privacy service
func NewService(db *database.DB, retentionDays int) *PrivacyService {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &PrivacyService{db: db, retentionDays: retentionDays}
}

// DeleteSessionData removes every record tied to a session, including the session itself
func (ps *PrivacyService) DeleteSessionData(sessionID string) (*DeletionResult, error) {
	slog.Info("Deleting session data", "session_id", shortID(sessionID))

	tx, err := ps.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin deletion: %w", err)
	}
	defer tx.Rollback()

	result := &DeletionResult{}

	res, err := tx.Exec("DELETE FROM assessments WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete assessments: %w", err)
	}
	result.Assessments, _ = res.RowsAffected()

	res, err = tx.Exec("DELETE FROM contact_messages WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete contact messages: %w", err)
	}
	result.ContactMessages, _ = res.RowsAffected()

	res, err = tx.Exec("DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete session: %w", err)
	}
	result.Sessions, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit deletion: %w", err)
	}

	slog.Info("Session data deleted",
		"session_id", shortID(sessionID),
		"assessments_deleted", result.Assessments,
		"contact_messages_deleted", result.ContactMessages,
	)

	return result, nil
}

// GetDataRetentionInfo describes what is stored and for how long
func (ps *PrivacyService) GetDataRetentionInfo() map[string]interface{} {
	return map[string]interface{}{
		"assessment_retention_days": ps.retentionDays,
		"session_retention_days":    ps.retentionDays,
		"contact_retention_days":    ps.retentionDays,
		"ip_storage":                "SHA-256 hash only",
		"advice_storage":            "not stored; recomputed from the vector",
		"deletion":                  "DELETE /api/assessments removes all session data immediately",
	}
}

// ScheduleDataCleanup deletes data older than the retention period
func (ps *PrivacyService) ScheduleDataCleanup(retentionDays int) (*DeletionResult, error) {
	if retentionDays <= 0 {
		retentionDays = ps.retentionDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	result := &DeletionResult{}

	res, err := ps.db.Exec("DELETE FROM assessments WHERE created_at < ?", cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to delete old assessments: %w", err)
	}
	result.Assessments, _ = res.RowsAffected()

	res, err = ps.db.Exec("DELETE FROM contact_messages WHERE created_at < ?", cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to delete old contact messages: %w", err)
	}
	result.ContactMessages, _ = res.RowsAffected()

	// remaining assessments of stale sessions go with them via cascade
	res, err = ps.db.Exec("DELETE FROM sessions WHERE last_seen_at < ?", cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to delete stale sessions: %w", err)
	}
	result.Sessions, _ = res.RowsAffected()

	slog.Info("Data cleanup completed",
		"cutoff_date", cutoff,
		"assessments_deleted", result.Assessments,
		"contact_messages_deleted", result.ContactMessages,
		"sessions_deleted", result.Sessions,
	)
	return result, nil
}

// RunCleanup runs ScheduleDataCleanup every interval until ctx is done
func (ps *PrivacyService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := ps.ScheduleDataCleanup(ps.retentionDays); err != nil {
				slog.Error("Scheduled data cleanup failed", "error", err)
			}
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
