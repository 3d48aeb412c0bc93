package privacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/glucoscreen/internal/database"
)

func setup(t *testing.T) (*database.DB, *database.Repository) {
	t.Helper()

	db, err := database.NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, database.NewRepository(db)
}

func seedSession(t *testing.T, repo *database.Repository, created time.Time, assessments int) *database.Session {
	t.Helper()

	s := database.NewSession("192.0.2.10", "en")
	s.CreatedAt = created
	s.LastSeenAt = created
	require.NoError(t, repo.CreateSession(s))

	for i := 0; i < assessments; i++ {
		require.NoError(t, repo.SaveAssessment(&database.AssessmentRecord{
			ID:        s.ID + "-" + string(rune('a'+i)),
			SessionID: s.ID,
			Source:    "manual",
			CreatedAt: created,
		}))
	}
	return s
}

func TestDeleteSessionData(t *testing.T) {
	db, repo := setup(t)
	svc := NewService(db, 30)

	s := seedSession(t, repo, time.Now().UTC(), 2)
	other := seedSession(t, repo, time.Now().UTC(), 1)

	msg := database.NewContactMessage(s.ID, "a@example.com", "Hi", "Body")
	require.NoError(t, repo.SaveContactMessage(msg))

	result, err := svc.DeleteSessionData(s.ID)
	require.NoError(t, err)
	assert.Equal(t, &DeletionResult{Assessments: 2, ContactMessages: 1, Sessions: 1}, result)

	_, err = repo.GetSession(s.ID)
	assert.ErrorIs(t, err, database.ErrSessionNotFound)

	remaining, err := repo.ListAssessments(other.ID, 0)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestScheduleDataCleanup(t *testing.T) {
	db, repo := setup(t)
	svc := NewService(db, 30)

	old := seedSession(t, repo, time.Now().UTC().AddDate(0, 0, -45), 3)
	fresh := seedSession(t, repo, time.Now().UTC(), 2)

	result, err := svc.ScheduleDataCleanup(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Assessments)
	assert.Equal(t, int64(1), result.Sessions)

	_, err = repo.GetSession(old.ID)
	assert.ErrorIs(t, err, database.ErrSessionNotFound)

	kept, err := repo.ListAssessments(fresh.ID, 0)
	require.NoError(t, err)
	assert.Len(t, kept, 2)
}

func TestGetDataRetentionInfo(t *testing.T) {
	db, _ := setup(t)

	info := NewService(db, 0).GetDataRetentionInfo()
	assert.Equal(t, 30, info["assessment_retention_days"])
	assert.Equal(t, "SHA-256 hash only", info["ip_storage"])
}
