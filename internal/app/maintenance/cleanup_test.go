package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stackitdev/stackit/internal/database/testutil"
	"github.com/stackitdev/stackit/internal/models"
)

func seedNotification(t *testing.T, db *gorm.DB, userID string, read bool, age time.Duration) {
	t.Helper()

	notification := &models.Notification{
		UserID:  userID,
		Type:    models.NotificationVote,
		Title:   "New Vote",
		Message: "someone voted",
		IsRead:  read,
	}
	require.NoError(t, db.Create(notification).Error)
	require.NoError(t, db.Model(notification).
		UpdateColumn("created_at", time.Now().Add(-age)).Error)
}

func TestCleanupNotificationsRespectsRetention(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	user := &models.User{Username: "recipient", Email: "r@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	seedNotification(t, db, user.ID, true, 120*24*time.Hour)  // old and read: purged
	seedNotification(t, db, user.ID, false, 120*24*time.Hour) // old but unread: kept
	seedNotification(t, db, user.ID, true, 24*time.Hour)      // read but recent: kept

	removed, err := CleanupNotifications(context.Background(), db, time.Now(), 90)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	require.EqualValues(t, 2, remaining)
}

func TestCleanupNotificationsDisabledRetention(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	removed, err := CleanupNotifications(context.Background(), db, time.Now(), 0)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestCleanupOrphanedVotes(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	user := &models.User{Username: "voter", Email: "v@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	question := &models.Question{Title: "Q", Content: "body", AuthorID: user.ID}
	require.NoError(t, db.Create(question).Error)

	live := &models.Vote{VoterID: user.ID, QuestionID: &question.ID, Direction: models.VoteUp}
	require.NoError(t, db.Create(live).Error)

	ghost := "aaaaaaaa-0000-0000-0000-000000000000"
	orphan := &models.Vote{VoterID: user.ID, AnswerID: &ghost, Direction: models.VoteDown}
	require.NoError(t, db.Create(orphan).Error)

	removed, err := CleanupOrphanedVotes(context.Background(), db)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var votes []models.Vote
	require.NoError(t, db.Find(&votes).Error)
	require.Len(t, votes, 1)
	require.Equal(t, live.ID, votes[0].ID)
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	user := &models.User{Username: "recipient", Email: "r@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	seedNotification(t, db, user.ID, true, 120*24*time.Hour)

	cleaner := NewCleaner(db, WithRetentionDays(30))
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	require.Zero(t, remaining)
}

func TestCleanerNilDB(t *testing.T) {
	cleaner := NewCleaner(nil)
	require.NoError(t, cleaner.Start())
	require.NoError(t, cleaner.RunOnce(context.Background()))
	cleaner.Stop()
}
