package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/owaspnotes/notesapp/internal/entities"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))

	return NewRepository(db)
}

func TestLogEvent(t *testing.T) {
	repo := setupRepo(t)

	err := repo.LogEvent(&entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventLogin,
		Status:    entities.AuditStatusSuccess,
		IPAddress: "1.2.3.4",
	})
	require.NoError(t, err)

	events, total, err := repo.GetEvents(1, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, events, 1)
	assert.NotZero(t, events[0].CreatedAt, "timestamp is filled in when missing")
}

func TestGetEventsFiltersAndPaginates(t *testing.T) {
	repo := setupRepo(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.LogEvent(&entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventLogin,
			Status:    entities.AuditStatusFailed,
		}))
	}
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		UserID:    2,
		EventType: entities.AuditEventRegister,
		Status:    entities.AuditStatusSuccess,
	}))

	events, total, err := repo.GetEvents(1, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, events, 2)

	all, total, err := repo.GetEvents(0, 50, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	assert.Len(t, all, 6)
}

func TestPurgeOlderThan(t *testing.T) {
	repo := setupRepo(t)

	old := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventLogin,
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().AddDate(0, 0, -100),
	}
	recent := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventLogin,
		Status:    entities.AuditStatusSuccess,
	}
	require.NoError(t, repo.LogEvent(old))
	require.NoError(t, repo.LogEvent(recent))

	removed, err := repo.PurgeOlderThan(time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, total, err := repo.GetEvents(0, 50, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
