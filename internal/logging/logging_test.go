package logging

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBHandler_PersistsErrorsOnly(t *testing.T) {
	db := dbtest.Open(t)
	h := NewDBHandler(db)
	logger := slog.New(h)

	logger.Info("just chatter")
	logger.Warn("almost")
	logger.With("request_id", "req-1").Error("upload failed",
		"user_id", "a@b.com",
		"method", "POST",
		"path", "/file/upload",
		"error", errors.New("disk full"),
		"size", 500,
	)
	h.Stop()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "upload failed", entry.Message)
	assert.Equal(t, "req-1", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "a@b.com", *entry.UserID)
	assert.Equal(t, "POST", entry.Method)
	assert.Equal(t, "/file/upload", entry.Path)
	assert.Equal(t, "disk full", entry.Error)

	extra := map[string]any{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.EqualValues(t, 500, extra["size"])
}

func TestDBHandler_Groups(t *testing.T) {
	db := dbtest.Open(t)
	h := NewDBHandler(db)

	slog.New(h).WithGroup("s3").With("bucket", "vault").Error("put failed", "key", "k1")
	h.Stop()
	h.Stop()

	var entry models.SystemLog
	require.NoError(t, db.First(&entry).Error)

	extra := map[string]any{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, "vault", extra["s3.bucket"])
	assert.Equal(t, "k1", extra["s3.key"])
}

func TestDBHandler_FullBatchesAndStop(t *testing.T) {
	db := dbtest.Open(t)
	h := NewDBHandler(db)
	logger := slog.New(h)

	total := dbBatchSize*2 + 7
	for i := 0; i < total; i++ {
		logger.Error("write failed", "attempt", i)
	}
	h.Stop()

	var count int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&count).Error)
	assert.Equal(t, int64(total), count)

	for i := 0; i < dbBatchSize; i++ {
		logger.Error("after shutdown")
	}
	h.Stop()

	require.NoError(t, db.Model(&models.SystemLog{}).Count(&count).Error)
	assert.Equal(t, int64(total), count)
	h.sink.mu.Lock()
	assert.Empty(t, h.sink.buffer)
	h.sink.mu.Unlock()
}

func TestCleanup(t *testing.T) {
	db := dbtest.Open(t)
	now := time.Now()

	require.NoError(t, db.Create(&[]models.SystemLog{
		{ID: "old", Timestamp: now.Add(-40 * 24 * time.Hour), Level: "ERROR", Message: "old"},
		{ID: "new", Timestamp: now.Add(-time.Hour), Level: "ERROR", Message: "new"},
	}).Error)

	deleted, err := Cleanup(db, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].ID)
}
