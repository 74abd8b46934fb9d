package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/models"
	"gorm.io/gorm"
)

// StartCleanup deletes system_logs older than retention once a day until
// done is closed. A non-positive retention keeps logs forever.
func StartCleanup(db *gorm.DB, retention time.Duration, done chan struct{}) {
	if retention <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := Cleanup(db, time.Now().Add(-retention))
				if err != nil {
					slog.Error("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}

// Cleanup removes system_logs written before cutoff.
func Cleanup(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
