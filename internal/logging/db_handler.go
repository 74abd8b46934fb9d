package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	dbBatchSize     = 50
	dbFlushInterval = 5 * time.Second
)

// DBHandler is an slog.Handler that batches ERROR+ records into system_logs.
type DBHandler struct {
	sink   *dbSink
	attrs  []slog.Attr
	prefix string
}

type dbSink struct {
	db       *gorm.DB
	mu       sync.Mutex
	buffer   []models.SystemLog
	ticker   *time.Ticker
	flushReq chan struct{}
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func NewDBHandler(db *gorm.DB) *DBHandler {
	sink := &dbSink{
		db:       db,
		buffer:   make([]models.SystemLog, 0, dbBatchSize),
		ticker:   time.NewTicker(dbFlushInterval),
		flushReq: make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go sink.flushLoop()
	return &DBHandler{sink: sink}
}

func (s *dbSink) flushLoop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.flushReq:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *dbSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, dbBatchSize)
	s.mu.Unlock()

	// Warn stays below this sink's level, so a failed flush cannot feed itself.
	if err := s.db.CreateInBatches(batch, dbBatchSize).Error; err != nil {
		slog.Warn("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

// Stop flushes what is buffered and waits for the flusher to exit. Records
// handled afterwards are dropped.
func (h *DBHandler) Stop() {
	h.sink.stopOnce.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
	})
	<-h.sink.stopped
}

func (h *DBHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *DBHandler) Handle(_ context.Context, record slog.Record) error {
	select {
	case <-h.sink.done:
		return nil
	default:
	}

	entry := models.SystemLog{
		ID:        uuid.NewString(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	extra := make(map[string]any)
	for _, a := range h.attrs {
		apply(&entry, extra, "", a)
	}
	record.Attrs(func(a slog.Attr) bool {
		apply(&entry, extra, h.prefix, a)
		return true
	})

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.sink.mu.Lock()
	h.sink.buffer = append(h.sink.buffer, entry)
	needFlush := len(h.sink.buffer) >= dbBatchSize
	h.sink.mu.Unlock()

	if needFlush {
		// Only flushLoop writes, so nothing reaches the database after Stop.
		select {
		case h.sink.flushReq <- struct{}{}:
		default:
		}
	}
	return nil
}

// apply routes well-known top-level keys into columns and the rest into extra.
func apply(entry *models.SystemLog, extra map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if prefix == "" {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
			return
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
			return
		case "method":
			entry.Method = a.Value.String()
			return
		case "path":
			entry.Path = a.Value.String()
			return
		case "error":
			entry.Error = a.Value.String()
			return
		}
	}

	key := prefix + a.Key
	switch v := a.Value.Any().(type) {
	case error:
		extra[key] = v.Error()
	case []slog.Attr:
		for _, ga := range v {
			extra[key+"."+ga.Key] = ga.Value.String()
		}
	default:
		extra[key] = v
	}
}

func (h *DBHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *DBHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}
