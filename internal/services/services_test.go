package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/auth"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
)

// testClock is a settable time source shared by the signers under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTokenService(db *gorm.DB, clock *testClock) *TokenService {
	access := auth.NewSigner(testAccessSecret, 10*time.Minute).WithClock(clock.Now)
	refresh := auth.NewSigner(testRefreshSecret, 30*24*time.Hour).WithClock(clock.Now)
	return NewTokenService(db, access, refresh)
}

func newFileService(t *testing.T, db *gorm.DB, maxSize int64) (*FileService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return NewFileService(db, store, maxSize), store
}

func testDB(t *testing.T) *gorm.DB {
	return dbtest.Open(t)
}

// fileHeader builds a multipart file header the way Fiber hands it to handlers.
func fileHeader(t *testing.T, name string, content []byte, contentType string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File["file"], 1)
	return form.File["file"][0]
}
