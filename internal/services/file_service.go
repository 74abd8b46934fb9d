package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/dto"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/models"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/repository"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNoFileUploaded = errors.New("no file uploaded")
	ErrFileTooLarge   = errors.New("file exceeds the maximum upload size")
	ErrFileNotFound   = errors.New("file not found")
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	sweepBatchSize = 500
)

// FileService keeps file records and their blobs in step. A failure between
// the blob write and the row write may leave an orphaned blob, never a row
// without a blob; SweepOrphans collects the former.
type FileService struct {
	files   *repository.FileRepository
	store   storage.Storage
	maxSize int64
	now     func() time.Time
}

func NewFileService(db *gorm.DB, store storage.Storage, maxSize int64) *FileService {
	return &FileService{
		files:   repository.NewFileRepository(db),
		store:   store,
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (s *FileService) Upload(ctx context.Context, userID string, header *multipart.FileHeader) (*models.File, error) {
	if header == nil {
		return nil, ErrNoFileUploaded
	}

	key, meta, err := s.saveBlob(ctx, header)
	if err != nil {
		return nil, err
	}

	now := s.now()
	file := &models.File{
		ID:        uuid.NewString(),
		Name:      meta.name,
		Extension: meta.extension,
		MimeType:  meta.mimeType,
		Size:      meta.size,
		Path:      key,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.files.Create(ctx, file); err != nil {
		s.releaseBlob(ctx, key)
		return nil, err
	}

	slog.Info("file uploaded", "user_id", userID, "file_id", file.ID, "size", file.Size)
	return file, nil
}

// List returns one page of the user's files. page and pageSize are clamped
// to sane values.
func (s *FileService) List(ctx context.Context, userID string, page, pageSize int) (*dto.FileListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	files, total, err := s.files.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &dto.FileListResponse{
		Files:       files,
		Total:       total,
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func (s *FileService) Get(ctx context.Context, userID, id string) (*models.File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrFileNotFound
	}

	file, err := s.files.ByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return file, nil
}

// Open returns the file record together with a reader over its bytes. The
// caller closes the reader.
func (s *FileService) Open(ctx context.Context, userID, id string) (*models.File, io.ReadCloser, error) {
	file, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Open(ctx, file.Path)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			slog.Error("file record without blob", "file_id", file.ID, "path", file.Path)
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, rc, nil
}

// Update replaces the content of an existing file. The new blob is written
// before the row changes and the old blob is released afterwards.
func (s *FileService) Update(ctx context.Context, userID, id string, header *multipart.FileHeader) (*models.File, error) {
	if header == nil {
		return nil, ErrNoFileUploaded
	}

	file, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	key, meta, err := s.saveBlob(ctx, header)
	if err != nil {
		return nil, err
	}

	oldKey := file.Path
	file.Name = meta.name
	file.Extension = meta.extension
	file.MimeType = meta.mimeType
	file.Size = meta.size
	file.Path = key
	file.UpdatedAt = s.now()

	if err := s.files.Replace(ctx, file); err != nil {
		s.releaseBlob(ctx, key)
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	s.releaseBlob(ctx, oldKey)
	return file, nil
}

// Delete removes the row first so a failed blob delete only leaves an orphan.
func (s *FileService) Delete(ctx context.Context, userID, id string) error {
	file, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.files.Delete(ctx, file.ID, userID); err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return ErrFileNotFound
		}
		return err
	}

	s.releaseBlob(ctx, file.Path)
	return nil
}

// SweepOrphans deletes blobs older than grace that no file record points at
// and returns how many were removed.
func (s *FileService) SweepOrphans(ctx context.Context, grace time.Duration) (int, error) {
	blobs, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list blobs: %w", err)
	}

	cutoff := s.now().Add(-grace)
	candidates := make([]string, 0, len(blobs))
	for _, b := range blobs {
		if b.Modified.After(cutoff) {
			continue
		}
		candidates = append(candidates, b.Key)
	}

	removed := 0
	for start := 0; start < len(candidates); start += sweepBatchSize {
		end := min(start+sweepBatchSize, len(candidates))
		batch := candidates[start:end]

		refs, err := s.files.ReferencedPaths(ctx, batch)
		if err != nil {
			return removed, err
		}
		for _, key := range batch {
			if refs[key] {
				continue
			}
			if err := s.store.Delete(ctx, key); err != nil {
				slog.Warn("orphan blob delete failed", "path", key, "error", err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// StartOrphanSweep runs SweepOrphans every interval until done is closed.
func (s *FileService) StartOrphanSweep(interval, grace time.Duration, done chan struct{}) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed, err := s.SweepOrphans(context.Background(), grace)
				if err != nil {
					slog.Error("orphan sweep failed", "error", err)
				} else if removed > 0 {
					slog.Info("orphan sweep completed", "deleted", removed)
				}
			case <-done:
				return
			}
		}
	}()
}

type blobMeta struct {
	name      string
	extension string
	mimeType  string
	size      int64
}

func (s *FileService) saveBlob(ctx context.Context, header *multipart.FileHeader) (string, blobMeta, error) {
	if s.maxSize > 0 && header.Size > s.maxSize {
		return "", blobMeta{}, ErrFileTooLarge
	}

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}
	ext := filepath.Ext(name)
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(ext)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	src, err := header.Open()
	if err != nil {
		return "", blobMeta{}, fmt.Errorf("failed to read upload: %w", err)
	}
	defer src.Close()

	key := uuid.NewString() + keySuffix(ext)
	size, err := s.store.Save(ctx, key, src, mimeType)
	if err != nil {
		s.releaseBlob(ctx, key)
		return "", blobMeta{}, fmt.Errorf("failed to store file: %w", err)
	}

	return key, blobMeta{name: name, extension: ext, mimeType: mimeType, size: size}, nil
}

// releaseBlob deletes key on a best-effort basis. Leftovers are picked up by
// the orphan sweep.
func (s *FileService) releaseBlob(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.Warn("blob delete failed", "path", key, "error", err)
	}
}

// keySuffix keeps the extension on blob keys only when it is plain
// alphanumeric.
func keySuffix(ext string) string {
	if len(ext) < 2 || len(ext) > 16 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
