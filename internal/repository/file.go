package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/identity"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/models"
	"gorm.io/gorm"
)

var ErrFileNotFound = errors.New("file not found")

// FileRepository stores file metadata. Every lookup is scoped to an owner.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}
	return nil
}

func (r *FileRepository) ByIDForUser(ctx context.Context, id, userID string) (*models.File, error) {
	var file models.File
	err := r.db.WithContext(ctx).Scopes(identity.ForOwner(userID)).Where("id = ?", id).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return &file, nil
}

// ListByUser returns one page of a user's files, newest first, plus the total count.
func (r *FileRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.File, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.File{}).Scopes(identity.ForOwner(userID)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	files := make([]models.File, 0, limit)
	err := r.db.WithContext(ctx).Scopes(identity.ForOwner(userID)).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&files).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}
	return files, total, nil
}

// Replace overwrites the blob-related columns of an owned file.
func (r *FileRepository) Replace(ctx context.Context, file *models.File) error {
	result := r.db.WithContext(ctx).Model(&models.File{}).
		Scopes(identity.ForOwner(file.UserID)).
		Where("id = ?", file.ID).
		Updates(map[string]interface{}{
			"name":       file.Name,
			"extension":  file.Extension,
			"mime_type":  file.MimeType,
			"size":       file.Size,
			"path":       file.Path,
			"updated_at": file.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update file record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFileNotFound
	}
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).Scopes(identity.ForOwner(userID)).Where("id = ?", id).Delete(&models.File{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete file record: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFileNotFound
	}
	return nil
}

// ReferencedPaths returns the subset of paths that some file record points at.
func (r *FileRepository) ReferencedPaths(ctx context.Context, paths []string) (map[string]bool, error) {
	refs := make(map[string]bool, len(paths))
	if len(paths) == 0 {
		return refs, nil
	}

	var found []string
	if err := r.db.WithContext(ctx).Model(&models.File{}).Where("path IN ?", paths).Pluck("path", &found).Error; err != nil {
		return nil, fmt.Errorf("failed to check file paths: %w", err)
	}
	for _, p := range found {
		refs[p] = true
	}
	return refs, nil
}
