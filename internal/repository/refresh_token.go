package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/models"
	"gorm.io/gorm"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository is the refresh token ledger. Tokens are stored as
// SHA-256 digests; callers always pass the raw token.
type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create appends a valid ledger entry for token.
func (r *RefreshTokenRepository) Create(ctx context.Context, userID, token string) (*models.RefreshToken, error) {
	record := models.RefreshToken{
		UserID:    userID,
		TokenHash: HashToken(token),
		IsValid:   true,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return &record, nil
}

// FindValid returns the valid ledger entry for token.
func (r *RefreshTokenRepository) FindValid(ctx context.Context, token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND is_valid = ?", HashToken(token), true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	return &record, nil
}

// IsValidForUser reports whether token is a valid ledger entry owned by userID.
func (r *RefreshTokenRepository) IsValidForUser(ctx context.Context, userID, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND token_hash = ? AND is_valid = ?", userID, HashToken(token), true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}
	return count > 0, nil
}

// Consume flips a valid entry to invalid with a single conditional update.
// It returns false when no valid entry matched, which is how a losing
// concurrent rotation observes that the token was already spent.
func (r *RefreshTokenRepository) Consume(ctx context.Context, token string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ? AND is_valid = ?", HashToken(token), true).
		Update("is_valid", false)
	if result.Error != nil {
		return false, fmt.Errorf("failed to consume refresh token: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Invalidate marks token invalid. Unknown or already invalid tokens are not an error.
func (r *RefreshTokenRepository) Invalidate(ctx context.Context, token string) error {
	err := r.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", HashToken(token)).
		Update("is_valid", false).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate refresh token: %w", err)
	}
	return nil
}

func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
