package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/auth"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrExpiredAccessToken  = errors.New("token expired")
	ErrInvalidAccessToken  = errors.New("invalid token")
	ErrSessionRevoked      = errors.New("token is no longer valid")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService issues access/refresh pairs and keeps the refresh token ledger.
type TokenService struct {
	db      *gorm.DB
	access  *auth.Signer
	refresh *auth.Signer
}

func NewTokenService(db *gorm.DB, access, refresh *auth.Signer) *TokenService {
	return &TokenService{db: db, access: access, refresh: refresh}
}

// AccessSigner exposes the access token signer so the gate can verify with
// the same key and claims.
func (s *TokenService) AccessSigner() *auth.Signer {
	return s.access
}

// Issue mints a fresh pair for userID and records the refresh token as valid.
func (s *TokenService) Issue(ctx context.Context, userID string) (*TokenPair, error) {
	return s.issue(ctx, repository.NewRefreshTokenRepository(s.db), userID)
}

func (s *TokenService) issue(ctx context.Context, ledger *repository.RefreshTokenRepository, userID string) (*TokenPair, error) {
	accessToken, err := s.access.Sign(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err := s.refresh.Sign(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if _, err := ledger.Create(ctx, userID, refreshToken); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Rotate spends presented and returns a new pair. A refresh token rotates at
// most once; concurrent callers racing on the same token see exactly one
// success.
func (s *TokenService) Rotate(ctx context.Context, presented string) (*TokenPair, error) {
	if presented == "" {
		return nil, ErrInvalidRefreshToken
	}

	var pair *TokenPair
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := repository.NewRefreshTokenRepository(tx)

		record, err := ledger.FindValid(ctx, presented)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return ErrInvalidRefreshToken
			}
			return err
		}

		userID, err := s.refresh.Parse(presented)
		if err != nil || userID != record.UserID {
			return ErrInvalidRefreshToken
		}

		consumed, err := ledger.Consume(ctx, presented)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrInvalidRefreshToken
		}

		pair, err = s.issue(ctx, ledger, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Invalidate revokes refreshToken. Unknown tokens are ignored.
func (s *TokenService) Invalidate(ctx context.Context, refreshToken string) error {
	return repository.NewRefreshTokenRepository(s.db).Invalidate(ctx, refreshToken)
}

func (s *TokenService) VerifyAccess(accessToken string) (string, error) {
	userID, err := s.access.Parse(accessToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return "", ErrExpiredAccessToken
		}
		return "", ErrInvalidAccessToken
	}
	return userID, nil
}

// ConfirmSession checks that refreshToken is a live ledger entry of userID.
func (s *TokenService) ConfirmSession(ctx context.Context, userID, refreshToken string) error {
	ok, err := repository.NewRefreshTokenRepository(s.db).IsValidForUser(ctx, userID, refreshToken)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSessionRevoked
	}
	return nil
}
