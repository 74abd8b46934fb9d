package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/dto"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/models"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/repository"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService struct {
	users      *repository.UserRepository
	tokens     *TokenService
	bcryptCost int
}

func NewAuthService(db *gorm.DB, tokens *TokenService, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      repository.NewUserRepository(db),
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

func (s *AuthService) Signup(ctx context.Context, req *dto.CredentialsRequest) (*TokenPair, error) {
	if _, err := validation.ValidateIdentifier(req.ID); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{ID: req.ID, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return s.tokens.Issue(ctx, user.ID)
}

// Signin answers ErrInvalidCredentials for both unknown ids and wrong
// passwords.
func (s *AuthService) Signin(ctx context.Context, req *dto.CredentialsRequest) (*TokenPair, error) {
	if req.ID == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.ByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.tokens.Issue(ctx, user.ID)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.tokens.Rotate(ctx, refreshToken)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.Invalidate(ctx, refreshToken)
}
