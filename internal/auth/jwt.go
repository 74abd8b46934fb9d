// Package auth signs and parses the HS256 tokens handed out to clients.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims carries the user identifier under "id" next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// Signer mints and verifies tokens for one secret. A zero TTL produces
// tokens without an expiry.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the signer that reads time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	c := *s
	c.now = now
	return &c
}

func (s *Signer) Key() []byte {
	return s.secret
}

func (s *Signer) Sign(userID string) (string, error) {
	issued := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(issued),
		},
		UserID: userID,
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issued.Add(s.ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies the token and returns its user id. Expired tokens yield
// ErrTokenExpired, every other failure ErrTokenInvalid.
func (s *Signer) Parse(tokenString string) (string, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.ttl > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return "", Classify(err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UserID, nil
}

// Classify maps a jwt parse error onto ErrTokenExpired or ErrTokenInvalid.
func Classify(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}
