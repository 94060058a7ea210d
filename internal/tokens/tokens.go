package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jmsantos/tindahan/internal/apperr"
)

// DefaultTTL is the session token validity window.
const DefaultTTL = 7 * 24 * time.Hour

// Identity is what a verified token proves: who and in which role.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Signer is the token signing capability. Implementations are swappable;
// the default signs HS256 JWTs.
type Signer interface {
	Issue(userID uuid.UUID, role string) (string, error)
	Verify(raw string) (*Claims, error)
}

type HS256Signer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewSigner(secret []byte) *HS256Signer {
	return &HS256Signer{Secret: secret, TTL: DefaultTTL, Now: time.Now}
}

func (s *HS256Signer) Issue(userID uuid.UUID, role string) (string, error) {
	now := s.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl())),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}

func (s *HS256Signer) Verify(raw string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token is past its validity window: %w", apperr.ErrExpired)
		}
		return nil, fmt.Errorf("invalid token: %w", apperr.ErrAuth)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", apperr.ErrAuth)
	}
	return &claims, nil
}

func (s *HS256Signer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *HS256Signer) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTTL
}
