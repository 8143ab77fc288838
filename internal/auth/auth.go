// Package auth guards the admin surface: content import, deletion and
// cloning. There are no user accounts; a single admin key unlocks a
// short-lived JWT.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidKey = errors.New("invalid admin key")

const tokenLifetime = 12 * time.Hour

type Service struct {
	adminKey     string
	adminKeyHash string
	jwtSecret    []byte
}

func NewService(adminKey, adminKeyHash, jwtSecret string) *Service {
	return &Service{
		adminKey:     adminKey,
		adminKeyHash: adminKeyHash,
		jwtSecret:    []byte(jwtSecret),
	}
}

// Enabled reports whether an admin key is configured at all. With no key the
// admin surface stays open, which is the local-development default.
func (s *Service) Enabled() bool {
	return s.adminKey != "" || s.adminKeyHash != ""
}

// VerifyKey checks a presented admin key. A bcrypt hash takes precedence
// over the plain-text key.
func (s *Service) VerifyKey(key string) error {
	if !s.Enabled() {
		return nil
	}
	if s.adminKeyHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.adminKeyHash), []byte(key)); err != nil {
			return ErrInvalidKey
		}
		return nil
	}
	if key != s.adminKey {
		return ErrInvalidKey
	}
	return nil
}

// IssueToken exchanges a valid admin key for a signed JWT.
func (s *Service) IssueToken(key string) (string, error) {
	if err := s.VerifyKey(key); err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(tokenLifetime).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a JWT issued by IssueToken.
func (s *Service) VerifyToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidKey
	}
	return nil
}

// Authorize accepts either a bearer token from a prior login or the raw
// admin key in the X-Admin-Key header.
func (s *Service) Authorize(authorization, adminKeyHeader string) error {
	if !s.Enabled() {
		return nil
	}
	if strings.HasPrefix(authorization, "Bearer ") {
		return s.VerifyToken(strings.TrimPrefix(authorization, "Bearer "))
	}
	if adminKeyHeader != "" {
		return s.VerifyKey(adminKeyHeader)
	}
	return ErrInvalidKey
}
