package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionService issues and validates anonymous session tokens
type SessionService struct {
	repo      *Repository
	jwtSecret []byte
	ttl       time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(repo *Repository, jwtSecret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
	}
}

// StartSession stores a new session and returns it with a signed token
func (s *SessionService) StartSession(ipAddress, locale string) (*Session, string, error) {
	session := NewSession(ipAddress, locale)
	if err := s.repo.CreateSession(session); err != nil {
		return nil, "", err
	}

	token, err := s.GenerateSessionToken(session.ID)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

// GenerateSessionToken generates a JWT for the session
func (s *SessionService) GenerateSessionToken(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"exp":        now.Add(s.ttl).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateSessionToken verifies the token and that its session still exists
func (s *SessionService) ValidateSessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", errors.New("session_id not found in token")
	}

	if err := s.repo.TouchSession(sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Repository exposes the underlying repository
func (s *SessionService) Repository() *Repository {
	return s.repo
}
