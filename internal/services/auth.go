package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillswap-backend/internal/models"
	"skillswap-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpDays        = 30
	minPasswordLength = 8
)

// AuthService handles registration, login and token validation
type AuthService struct {
	memberRepo *repository.MemberRepository
	jwtSecret  string
}

// NewAuthService creates a new auth service
func NewAuthService(memberRepo *repository.MemberRepository, jwtSecret string) *AuthService {
	return &AuthService{
		memberRepo: memberRepo,
		jwtSecret:  jwtSecret,
	}
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	Member *models.Member `json:"member"`
	Token  string         `json:"token"`
}

// Register creates a member account. The display name defaults to the
// email local-part; a duplicate email is a conflict, not a generic
// failure, so a retried registration is safe to surface.
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	member := &models.Member{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         email[:at],
		IsPublic:     true,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	token, err := s.GenerateJWT(member.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Member: member, Token: token}, nil
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	member, err := s.memberRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", ErrNotAuthenticated)
		}
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", ErrNotAuthenticated)
	}

	token, err := s.GenerateJWT(member.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Member: member, Token: token}, nil
}

// GenerateJWT generates a signed token for a member
func (s *AuthService) GenerateJWT(memberID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": memberID,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWT validates a token and returns the member ID
func (s *AuthService) ValidateJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if !token.Valid {
		return "", fmt.Errorf("%w: invalid token", ErrNotAuthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid token claims", ErrNotAuthenticated)
	}

	memberID, ok := claims["user_id"].(string)
	if !ok || memberID == "" {
		return "", fmt.Errorf("%w: user_id not found in token", ErrNotAuthenticated)
	}
	return memberID, nil
}
