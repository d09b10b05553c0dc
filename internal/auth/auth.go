package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aurasflow/backend/internal/models"
)

// Common errors
var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserExists             = errors.New("username or email already registered")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenFamilyCompromised = errors.New("token family compromised - all sessions revoked")
)

// TokenType represents the type of JWT token
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims represents JWT claims for access tokens
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	TokenType TokenType `json:"token_type"`
	SessionID uuid.UUID `json:"session_id"`
	jwt.RegisteredClaims
}

// RefreshTokenClaims represents JWT claims for refresh tokens
type RefreshTokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	TokenType TokenType `json:"token_type"`
	FamilyID  uuid.UUID `json:"family_id"` // Token rotation detection
	jwt.RegisteredClaims
}

// RefreshToken represents a stored refresh token
type RefreshToken struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;not null"`
	TokenHash  string    `gorm:"size:64;uniqueIndex;not null"`
	FamilyID   uuid.UUID `gorm:"type:uuid;not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	RevokedAt  *time.Time
	ReplacedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
	IPAddress  string `gorm:"size:50"`
	UserAgent  string `gorm:"size:500"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// Service handles authentication
type Service struct {
	db                   *gorm.DB
	jwtSecret            []byte
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
}

// NewService creates a new auth service
func NewService(db *gorm.DB, jwtSecret string) *Service {
	return &Service{
		db:                   db,
		jwtSecret:            []byte(jwtSecret),
		accessTokenDuration:  15 * time.Minute,
		refreshTokenDuration: 7 * 24 * time.Hour,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	User   *models.User `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

// Register creates a new user account with the initial credit allotment.
func (s *Service) Register(ctx context.Context, req *RegisterRequest, ipAddress, userAgent string) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.Where("username = ? OR email = ?", req.Username, req.Email).
		First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Credits:      models.InitialCredits,
		IsActive:     true,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}

	tokens, err := s.generateTokenPair(ctx, user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &AuthResponse{
		User:   user,
		Tokens: *tokens,
	}, nil
}

// Login authenticates a user by username and password
func (s *Service) Login(ctx context.Context, req *LoginRequest, ipAddress, userAgent string) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login_at", now)

	tokens, err := s.generateTokenPair(ctx, &user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &AuthResponse{
		User:   &user,
		Tokens: *tokens,
	}, nil
}

// Refresh rotates a refresh token and returns a new token pair
func (s *Service) Refresh(ctx context.Context, refreshTokenString, ipAddress, userAgent string) (*TokenPair, error) {
	claims := &RefreshTokenClaims{}
	token, err := jwt.ParseWithClaims(refreshTokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	tokenHash := hashToken(refreshTokenString)

	var storedToken RefreshToken
	if err := s.db.Where("token_hash = ?", tokenHash).First(&storedToken).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if storedToken.RevokedAt != nil {
		// Token reuse detected, revoke the entire family
		s.revokeTokenFamily(ctx, storedToken.FamilyID)
		return nil, ErrTokenFamilyCompromised
	}

	if time.Now().After(storedToken.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	storedToken.RevokedAt = &now

	newTokens, newStoredToken, err := s.generateTokenPairWithFamily(ctx, &user, storedToken.FamilyID, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	storedToken.ReplacedBy = &newStoredToken.ID
	s.db.Save(&storedToken)

	return newTokens, nil
}

// ValidateAccessToken validates an access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Logout revokes all tokens for a user
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	return s.db.Model(&RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

// generateTokenPair creates a new access/refresh token pair
func (s *Service) generateTokenPair(ctx context.Context, user *models.User, ipAddress, userAgent string) (*TokenPair, error) {
	familyID := uuid.New() // New token family for new login
	tokens, _, err := s.generateTokenPairWithFamily(ctx, user, familyID, ipAddress, userAgent)
	return tokens, err
}

// generateTokenPairWithFamily creates tokens with a specific family ID
func (s *Service) generateTokenPairWithFamily(ctx context.Context, user *models.User, familyID uuid.UUID, ipAddress, userAgent string) (*TokenPair, *RefreshToken, error) {
	now := time.Now()
	accessExpiry := now.Add(s.accessTokenDuration)
	refreshExpiry := now.Add(s.refreshTokenDuration)
	sessionID := uuid.New()

	accessClaims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		TokenType: TokenTypeAccess,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, nil, err
	}

	refreshClaims := RefreshTokenClaims{
		UserID:    user.ID,
		TokenType: TokenTypeRefresh,
		FamilyID:  familyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        sessionID.String(),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, nil, err
	}

	storedToken := &RefreshToken{
		ID:        sessionID,
		UserID:    user.ID,
		TokenHash: hashToken(refreshTokenString),
		FamilyID:  familyID,
		ExpiresAt: refreshExpiry,
		CreatedAt: now,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := s.db.Create(storedToken).Error; err != nil {
		return nil, nil, err
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresAt:    accessExpiry,
		TokenType:    "Bearer",
	}, storedToken, nil
}

// revokeTokenFamily revokes all tokens in a family
func (s *Service) revokeTokenFamily(ctx context.Context, familyID uuid.UUID) error {
	now := time.Now()
	return s.db.Model(&RefreshToken{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).
		Update("revoked_at", now).Error
}

// CleanupExpiredTokens removes expired tokens
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&RefreshToken{})
	return result.RowsAffected, result.Error
}

// hashToken creates a SHA-256 hash of a token
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
