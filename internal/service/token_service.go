package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenIssuer      = "vidtube-api"
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	blacklistPrefix  = "blacklist:"
)

// Claims are carried by both access and refresh tokens.
type Claims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService issues, verifies and revokes JWT access and refresh tokens.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	redis         func() *redis.Client
	now           func() time.Time
}

// NewTokenService builds a TokenService. redisClient may return nil, in which case
// revocation is not enforced.
func NewTokenService(cfg *config.Config, redisClient func() *redis.Client) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenExpiry,
		refreshTTL:    cfg.RefreshTokenExpiry,
		redis:         redisClient,
		now:           time.Now,
	}
}

// AccessTTL is how long issued access tokens stay valid.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL is how long issued refresh tokens stay valid.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssuePair signs a new access and refresh token for user.
func (s *TokenService) IssuePair(user *models.User) (access, refresh string, err error) {
	now := s.now()

	access, err = s.sign(Claims{
		Username:         user.Username,
		Email:            user.Email,
		FullName:         user.FullName,
		Type:             tokenTypeAccess,
		RegisteredClaims: s.registered(user.ID, now, s.accessTTL),
	}, s.accessSecret)
	if err != nil {
		return "", "", err
	}

	refresh, err = s.sign(Claims{
		Type:             tokenTypeRefresh,
		RegisteredClaims: s.registered(user.ID, now, s.refreshTTL),
	}, s.refreshSecret)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *TokenService) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

func (s *TokenService) sign(claims Claims, secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", models.NewInternalError(errors.New("token secret not configured"))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return token, nil
}

func (s *TokenService) parse(raw string, secret []byte, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.Type != wantType || claims.Subject == "" {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}

// VerifyAccess validates an access token and returns its user id. It satisfies
// middleware.TokenVerifier.
func (s *TokenService) VerifyAccess(ctx context.Context, raw string) (string, error) {
	claims, err := s.parse(raw, s.accessSecret, tokenTypeAccess)
	if err != nil {
		return "", models.NewUnauthorizedError("Invalid access token")
	}
	if s.isRevoked(ctx, claims.ID) {
		return "", models.NewUnauthorizedError("Access token has been revoked")
	}
	return claims.Subject, nil
}

// VerifyRefresh validates a refresh token and returns its user id.
func (s *TokenService) VerifyRefresh(raw string) (string, error) {
	claims, err := s.parse(raw, s.refreshSecret, tokenTypeRefresh)
	if err != nil {
		return "", models.NewUnauthorizedError("Invalid refresh token")
	}
	return claims.Subject, nil
}

// Revoke blacklists the access token's jti until the token would have expired.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	client := s.client()
	if client == nil || raw == "" {
		return nil
	}
	claims, err := s.parse(raw, s.accessSecret, tokenTypeAccess)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := client.Set(ctx, blacklistPrefix+claims.ID, "1", ttl).Err(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *TokenService) isRevoked(ctx context.Context, jti string) bool {
	client := s.client()
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token blacklist lookup failed", "error", err)
		return false
	}
	return n > 0
}

func (s *TokenService) client() *redis.Client {
	if s.redis == nil {
		return nil
	}
	return s.redis()
}
