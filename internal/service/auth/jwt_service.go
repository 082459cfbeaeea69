package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims represents the custom JWT claims used by the application.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	Type string `json:"type"` // "access" or "refresh"
}

// JWTService handles generation, validation, and revocation of JWT tokens.
type JWTService struct {
	secret          []byte
	issuer          string
	accessDuration  time.Duration
	refreshDuration time.Duration
	cache           ports.Cache
	log             *zap.Logger
	now             func() time.Time
}

// NewJWTService creates a new JWTService instance.
func NewJWTService(secret, issuer string, accessDuration, refreshDuration time.Duration, cache ports.Cache, log *zap.Logger) *JWTService {
	log.Info("JWT service initialized",
		zap.String("issuer", issuer),
		zap.Duration("access_duration", accessDuration),
		zap.Duration("refresh_duration", refreshDuration),
	)

	return &JWTService{
		secret:          []byte(secret),
		issuer:          issuer,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		cache:           cache,
		log:             log,
		now:             time.Now,
	}
}

// GenerateAccessToken creates a signed access token carrying the user's role.
func (s *JWTService) GenerateAccessToken(user *domain.User) (string, error) {
	return s.sign(user, TokenTypeAccess, s.accessDuration)
}

// GenerateRefreshToken creates a signed refresh token. It carries no role so
// a role change takes effect on the next refresh.
func (s *JWTService) GenerateRefreshToken(user *domain.User) (string, error) {
	return s.sign(user, TokenTypeRefresh, s.refreshDuration)
}

// GeneratePair issues both tokens for user.
func (s *JWTService) GeneratePair(user *domain.User) (*ports.TokenPair, error) {
	access, err := s.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *JWTService) sign(user *domain.User, tokenType string, ttl time.Duration) (string, error) {
	jti := uuid.New().String()
	now := s.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
		Type: tokenType,
	}
	if tokenType == TokenTypeAccess {
		claims.Role = string(user.Role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.secret)
	if err != nil {
		s.log.Error("failed to sign token",
			zap.String("user_id", user.ID),
			zap.String("type", tokenType),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	s.log.Debug("token generated",
		zap.String("user_id", user.ID),
		zap.String("type", tokenType),
		zap.String("jti", jti),
	)

	return signedToken, nil
}

// ValidateToken parses tokenString, checks its signature, expiry and type,
// and rejects tokens that were revoked.
func (s *JWTService) ValidateToken(ctx context.Context, tokenString, expectedType string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Type != expectedType {
		return nil, fmt.Errorf("expected %s token, got %q", expectedType, claims.Type)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if s.IsTokenRevoked(ctx, claims.ID) {
		return nil, errors.New("token has been revoked")
	}

	return claims, nil
}

// RevokeToken blacklists a token id until the token would have expired anyway.
func (s *JWTService) RevokeToken(ctx context.Context, claims *Claims) error {
	ttl := s.refreshDuration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.cache.Set(ctx, revokedKey(claims.ID), "revoked", ttl); err != nil {
		s.log.Error("failed to revoke token",
			zap.String("token_id", claims.ID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.log.Info("token revoked",
		zap.String("token_id", claims.ID),
		zap.String("user_id", claims.Subject),
	)

	return nil
}

// IsTokenRevoked checks whether a token ID has been revoked.
func (s *JWTService) IsTokenRevoked(ctx context.Context, tokenID string) bool {
	if tokenID == "" {
		return false
	}
	val, err := s.cache.Get(ctx, revokedKey(tokenID))
	if err != nil {
		// A miss or an unreachable cache both count as not revoked.
		return false
	}
	return val == "revoked"
}

func revokedKey(tokenID string) string {
	return "revoked_token:" + tokenID
}
