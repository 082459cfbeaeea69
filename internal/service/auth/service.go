package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/pkg/validation"
)

// MinPasswordLength is enforced on registration and password changes
const MinPasswordLength = 8

// Welcomer greets new accounts (see email.Service)
type Welcomer interface {
	SendWelcome(ctx context.Context, user *domain.User) error
}

type Service struct {
	userRepo ports.UserRepository
	tokens   *JWTService
	welcomer Welcomer
	log      *zap.Logger
}

func NewService(userRepo ports.UserRepository, tokens *JWTService, log *zap.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log,
	}
}

// SetWelcomer enables the welcome email sent after registration.
func (s *Service) SetWelcomer(w Welcomer) {
	s.welcomer = w
}

func (s *Service) Login(ctx context.Context, email, password string) (*ports.TokenPair, *domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.log.Info("login rejected", zap.String("user_id", user.ID))
		return nil, nil, domain.ErrInvalidCredentials
	}
	if user.Status == domain.UserStatusSuspended {
		return nil, nil, domain.NewForbiddenError("account suspended")
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, nil, domain.NewInternalError("failed to issue tokens", err)
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return pair, user, nil
}

// Register creates an account. Only EV owners and station owners may sign up;
// staff accounts are provisioned by an administrator.
func (s *Service) Register(ctx context.Context, user *domain.User) error {
	user.Email = normalizeEmail(user.Email)
	user.Name = strings.TrimSpace(user.Name)

	if user.Name == "" || user.Email == "" || user.Password == "" {
		return domain.NewValidationError("name, email and password are required")
	}
	if !validation.Email(user.Email) {
		return domain.NewValidationError("invalid email")
	}
	if len(user.Password) < MinPasswordLength {
		return domain.NewValidationError("password must be at least 8 characters")
	}

	switch user.Role {
	case "":
		user.Role = domain.UserRoleEVOwner
	case domain.UserRoleEVOwner, domain.UserRoleStationOwner:
	default:
		return domain.NewValidationError("role must be ev_owner or station_owner")
	}

	existing, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err != nil {
		return domain.NewInternalError("failed to check email", err)
	}
	if existing != nil {
		return domain.ErrEmailTaken
	}

	hashedPwd, err := HashPassword(user.Password)
	if err != nil {
		return domain.NewInternalError("failed to hash password", err)
	}

	now := time.Now().UTC()
	user.ID = uuid.New().String()
	user.Password = hashedPwd
	user.Status = domain.UserStatusActive
	user.NotifyByEmail = true
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.userRepo.Save(ctx, user); err != nil {
		if domain.KindOf(err) == domain.KindConflict {
			return err
		}
		return domain.NewInternalError("failed to save user", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	if s.welcomer != nil {
		if err := s.welcomer.SendWelcome(ctx, user); err != nil {
			s.log.Warn("welcome email failed", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

// RefreshToken exchanges a valid refresh token for a new access token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateToken(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", domain.Wrap(domain.NewUnauthorizedError("invalid refresh token"), err)
	}

	user, err := s.activeUser(ctx, claims.Subject)
	if err != nil {
		return "", err
	}

	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", domain.NewInternalError("failed to issue token", err)
	}
	return accessToken, nil
}

// ValidateToken resolves an access token to its user.
func (s *Service) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.ValidateToken(ctx, token, TokenTypeAccess)
	if err != nil {
		return nil, domain.Wrap(domain.NewUnauthorizedError("invalid or expired token"), err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, domain.NewUnauthorizedError("user no longer exists")
	}
	return user, nil
}

// Logout revokes the given token. Revoking an already invalid token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(ctx, token, TokenTypeAccess)
	if err != nil {
		claims, err = s.tokens.ValidateToken(ctx, token, TokenTypeRefresh)
	}
	if err != nil {
		s.log.Debug("logout with invalid token", zap.Error(err))
		return nil
	}

	if err := s.tokens.RevokeToken(ctx, claims); err != nil {
		return domain.NewInternalError("failed to revoke token", err)
	}
	return nil
}

func (s *Service) activeUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, domain.NewUnauthorizedError("user no longer exists")
	}
	if user.Status == domain.UserStatusSuspended {
		return nil, domain.NewForbiddenError("account suspended")
	}
	return user, nil
}

// HashPassword hashes a plain password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ ports.AuthService = (*Service)(nil)
