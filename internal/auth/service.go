package auth

import (
	"context"
	"strings"
	"time"

	"github.com/ChaliniM/Healthcare/pkg/config"
	"github.com/ChaliniM/Healthcare/pkg/interfaces"
	"github.com/ChaliniM/Healthcare/pkg/logger"
	"github.com/ChaliniM/Healthcare/pkg/monitoring"
	"github.com/ChaliniM/Healthcare/pkg/types"
)

// Service implements the AuthService interface
type Service struct {
	config    *config.AuthConfig
	logger    *logger.Logger
	userRepo  interfaces.UserRepository
	passwords interfaces.PasswordManager
	tokens    *TokenValidator
	metrics   *monitoring.MetricsCollector
}

// NewService creates a new auth service
func NewService(cfg *config.AuthConfig, log *logger.Logger, userRepo interfaces.UserRepository, metrics *monitoring.MetricsCollector) interfaces.AuthService {
	return &Service{
		config:    cfg,
		logger:    log,
		userRepo:  userRepo,
		passwords: NewPasswordManager(cfg.HashPasswords),
		tokens:    NewTokenValidator(cfg.JWTSecret, time.Duration(cfg.SessionTTL)*time.Second),
		metrics:   metrics,
	}
}

// Authenticate checks a credential pair against the users table. An unknown
// username and a wrong password produce the same error: nothing leaks which
// half was wrong.
func (s *Service) Authenticate(ctx context.Context, creds *types.Credentials) (*types.Principal, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, creds.Username)
	if err != nil || !s.passwords.VerifyPassword(user.Password, creds.Password) {
		s.recordAttempt("rejected")
		s.logger.WithField("username", creds.Username).Warn("Authentication rejected")
		return nil, types.NewAuthenticationError(types.ErrCodeAuthenticationFailed, "invalid credentials")
	}

	s.recordAttempt("success")
	s.logger.WithFields(map[string]interface{}{
		"username": user.Username,
		"role":     user.Role,
	}).Info("Authentication succeeded")

	return &types.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// IssueToken signs a session token for the principal
func (s *Service) IssueToken(principal *types.Principal) (*types.AuthToken, error) {
	return s.tokens.Generate(principal)
}

// ValidateToken parses a session token back into a principal
func (s *Service) ValidateToken(token string) (*types.Principal, error) {
	return s.tokens.Validate(token)
}

// CreateUser provisions a new user with the active credential mode
func (s *Service) CreateUser(ctx context.Context, username, password string, role types.UserRole) (*types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "username is required")
	}
	if password == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "password is required")
	}
	if role == "" {
		role = types.RoleStaff
	}

	stored, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		Username: username,
		Password: stored,
		Role:     role,
	}

	id, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	return user, nil
}

func (s *Service) recordAttempt(status string) {
	if s.metrics != nil {
		s.metrics.RecordAuthAttempt(status)
	}
}
