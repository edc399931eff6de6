package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"fieldguide/internal/domain"
	"fieldguide/internal/domain/models"
	"fieldguide/internal/domain/repositories"
	"fieldguide/internal/session"
)

// AuthService handles admin login and logout. Sessions are opaque bearer
// tokens in Redis; passwords are verified against bcrypt hashes.
type AuthService struct {
	adminRepo repositories.AdminUserRepository
	sessions  *session.RedisStore
	logger    *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(adminRepo repositories.AdminUserRepository, sessions *session.RedisStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		adminRepo: adminRepo,
		sessions:  sessions,
		logger:    logger,
	}
}

// LoginRequest carries admin credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the issued session.
type LoginResult struct {
	Token string            `json:"token"`
	Admin *models.AdminUser `json:"admin"`
}

// Login verifies the credentials and issues a session token. Unknown
// email and wrong password both return ErrUnauthorized so callers cannot
// probe which emails exist.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.Validationf("email and password are required")
	}

	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	token, err := s.sessions.Issue(ctx, session.Data{
		AdminID:     admin.ID,
		Email:       admin.Email,
		DisplayName: admin.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin logged in", "admin_id", admin.ID)

	return &LoginResult{Token: token, Admin: admin}, nil
}

// Logout revokes the session token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// HashPassword produces a bcrypt hash for storage. Used by seeding.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
