package auth

import (
	"context"
	"fmt"
	"strings"

	"winter-feast/internal/logger"
	"winter-feast/internal/models"
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8

// Repository is the user storage needed by the auth service.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByNickname(ctx context.Context, nickname string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Service implements registration, login and admin seeding.
type Service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register creates a new guest account. Nickname and email must be globally
// unique; the password must be at least MinPasswordLength characters. On
// success the created user is returned so the caller can authenticate the
// session immediately.
func (s *Service) Register(ctx context.Context, nickname, email, password string) (*models.User, error) {
	nickname = strings.TrimSpace(nickname)
	email = strings.ToLower(strings.TrimSpace(email))

	if nickname == "" || email == "" {
		return nil, models.ErrMissingFields
	}
	if len(password) < MinPasswordLength {
		return nil, models.ErrPasswordTooShort
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Nickname:     nickname,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleGuest,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user_registered", "New user registered", "", map[string]interface{}{
		"user_id":  user.ID,
		"nickname": user.Nickname,
	})
	return user, nil
}

// Login verifies the supplied password against the stored hash.
func (s *Service) Login(ctx context.Context, nickname, password string) (*models.User, error) {
	user, err := s.repo.GetUserByNickname(ctx, strings.TrimSpace(nickname))
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, models.ErrWrongPassword
	}
	return user, nil
}

// GetUser loads a user by ID.
func (s *Service) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers returns all registered accounts, oldest first.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

// EnsureAdmin seeds the distinguished administrator account if it is
// absent. The admin carries the admin role claim; capability checks read
// the role, not the nickname.
func (s *Service) EnsureAdmin(ctx context.Context, nickname, email, password string) error {
	if password == "" {
		return fmt.Errorf("admin password is not configured")
	}

	_, err := s.repo.GetUserByNickname(ctx, nickname)
	if err == nil {
		return nil
	}
	if err != models.ErrUserNotFound {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Nickname:     nickname,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := s.repo.CreateUser(ctx, admin); err != nil {
		// Another instance may have seeded concurrently.
		if err == models.ErrDuplicateUser {
			return nil
		}
		return err
	}

	s.log.Info("admin_seeded", "Administrator account created", "startup", map[string]interface{}{
		"nickname": nickname,
	})
	return nil
}
