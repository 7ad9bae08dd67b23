package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/stackitdev/stackit/internal/models"
	"github.com/stackitdev/stackit/pkg/crypto"
	apperrors "github.com/stackitdev/stackit/pkg/errors"
	"github.com/stackitdev/stackit/pkg/metrics"
)

// RegisterUserInput carries the fields needed to create an account.
type RegisterUserInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// UpdateUserInput carries the editable profile fields. Nil pointers leave
// the corresponding field untouched.
type UpdateUserInput struct {
	Email    *string
	FullName *string
	Avatar   *string
	Password *string
}

// ListUsersInput defines pagination for user listings.
type ListUsersInput struct {
	Limit  int
	Offset int
}

// UserService manages accounts and credential verification.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// Register creates a new account with a bcrypt-hashed password. Username
// and email collisions surface as conflicts.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" {
		return nil, apperrors.NewBadRequest("username is required")
	}
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewBadRequest("password must be at least 8 characters")
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		FullName: input.FullName,
		IsActive: true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	metrics.AuthAttempts.WithLabelValues("register").Inc()
	return user, nil
}

// Authenticate verifies credentials against the stored hash. The identifier
// may be a username or an email address. Lookup misses and bad passwords
// are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// GetByUsername loads a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// List returns users ordered by username.
func (s *UserService) List(ctx context.Context, input ListUsersInput) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("username").
		Limit(clampLimit(input.Limit, 25, 100)).
		Offset(clampOffset(input.Offset)).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return users, nil
}

// Update edits a user's profile. Password changes are re-hashed; email
// collisions surface as conflicts.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, apperrors.NewBadRequest("email cannot be empty")
		}
		updates["email"] = email
	}
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.Avatar != nil {
		updates["avatar"] = *input.Avatar
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return nil, apperrors.NewBadRequest("password must be at least 8 characters")
		}
		hash, err := crypto.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("user service: hash password: %w", err)
		}
		updates["password"] = hash
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("user service: update user: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes an account. Content the user authored stays behind;
// notifications referencing them keep their weak reference.
func (s *UserService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("user service: delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
