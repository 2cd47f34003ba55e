package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/auth"
	"github.com/supportdesk/support-portal/internal/config"
	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/events"
	"github.com/supportdesk/support-portal/internal/storage"
	"github.com/supportdesk/support-portal/pkg/errorutil"
)

// ErrInvalidCredentials is returned when a username or password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username    string  `json:"username" validate:"required"`
	Password    string  `json:"password" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	DisplayName string  `json:"displayName" validate:"required"`
	PhoneNumber *string `json:"phoneNumber"`
}

// ChangePasswordInput is the password change payload.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	store      storage.Storage
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, store storage.Storage, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a customer account. Taken usernames and emails are
// reported as validation failures.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, domain.NewUser{
		Username:    input.Username,
		Password:    hash,
		Email:       input.Email,
		DisplayName: input.DisplayName,
		PhoneNumber: input.PhoneNumber,
	})
	switch {
	case errors.Is(err, domain.ErrUsernameTaken):
		return nil, errorutil.NewValidationError("Username already exists", map[string]any{"username": "already exists"})
	case errors.Is(err, domain.ErrEmailTaken):
		return nil, errorutil.NewValidationError("Email already exists", map[string]any{"email": "already exists"})
	case err != nil:
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventUserRegistered,
		ActorID: user.ID,
		Payload: events.UserPayload{User: *user},
	})
	return user, nil
}

// Login authenticates a user by username and password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, input ChangePasswordInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return errorutil.NewNotFound("user", map[string]any{"id": userID})
	}
	if err := auth.ComparePassword(user.Password, input.CurrentPassword); err != nil {
		return errorutil.NewValidationError("Current password is incorrect", map[string]any{"currentPassword": "is incorrect"})
	}

	hash, err := auth.HashPassword(input.NewPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	_, err = s.store.UpdateUser(ctx, userID, domain.UserPatch{Password: &hash})
	return err
}
