package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"example.com/cartonbox/internal/apperrors"
	"example.com/cartonbox/internal/auth"
	"example.com/cartonbox/internal/cache"
	"example.com/cartonbox/internal/models"
	"example.com/cartonbox/internal/repositories"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService manages back-office accounts and sign-in
type UserService struct {
	userRepo *repositories.UserRepository
	issuer   *auth.TokenIssuer
	cache    *cache.RedisCache
	resetTTL time.Duration
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, readOnlyDB *gorm.DB, issuer *auth.TokenIssuer, sessionCache *cache.RedisCache, resetTTL time.Duration) *UserService {
	return &UserService{
		userRepo: repositories.NewUserRepository(db, readOnlyDB),
		issuer:   issuer,
		cache:    sessionCache,
		resetTTL: resetTTL,
	}
}

// UserDraft is the input for creating a user account
type UserDraft struct {
	Email       string          `json:"email" validate:"required,email"`
	DisplayName string          `json:"display_name" validate:"required,min=2"`
	Password    string          `json:"password" validate:"required,min=8"`
	Role        models.UserRole `json:"role" validate:"required,oneof=admin editor viewer"`
	PhoneNumber string          `json:"phone_number"`
	Department  string          `json:"department"`
}

// ListUsers returns all user accounts
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

// GetUser returns one user account
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// CreateUser registers a new account with a bcrypt password hash
func (s *UserService) CreateUser(ctx context.Context, draft UserDraft) (*models.User, error) {
	if err := validateStruct(draft); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetByEmail(ctx, draft.Email); err == nil && existing != nil {
		return nil, apperrors.NewValidationError("email %s is already registered", draft.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        draft.Email,
		DisplayName:  draft.DisplayName,
		Role:         draft.Role,
		PasswordHash: string(hash),
		PhoneNumber:  draft.PhoneNumber,
		Department:   draft.Department,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperrors.NewDatabaseError("failed to create user: %v", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Str("role", string(user.Role)).
		Msg("User created")
	return user, nil
}

// UserUpdate is the input for editing a user account
type UserUpdate struct {
	DisplayName *string          `json:"display_name,omitempty" validate:"omitempty,min=2"`
	Role        *models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin editor viewer"`
	PhoneNumber *string          `json:"phone_number,omitempty"`
	Department  *string          `json:"department,omitempty"`
	Disabled    *bool            `json:"disabled,omitempty"`
}

// UpdateUser edits an account's profile, role, or disabled flag
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, update UserUpdate) (*models.User, error) {
	if err := validateStruct(update); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		user.DisplayName = *update.DisplayName
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.PhoneNumber != nil {
		user.PhoneNumber = *update.PhoneNumber
	}
	if update.Department != nil {
		user.Department = *update.Department
	}
	if update.Disabled != nil {
		user.Disabled = *update.Disabled
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, apperrors.NewDatabaseError("failed to update user: %v", err)
	}
	return user, nil
}

// DeleteUser removes a user account
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}

// SignInResult is the response of a successful sign-in
type SignInResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SignIn verifies credentials and issues an access token
func (s *UserService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}
	if user.Disabled {
		return nil, apperrors.NewUnauthorizedError("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("Failed to record last login")
	}

	return &SignInResult{Token: token, User: *user}, nil
}

// RequestPasswordReset issues a one-time reset token for the account. The
// token is returned to the caller for delivery; whether the email exists is
// not revealed through the API.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to generate reset token")
	}
	token := hex.EncodeToString(buf)

	if err := s.cache.Set(ctx, resetKey(token), user.ID, s.resetTTL); err != nil {
		return "", errors.Wrap(err, "failed to store reset token")
	}

	log.Info().Str("user_id", user.ID.String()).Msg("Password reset requested")
	return token, nil
}

// ResetPassword consumes a reset token and sets a new password
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must have at least 8 characters")
	}

	var userID uuid.UUID
	if err := s.cache.Get(ctx, resetKey(token), &userID); err != nil {
		return apperrors.NewUnauthorizedError("invalid or expired reset token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperrors.NewDatabaseError("failed to update password: %v", err)
	}

	if err := s.cache.Delete(ctx, resetKey(token)); err != nil {
		log.Warn().Err(err).Msg("Failed to drop consumed reset token")
	}
	log.Info().Str("user_id", user.ID.String()).Msg("Password reset completed")
	return nil
}

func resetKey(token string) string {
	return "reset:" + token
}
