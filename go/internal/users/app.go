package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/gridironlabs/gridpick/go/internal/crypto"
	"github.com/gridironlabs/gridpick/go/internal/models"
	"github.com/gridironlabs/gridpick/go/internal/storage"
)

// resetTokenTTL is how long a password reset token stays usable.
const resetTokenTTL = time.Hour

// UsersRepository defines what the app layer needs from the repository.
// Email parameters are passed already lower-cased.
type UsersRepository interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error)
	SetAdminStatus(ctx context.Context, id uuid.UUID, isAdmin bool) (*models.User, error)
	SetEmailVerified(ctx context.Context, id uuid.UUID, verified bool) (*models.User, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) (*models.User, error)
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) (*models.User, error)
	SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ListAdmins(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	DeleteParticipationsForUser(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteInvitationsForEmail(ctx context.Context, email string) (int, error)
}

// App handles users business logic
type App struct {
	repo  UsersRepository
	clock clockwork.Clock
}

// NewApp creates a new users App
func NewApp(repo UsersRepository, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// CreateUser registers a new user with validation and a bcrypt password hash.
func (a *App) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := a.validateCreateUserRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	email := strings.TrimSpace(req.Email)
	if existing, err := a.repo.GetUserByEmail(ctx, strings.ToLower(email)); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:             uuid.New(),
		Email:          email,
		PasswordHash:   string(hash),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		FavoriteTeamID: req.FavoriteTeamID,
	}

	created, err := a.repo.CreateUser(ctx, user)
	if err != nil {
		// a concurrent registration can still lose the race to the
		// uniqueness constraint
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", created.ID.String()).Str("email", created.Email).Msg("created user")
	return created, nil
}

// GetUser retrieves a user by ID.
func (a *App) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (a *App) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := a.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// UpdateUser updates profile fields with validation. Email changes re-check
// uniqueness against other accounts.
func (a *App) UpdateUser(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	if err := a.validateUpdateUserRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		req.Email = &email
		if !strings.EqualFold(email, existing.Email) {
			conflict, err := a.repo.GetUserByEmail(ctx, strings.ToLower(email))
			if err == nil && conflict != nil && conflict.ID != id {
				return nil, ErrEmailTaken
			}
		}
	}

	user, err := a.repo.UpdateProfile(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Msg("updated user")
	return user, nil
}

// SetAdminStatus grants or revokes admin rights.
func (a *App) SetAdminStatus(ctx context.Context, id uuid.UUID, isAdmin bool) (*models.User, error) {
	user, err := a.repo.SetAdminStatus(ctx, id, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to set admin status: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Bool("is_admin", isAdmin).Msg("changed admin status")
	return user, nil
}

// SetEmailVerified records whether the user's email has been verified.
func (a *App) SetEmailVerified(ctx context.Context, id uuid.UUID, verified bool) (*models.User, error) {
	user, err := a.repo.SetEmailVerified(ctx, id, verified)
	if err != nil {
		return nil, fmt.Errorf("failed to set email verified: %w", err)
	}
	return user, nil
}

// CreatePasswordResetToken issues a fresh reset token for the account with
// the given email and returns the user plus the raw token. An existing token
// is replaced.
func (a *App) CreatePasswordResetToken(ctx context.Context, email string) (*models.User, string, error) {
	user, err := a.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user by email: %w", err)
	}

	token, err := crypto.NewToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := a.clock.Now().UTC().Add(resetTokenTTL)
	user, err = a.repo.SetResetToken(ctx, user.ID, token, expiresAt)
	if err != nil {
		return nil, "", fmt.Errorf("failed to set reset token: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Time("expires_at", expiresAt).Msg("issued password reset token")
	return user, token, nil
}

// GetUserByResetToken resolves a reset token to its user, enforcing the
// token's expiry.
func (a *App) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	user, err := a.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}
	if user.ResetTokenExpiresAt == nil || a.clock.Now().After(*user.ResetTokenExpiresAt) {
		return nil, ErrTokenExpired
	}
	return user, nil
}

// ResetPassword sets a new password for the user holding the token and
// invalidates the token in the same write.
func (a *App) ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error) {
	if err := validatePassword(newPassword); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := a.GetUserByResetToken(ctx, token)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err = a.repo.ResetPassword(ctx, user.ID, string(hash))
	if err != nil {
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	log.Info().Str("user_id", user.ID.String()).Msg("password reset")
	return user, nil
}

// UpdateLastLogin stamps the user's last login time with the app clock.
func (a *App) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	if err := a.repo.SetLastLogin(ctx, id, a.clock.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// ListAdmins returns all users with admin rights.
func (a *App) ListAdmins(ctx context.Context) ([]models.User, error) {
	admins, err := a.repo.ListAdmins(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

// DeleteUser removes a user and returns the deleted snapshot. Membership
// rows and invitations addressed to the user go first, children before
// parent, so an interrupted delete can be retried. Picks stay as game
// history; their user reference is weak.
func (a *App) DeleteUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	participations, err := a.repo.DeleteParticipationsForUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete participations: %w", err)
	}
	invites, err := a.repo.DeleteInvitationsForEmail(ctx, strings.ToLower(user.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to delete invitations: %w", err)
	}

	if err := a.repo.DeleteUser(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("email", user.Email).
		Int("participations", participations).
		Int("invitations", invites).
		Msg("deleted user")
	return user, nil
}

// VerifyPassword reports whether the password matches the user's hash.
func (a *App) VerifyPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// validateCreateUserRequest validates create user request
func (a *App) validateCreateUserRequest(req CreateUserRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	return validatePassword(req.Password)
}

// validateUpdateUserRequest validates update user request
func (a *App) validateUpdateUserRequest(req UpdateUserRequest) error {
	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			return err
		}
	}
	if req.FavoriteTeamID != nil && req.ClearFavoriteTeam {
		return fmt.Errorf("cannot set and clear favorite team at once")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return fmt.Errorf("email format is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
