package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialhub/internal/auth"
	"socialhub/internal/cache"
	"socialhub/internal/mail"
	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
	"socialhub/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type UserService struct {
	userRepo repository.UserRepository
	hasher   *auth.PasswordHasher
	mailer   Mailer
	resetTTL time.Duration
	revoke   RevokeFunc
	now      func() time.Time
}

// UpdateProfileInput carries a partial update. Nil or blank fields keep
// their current value.
type UpdateProfileInput struct {
	UserID    uint
	FirstName *string
	Surname   *string
	Email     *string
	Gender    *string
	Birthdate *string
}

type ForgotPasswordInput struct {
	Email   string
	BaseURL string
}

type DeleteProfileInput struct {
	UserID   uint
	Password string
	Session  *auth.Claims
}

func NewUserService(
	userRepo repository.UserRepository,
	hasher *auth.PasswordHasher,
	mailer Mailer,
	resetTTL time.Duration,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		mailer:   mailer,
		resetTTL: resetTTL,
		revoke:   cache.RevokeSession,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for reset token expiry.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// WithRevoker replaces the session revocation backend.
func (s *UserService) WithRevoker(revoke RevokeFunc) *UserService {
	s.revoke = revoke
	return s
}

// GetProfile returns the full record of the authenticated user.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User not found.")
	}
	return user, nil
}

// GetUserProfile loads another user's profile. With full set the follow and
// post lists are filled in; callers project to a summary otherwise.
func (s *UserService) GetUserProfile(ctx context.Context, id uint, full bool) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if full {
		user, err = s.userRepo.GetProfile(ctx, id)
	} else {
		user, err = s.userRepo.GetByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError(fmt.Sprintf("User with id - %d not found.", id))
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.ProfileSummary, error) {
	user, err := s.userRepo.GetCredentials(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User not found.")
	}

	if v, ok := supplied(in.FirstName); ok {
		if err := validation.ValidateFirstName(v); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.FirstName = v
	}
	if v, ok := supplied(in.Surname); ok {
		if err := validation.ValidateSurname(v); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Surname = v
	}
	if v, ok := supplied(in.Email); ok {
		email := validation.NormalizeEmail(v)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if email != user.Email {
			taken, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if taken != nil {
				return nil, models.NewValidationError("User already exists.")
			}
			user.Email = email
		}
	}
	if v, ok := supplied(in.Gender); ok {
		g, err := validation.ParseGender(v)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Gender = g
	}
	if v, ok := supplied(in.Birthdate); ok {
		b, err := validation.ParseBirthdate(v, s.now())
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Birthdate = b
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	summary := user.Summary()
	return &summary, nil
}

// ToggleFollow follows targetID, or unfollows it when already followed.
// It reports whether followerID follows targetID afterwards.
func (s *UserService) ToggleFollow(ctx context.Context, followerID, targetID uint) (followed bool, err error) {
	ctx, finish := observability.StartSpan(ctx, "UserService.ToggleFollow",
		attribute.Int64("follower.id", int64(followerID)),
		attribute.Int64("target.id", int64(targetID)),
	)
	defer func() { finish(err) }()

	if followerID == targetID {
		return false, models.NewValidationError("Cannot follow yourself.")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return false, err
	}
	if target == nil {
		return false, models.NewNotFoundError("User not found.")
	}

	followed, err = s.userRepo.ToggleFollow(ctx, followerID, targetID)
	if err != nil {
		return false, err
	}
	if followed {
		observability.SocialActions.WithLabelValues("follow").Inc()
	} else {
		observability.SocialActions.WithLabelValues("unfollow").Inc()
	}
	return followed, nil
}

// UpdatePassword replaces the password. Reusing the current one is an error.
func (s *UserService) UpdatePassword(ctx context.Context, userID uint, newPassword string) error {
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}
	user, err := s.userRepo.GetCredentials(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewValidationError("User not found.")
	}

	same, err := s.hasher.Matches(user.Password, newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	if same {
		return models.NewValidationError("Entered password same as current password.")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = hash
	return s.userRepo.Update(ctx, user)
}

// ForgotPassword stores a fresh reset token hash and mails the raw token.
// It returns the address the link went to.
func (s *UserService) ForgotPassword(ctx context.Context, in ForgotPasswordInput) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(in.Email))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", models.NewNotFoundError("User not found.")
	}

	token, err := auth.NewResetToken(s.now(), s.resetTTL)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	user.ResetPasswordToken = token.Hash
	user.ResetPasswordExpiry = &token.ExpiresAt
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	link := in.BaseURL + "/api/users/me/reset-password/" + token.Raw
	s.mailer.Dispatch(mail.PasswordResetMessage(user.Email, link, s.resetTTL))
	return user.Email, nil
}

// ResetPassword redeems a reset token once and sets a new password.
func (s *UserService) ResetPassword(ctx context.Context, rawToken, newPassword string) (err error) {
	defer func() { observability.AuthEvents.WithLabelValues("reset", outcome(err)).Inc() }()

	user, err := s.userRepo.GetByResetToken(ctx, auth.HashResetToken(rawToken), s.now())
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("Invalid or expired token.")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = hash
	user.ResetPasswordToken = ""
	user.ResetPasswordExpiry = nil
	return s.userRepo.Update(ctx, user)
}

// DeleteProfile re-checks the password, removes the account with everything
// it owns and revokes the current session.
func (s *UserService) DeleteProfile(ctx context.Context, in DeleteProfileInput) (err error) {
	ctx, finish := observability.StartSpan(ctx, "UserService.DeleteProfile",
		attribute.Int64("user.id", int64(in.UserID)),
	)
	defer func() { finish(err) }()

	user, err := s.userRepo.GetCredentials(ctx, in.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User not found.")
	}
	ok, err := s.hasher.Matches(user.Password, in.Password)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !ok {
		return models.NewUnauthorizedError("Incorrect password.")
	}

	if err := s.userRepo.DeleteCascade(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewNotFoundError("User not found.")
		}
		return err
	}
	revokeSession(ctx, s.revoke, in.Session, s.now())
	return nil
}

func supplied(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	t := trimmed(*v)
	return t, t != ""
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
