package service

import (
	"context"
	"time"

	"socialhub/internal/auth"
	"socialhub/internal/cache"
	"socialhub/internal/mail"
	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
	"socialhub/internal/validation"
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	hasher   *auth.PasswordHasher
	mailer   Mailer
	revoke   RevokeFunc
	revoked  func(ctx context.Context, jti string) (bool, error)
	now      func() time.Time
}

type RegisterInput struct {
	FirstName string
	Surname   string
	Email     string
	Password  string
	Gender    string
	Birthdate string
	// BaseURL is prefixed to the verification link, e.g. https://api.example.com.
	BaseURL string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	User    models.ProfileSummary
	Session *auth.Session
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	hasher *auth.PasswordHasher,
	mailer Mailer,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		mailer:   mailer,
		revoke:   cache.RevokeSession,
		revoked:  cache.IsSessionRevoked,
		now:      time.Now,
	}
}

// WithSessionStore replaces the session revocation backend.
func (s *AuthService) WithSessionStore(revoke RevokeFunc, revoked func(ctx context.Context, jti string) (bool, error)) *AuthService {
	s.revoke = revoke
	s.revoked = revoked
	return s
}

// Register creates an unverified account and mails its verification link.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (err error) {
	ctx, finish := observability.StartSpan(ctx, "AuthService.Register")
	defer func() {
		finish(err)
		observability.AuthEvents.WithLabelValues("register", outcome(err)).Inc()
	}()

	user, err := s.newUser(in)
	if err != nil {
		return err
	}

	existing, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewValidationError("User already exists.")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = hash

	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	token, err := s.tokens.IssueVerification(user.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.mailer.Dispatch(mail.VerificationMessage(user.Email, in.BaseURL+"/api/auth/verify-email/"+token))
	return nil
}

func (s *AuthService) newUser(in RegisterInput) (*models.User, error) {
	if err := validation.ValidateFirstName(in.FirstName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateSurname(in.Surname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	email := validation.NormalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	gender, err := validation.ParseGender(in.Gender)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	birthdate, err := validation.ParseBirthdate(in.Birthdate, s.now())
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	return &models.User{
		FirstName: trimmed(in.FirstName),
		Surname:   trimmed(in.Surname),
		Email:     email,
		Gender:    gender,
		Birthdate: birthdate,
	}, nil
}

// VerifyEmail redeems a verification token. Each account verifies once.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (summary *models.ProfileSummary, err error) {
	defer func() { observability.AuthEvents.WithLabelValues("verify", outcome(err)).Inc() }()

	userID, err := s.tokens.ParseVerification(token)
	if err != nil {
		return nil, models.NewValidationError("User verification failed.")
	}
	user, err := s.userRepo.GetCredentials(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewValidationError("User verification failed.")
	}
	if user.Verified {
		return nil, models.NewValidationError("User already verified.")
	}

	user.Verified = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	sum := user.Summary()
	return &sum, nil
}

// Login checks credentials and issues a session. Unknown email and wrong
// password share one message.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (result *LoginResult, err error) {
	ctx, finish := observability.StartSpan(ctx, "AuthService.Login")
	defer func() {
		finish(err)
		observability.AuthEvents.WithLabelValues("login", outcome(err)).Inc()
	}()

	invalid := models.NewUnauthorizedError("Invalid credentials.")

	user, err := s.userRepo.GetByEmail(ctx, validation.NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	ok, err := s.hasher.Matches(user.Password, in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !ok {
		return nil, invalid
	}
	if !user.Verified {
		return nil, models.NewValidationError("Please verify your account.")
	}

	session, err := s.tokens.IssueSession(user.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{User: user.Summary(), Session: session}, nil
}

// Logout revokes the presented session, if any. It never fails the request.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) {
	revokeSession(ctx, s.revoke, claims, s.now())
	observability.AuthEvents.WithLabelValues("logout", "success").Inc()
}

// Authenticate resolves a session token to its claims and live user.
// Revoked sessions and deleted users are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, *models.User, error) {
	claims, err := s.tokens.ParseSession(token)
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("Not authorized, invalid token.")
	}
	revoked, err := s.revoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	if revoked {
		return nil, nil, models.NewUnauthorizedError("Not authorized, invalid token.")
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, nil, models.NewUnauthorizedError("Not authorized, invalid token.")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, models.NewUnauthorizedError("Not authorized, invalid token.")
	}
	return claims, user, nil
}

// SessionTTL is how long issued session cookies live.
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.SessionTTL()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
