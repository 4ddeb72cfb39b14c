package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"socialhub/internal/auth"
	"socialhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager(auth.TokenConfig{
		SessionSecret:      "session-secret-session-secret-123",
		VerificationSecret: "verify-secret-verify-secret-12345",
		SessionTTL:         time.Hour,
		VerificationTTL:    30 * 24 * time.Hour,
	})
}

func testHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := testHasher().Hash(pw)
	require.NoError(t, err)
	return h
}

func validRegister() RegisterInput {
	return RegisterInput{
		FirstName: "A",
		Surname:   "B",
		Email:     " A@X.com ",
		Password:  "secret1",
		Gender:    "Male",
		Birthdate: "2000-01-01",
		BaseURL:   "http://localhost:8080",
	}
}

func TestAuthService_Register(t *testing.T) {
	repo := noopUserRepo()
	var created *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 7
		created = u
		return nil
	}
	mailer := &capturedMail{}
	tokens := testTokens()
	svc := NewAuthService(repo, tokens, testHasher(), mailer)

	require.NoError(t, svc.Register(context.Background(), validRegister()))

	require.NotNil(t, created)
	assert.Equal(t, "a@x.com", created.Email)
	assert.False(t, created.Verified)
	assert.NotEqual(t, "secret1", created.Password)
	assert.Equal(t, models.GenderMale, created.Gender)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), created.Birthdate)

	msg, ok := mailer.last()
	require.True(t, ok)
	assert.Equal(t, "a@x.com", msg.To)
	const prefix = "http://localhost:8080/api/auth/verify-email/"
	require.Contains(t, msg.Text, prefix)
	token := msg.Text[strings.Index(msg.Text, prefix)+len(prefix):]
	id, err := tokens.ParseVerification(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestAuthService_RegisterRejectsDuplicate(t *testing.T) {
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: 1, Email: email}, nil
	}
	repo.createFn = func(context.Context, *models.User) error {
		t.Fatal("create must not be called")
		return nil
	}
	mailer := &capturedMail{}
	svc := NewAuthService(repo, testTokens(), testHasher(), mailer)

	err := svc.Register(context.Background(), validRegister())
	assert.Equal(t, 400, statusOf(err))
	assert.Equal(t, "User already exists.", messageOf(err))
	_, sent := mailer.last()
	assert.False(t, sent)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(noopUserRepo(), testTokens(), testHasher(), &capturedMail{})

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = " " }},
		{"bad email", func(in *RegisterInput) { in.Email = "nope" }},
		{"short password", func(in *RegisterInput) { in.Password = "abc" }},
		{"bad gender", func(in *RegisterInput) { in.Gender = "robot" }},
		{"future birthdate", func(in *RegisterInput) { in.Birthdate = "2999-01-01" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegister()
			tt.mutate(&in)
			err := svc.Register(context.Background(), in)
			assert.Equal(t, 400, statusOf(err))
		})
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	tokens := testTokens()
	user := &models.User{ID: 3, FirstName: "A", Surname: "B", Email: "a@x.com"}
	repo := noopUserRepo()
	repo.getCredentialsFn = func(_ context.Context, id uint) (*models.User, error) {
		if id == user.ID {
			return user, nil
		}
		return nil, nil
	}
	svc := NewAuthService(repo, tokens, testHasher(), &capturedMail{})
	ctx := context.Background()

	_, err := svc.VerifyEmail(ctx, "garbage")
	assert.Equal(t, 400, statusOf(err))
	assert.Equal(t, "User verification failed.", messageOf(err))

	orphan, err := tokens.IssueVerification(99)
	require.NoError(t, err)
	_, err = svc.VerifyEmail(ctx, orphan)
	assert.Equal(t, "User verification failed.", messageOf(err))

	token, err := tokens.IssueVerification(user.ID)
	require.NoError(t, err)
	summary, err := svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "A B", summary.Name)
	assert.True(t, user.Verified)

	_, err = svc.VerifyEmail(ctx, token)
	assert.Equal(t, "User already verified.", messageOf(err))
}

func TestAuthService_Login(t *testing.T) {
	verified := &models.User{ID: 1, Email: "a@x.com", Password: hashed(t, "secret1"), Verified: true, FirstName: "A", Surname: "B"}
	pending := &models.User{ID: 2, Email: "p@x.com", Password: hashed(t, "secret1")}
	repo := noopUserRepo()
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		switch email {
		case verified.Email:
			return verified, nil
		case pending.Email:
			return pending, nil
		}
		return nil, nil
	}
	tokens := testTokens()
	svc := NewAuthService(repo, tokens, testHasher(), &capturedMail{})
	ctx := context.Background()

	_, wrongPw := svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "secret2"})
	_, unknown := svc.Login(ctx, LoginInput{Email: "who@x.com", Password: "secret1"})
	assert.Equal(t, 401, statusOf(wrongPw))
	assert.Equal(t, 401, statusOf(unknown))
	assert.Equal(t, messageOf(wrongPw), messageOf(unknown))
	assert.Equal(t, "Invalid credentials.", messageOf(unknown))

	_, err := svc.Login(ctx, LoginInput{Email: "p@x.com", Password: "secret1"})
	assert.Equal(t, 400, statusOf(err))
	assert.Equal(t, "Please verify your account.", messageOf(err))

	res, err := svc.Login(ctx, LoginInput{Email: "A@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.User.ID)
	claims, err := tokens.ParseSession(res.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, claims.ID)
}

func TestAuthService_LogoutAndAuthenticate(t *testing.T) {
	user := &models.User{ID: 5, Email: "a@x.com"}
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		if id == user.ID {
			return user, nil
		}
		return nil, nil
	}
	revoked := map[string]time.Duration{}
	tokens := testTokens()
	svc := NewAuthService(repo, tokens, testHasher(), &capturedMail{}).WithSessionStore(
		func(_ context.Context, jti string, ttl time.Duration) error {
			revoked[jti] = ttl
			return nil
		},
		func(_ context.Context, jti string) (bool, error) {
			_, ok := revoked[jti]
			return ok, nil
		},
	)
	ctx := context.Background()

	session, err := tokens.IssueSession(user.ID)
	require.NoError(t, err)

	claims, got, err := svc.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	svc.Logout(ctx, claims)
	require.Contains(t, revoked, session.ID)
	assert.InDelta(t, time.Hour.Seconds(), revoked[session.ID].Seconds(), 5)

	_, _, err = svc.Authenticate(ctx, session.Token)
	assert.Equal(t, 401, statusOf(err))

	_, _, err = svc.Authenticate(ctx, "garbage")
	assert.Equal(t, 401, statusOf(err))

	deleted, err := tokens.IssueSession(99)
	require.NoError(t, err)
	_, _, err = svc.Authenticate(ctx, deleted.Token)
	assert.Equal(t, 401, statusOf(err))

	// Logging out without a session is a no-op.
	assert.NotPanics(t, func() { svc.Logout(ctx, nil) })
}

func TestAuthService_AuthenticateRevocationStoreError(t *testing.T) {
	tokens := testTokens()
	svc := NewAuthService(noopUserRepo(), tokens, testHasher(), &capturedMail{}).WithSessionStore(
		func(context.Context, string, time.Duration) error { return nil },
		func(context.Context, string) (bool, error) { return false, errors.New("redis down") },
	)
	session, err := tokens.IssueSession(1)
	require.NoError(t, err)

	_, _, err = svc.Authenticate(context.Background(), session.Token)
	assert.Equal(t, 500, statusOf(err))
}
