package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	Issuer   = "socialhub-api"
	Audience = "socialhub-client"

	purposeSession = "session"
	purposeVerify  = "verify"
)

// ErrInvalidToken covers every reason a presented token is refused: bad
// signature, wrong purpose, expiry, or a malformed subject.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims carried by session and verification tokens.
type Claims struct {
	Purpose string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// Session is a freshly issued session token.
type Session struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// TokenConfig holds signing secrets and lifetimes.
type TokenConfig struct {
	SessionSecret      string
	VerificationSecret string
	SessionTTL         time.Duration
	VerificationTTL    time.Duration
}

// TokenManager signs and parses session and verification tokens. Sessions
// and verifications use different secrets so one can never stand in for the other.
type TokenManager struct {
	sessionSecret      []byte
	verificationSecret []byte
	sessionTTL         time.Duration
	verificationTTL    time.Duration
	now                func() time.Time
}

// NewTokenManager builds a TokenManager from cfg.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{
		sessionSecret:      []byte(cfg.SessionSecret),
		verificationSecret: []byte(cfg.VerificationSecret),
		sessionTTL:         cfg.SessionTTL,
		verificationTTL:    cfg.VerificationTTL,
		now:                time.Now,
	}
}

// WithClock returns a copy of m that reads the current time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

// SessionTTL is the lifetime of issued session tokens.
func (m *TokenManager) SessionTTL() time.Duration {
	return m.sessionTTL
}

// IssueSession signs a session token for userID.
func (m *TokenManager) IssueSession(userID uint) (*Session, error) {
	now := m.now()
	jti := uuid.NewString()
	expiresAt := now.Add(m.sessionTTL)

	signed, err := m.sign(m.sessionSecret, Claims{
		Purpose: purposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Session{Token: signed, ID: jti, ExpiresAt: expiresAt}, nil
}

// ParseSession validates a session token and returns its claims.
func (m *TokenManager) ParseSession(raw string) (*Claims, error) {
	return m.parse(raw, m.sessionSecret, purposeSession)
}

// IssueVerification signs an email verification token for userID.
func (m *TokenManager) IssueVerification(userID uint) (string, error) {
	now := m.now()
	return m.sign(m.verificationSecret, Claims{
		Purpose: purposeVerify,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.verificationTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
}

// ParseVerification validates a verification token and returns the user id it names.
func (m *TokenManager) ParseVerification(raw string) (uint, error) {
	claims, err := m.parse(raw, m.verificationSecret, purposeVerify)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}

func (m *TokenManager) sign(secret []byte, claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) parse(raw string, secret []byte, purpose string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(_ *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
