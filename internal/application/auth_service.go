package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = time.Hour

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService issues and verifies the bearer tokens carried by API callers.
type AuthService struct {
	credentials    CredentialStore
	verifyPassword PasswordVerifier
	secret         []byte
	tokenTTL       time.Duration
	now            func() time.Time
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, secret []byte, verify PasswordVerifier, now func() time.Time, tokenTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if now == nil {
		now = time.Now
	}
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		credentials:    credentials,
		verifyPassword: verify,
		secret:         secret,
		tokenTTL:       tokenTTL,
		now:            now,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate validates username and password and issues a signed token with
// the user id as subject.
func (s *AuthService) Authenticate(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	username := strings.TrimSpace(params.Username)
	logger := s.loggerWith(ctx, "Authenticate", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.User.ID).InfoContext(ctx, "authentication succeeded")
	}()

	if username == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	var creds UserCredentials
	creds, err = s.credentials.GetUserCredentialsByUsername(ctx, username)
	if err != nil {
		if isNotFoundError(err) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.verifyPassword(creds.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   creds.User.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	var signed string
	signed, err = token.SignedString(s.secret)
	if err != nil {
		return
	}

	result = LoginResult{Token: signed, User: creds.User}
	return
}

// ResolvePrincipal verifies a bearer token and resolves the current account
// flags for the subject. Expired, malformed, or unknown-subject tokens are
// rejected as unauthorized.
func (s *AuthService) ResolvePrincipal(ctx context.Context, token string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AuthService is nil")
	}
	if s.credentials == nil {
		return Principal{}, fmt.Errorf("credential store not configured")
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return Principal{}, ErrUnauthorized
	}

	user, err := s.credentials.GetUser(ctx, claims.Subject)
	if err != nil {
		if isNotFoundError(err) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, mapRepoError(err)
	}

	return Principal{UserID: user.ID, IsAdmin: user.IsAdmin, IsSuperAdmin: user.IsSuperAdmin}, nil
}
