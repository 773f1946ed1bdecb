package token

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/intrpom/Kurzy-sub001/internal/logging"
	"github.com/intrpom/Kurzy-sub001/internal/model/authtoken"
	userModel "github.com/intrpom/Kurzy-sub001/internal/model/user"
	"github.com/intrpom/Kurzy-sub001/internal/pkg"
	authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"
	"github.com/intrpom/Kurzy-sub001/packages/response"

	"github.com/google/uuid"
)

const (
	DefaultTTL     = 24 * time.Hour
	DefaultMaxLive = 5
	maxEmailLength = 254
)

// UserStore is the part of the credential store the issuer needs.
type UserStore interface {
	UpsertByEmail(ctx context.Context, email, name string) (*userModel.User, error)
}

// TokenStore persists pending magic links.
type TokenStore interface {
	Create(ctx context.Context, tok *authtoken.AuthToken, keep int) error
	Redeem(ctx context.Context, tokenHash, email string, now time.Time) (*userModel.User, error)
}

// Issued is a freshly minted magic-link token. Token is only ever held in
// memory and in the mail.
type Issued struct {
	Token     string
	ExpiresAt time.Time
	User      *userModel.User
}

type TokenService struct {
	users   UserStore
	tokens  TokenStore
	ttl     time.Duration
	maxLive int
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*TokenService)

func WithTTL(ttl time.Duration) Option {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithMaxLive(n int) Option {
	return func(s *TokenService) {
		if n > 0 {
			s.maxLive = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(users UserStore, tokens TokenStore, opts ...Option) *TokenService {
	s := &TokenService{
		users:   users,
		tokens:  tokens,
		ttl:     DefaultTTL,
		maxLive: DefaultMaxLive,
		now:     time.Now,
		logger:  logging.For("token"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail trims surrounding whitespace. Case is significant.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// ValidEmail is a plausibility check: one "@" with text on both sides.
func ValidEmail(email string) bool {
	if email == "" || len(email) > maxEmailLength || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	local, domain, ok := strings.Cut(email, "@")
	return ok && local != "" && domain != "" && !strings.Contains(domain, "@")
}

// Issue creates or reuses the user for email and mints a single-use token.
func (s *TokenService) Issue(ctx context.Context, email, name string) (*Issued, *response.BusinessError) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.InvalidInput),
			response.WithErrorMessage("Please enter a valid email address"),
			response.WithHTTPStatus(http.StatusBadRequest),
		)
	}

	u, err := s.users.UpsertByEmail(ctx, email, strings.TrimSpace(name))
	if err != nil {
		s.logger.ErrorContext(ctx, "upsert user failed", "email", email, "error", err)
		return nil, storageError(err)
	}

	raw, err := pkg.GenerateRandomToken()
	if err != nil {
		return nil, storageError(err)
	}

	now := s.now().UTC()
	tok := &authtoken.AuthToken{
		ID:        uuid.NewString(),
		TokenHash: pkg.HashToken(raw),
		UserID:    u.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, tok, s.maxLive); err != nil {
		s.logger.ErrorContext(ctx, "store token failed", "email", email, "user_id", u.ID, "error", err)
		return nil, storageError(err)
	}

	s.logger.InfoContext(ctx, "magic link issued", "user_id", u.ID, "expires_at", tok.ExpiresAt)
	return &Issued{Token: raw, ExpiresAt: tok.ExpiresAt, User: u}, nil
}

// Redeem consumes token for email and returns the session identity.
func (s *TokenService) Redeem(ctx context.Context, token, email string) (*authsdk.Identity, *response.BusinessError) {
	email = NormalizeEmail(email)
	if !pkg.ValidTokenFormat(token) || email == "" {
		return nil, invalidToken()
	}

	u, err := s.tokens.Redeem(ctx, pkg.HashToken(token), email, s.now().UTC())
	switch {
	case err == nil:
	case errors.Is(err, ErrTokenNotFound):
		return nil, invalidToken()
	case errors.Is(err, ErrTokenExpired):
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.TokenExpired),
			response.WithErrorMessage("This sign-in link has expired. Please request a new one"),
			response.WithHTTPStatus(http.StatusBadRequest),
			response.WithError(err),
		)
	case errors.Is(err, ErrEmailMismatch):
		s.logger.WarnContext(ctx, "token redeemed with foreign email", "email", email)
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.EmailMismatch),
			response.WithErrorMessage("This sign-in link belongs to a different email address"),
			response.WithHTTPStatus(http.StatusBadRequest),
			response.WithError(err),
		)
	default:
		s.logger.ErrorContext(ctx, "redeem token failed", "email", email, "error", err)
		return nil, storageError(err)
	}

	s.logger.InfoContext(ctx, "magic link redeemed", "user_id", u.ID)
	return &authsdk.Identity{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}, nil
}

func invalidToken() *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.InvalidToken),
		response.WithErrorMessage("This sign-in link is invalid or has already been used"),
		response.WithHTTPStatus(http.StatusBadRequest),
		response.WithError(ErrTokenNotFound),
	)
}

func storageError(err error) *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.StorageError),
		response.WithErrorMessage("Something went wrong, please try again"),
		response.WithHTTPStatus(http.StatusInternalServerError),
		response.WithError(err),
	)
}
