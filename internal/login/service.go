package login

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/intrpom/Kurzy-sub001/internal/logging"
	"github.com/intrpom/Kurzy-sub001/internal/metrics"
	"github.com/intrpom/Kurzy-sub001/internal/pkg"
	"github.com/intrpom/Kurzy-sub001/internal/ratelimit"
	"github.com/intrpom/Kurzy-sub001/internal/token"
	"github.com/intrpom/Kurzy-sub001/packages/response"
)

// Issuer mints magic-link tokens.
type Issuer interface {
	Issue(ctx context.Context, email, name string) (*token.Issued, *response.BusinessError)
}

// Limiter throttles login requests per scope and key.
type Limiter interface {
	Allow(ctx context.Context, scope, key string) (ratelimit.Result, error)
}

type LoginService struct {
	issuer    Issuer
	mailer    Mailer
	perEmail  Limiter
	perIP     Limiter
	baseURL   string
	exposeURL bool
	logger    *slog.Logger
}

type Config struct {
	BaseURL string
	// ExposeURL returns the link in the response body. Never in production.
	ExposeURL bool
}

func NewLoginService(issuer Issuer, mailer Mailer, perEmail, perIP Limiter, cfg Config) *LoginService {
	return &LoginService{
		issuer:    issuer,
		mailer:    mailer,
		perEmail:  perEmail,
		perIP:     perIP,
		baseURL:   cfg.BaseURL,
		exposeURL: cfg.ExposeURL,
		logger:    logging.For("login"),
	}
}

// Login issues a token for req.Email and mails the link. Success is only
// reported once the token is stored and the mail handed off.
func (s *LoginService) Login(ctx context.Context, req LoginRequest, clientIP string) (*LoginResponse, *response.BusinessError) {
	email := token.NormalizeEmail(req.Email)
	if !token.ValidEmail(email) {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.InvalidInput),
			response.WithErrorMessage("Please enter a valid email address"),
			response.WithHTTPStatus(http.StatusBadRequest),
		)
	}

	if err := s.throttle(ctx, "email", email, s.perEmail); err != nil {
		return nil, err
	}
	if err := s.throttle(ctx, "ip", clientIP, s.perIP); err != nil {
		return nil, err
	}

	issued, bizErr := s.issuer.Issue(ctx, email, req.Name)
	if bizErr != nil {
		return nil, bizErr
	}

	link := pkg.BuildMagicLink(s.baseURL, issued.Token, email, req.Intent())
	if err := s.mailer.SendMagicLink(ctx, email, issued.User.Name, link, issued.ExpiresAt); err != nil {
		s.logger.ErrorContext(ctx, "send magic link failed", "email", email, "error", err)
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.StorageError),
			response.WithErrorMessage("We could not send the sign-in email, please try again"),
			response.WithHTTPStatus(http.StatusInternalServerError),
			response.WithError(err),
		)
	}
	metrics.TokensIssued.Inc()

	res := &LoginResponse{
		Success: true,
		Message: "Check your email for a sign-in link",
	}
	if s.exposeURL {
		res.URL = link
	}
	return res, nil
}

func (s *LoginService) throttle(ctx context.Context, scope, key string, l Limiter) *response.BusinessError {
	if l == nil || key == "" {
		return nil
	}
	res, err := l.Allow(ctx, scope, key)
	if err != nil {
		s.logger.WarnContext(ctx, "rate limiter unavailable, allowing request", "scope", scope, "error", err)
		return nil
	}
	if res.Allowed {
		return nil
	}

	metrics.LoginRateLimited.WithLabelValues(scope).Inc()
	s.logger.WarnContext(ctx, "login rate limited", "scope", scope, "count", res.Count)
	return response.NewBusinessError(
		response.WithErrorCode(response.TooManyRequests),
		response.WithErrorMessage(fmt.Sprintf("Too many sign-in requests, please try again in %d minutes", retryMinutes(res.RetryAfter))),
		response.WithHTTPStatus(http.StatusTooManyRequests),
	)
}

func retryMinutes(d time.Duration) int {
	m := int((d + time.Minute - 1) / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}
