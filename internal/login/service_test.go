package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/intrpom/Kurzy-sub001/internal/pkg"
	"github.com/intrpom/Kurzy-sub001/internal/ratelimit"
	"github.com/intrpom/Kurzy-sub001/internal/testutils"
	"github.com/intrpom/Kurzy-sub001/internal/token"
	"github.com/intrpom/Kurzy-sub001/internal/user"
	"github.com/intrpom/Kurzy-sub001/packages/response"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, name, link string
	expiresAt      time.Time
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendMagicLink(_ context.Context, to, name, link string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, name: name, link: link, expiresAt: expiresAt})
	return nil
}

type fixture struct {
	tokens  *token.TokenService
	mailer  *fakeMailer
	service *LoginService
	redis   *miniredis.Miniredis
}

func newFixture(t *testing.T, perEmail, perIP int, expose bool) *fixture {
	t.Helper()
	db := testutils.SetupTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := token.NewTokenService(user.NewUserRepository(db), token.NewTokenRepository(db))
	mailer := &fakeMailer{}
	svc := NewLoginService(tokens, mailer,
		ratelimit.NewLimiter(rdb, perEmail, time.Hour),
		ratelimit.NewLimiter(rdb, perIP, time.Hour),
		Config{BaseURL: "https://kurzy.example", ExposeURL: expose},
	)
	return &fixture{tokens: tokens, mailer: mailer, service: svc, redis: mr}
}

func TestLogin_SendsLinkThatRedeems(t *testing.T) {
	f := newFixture(t, 5, 20, true)
	ctx := context.Background()

	res, bizErr := f.service.Login(ctx, LoginRequest{
		Email:     "ada@example.com",
		Name:      "Ada",
		Slug:      "go-basics",
		Action:    "purchase",
		ReturnURL: "/courses/go-basics",
	}, "10.0.0.1")
	require.Nil(t, bizErr)
	assert.True(t, res.Success)
	require.Len(t, f.mailer.sent, 1)

	mail := f.mailer.sent[0]
	assert.Equal(t, "ada@example.com", mail.to)
	assert.Equal(t, "Ada", mail.name)
	assert.Equal(t, mail.link, res.URL)

	link, err := url.Parse(mail.link)
	require.NoError(t, err)
	assert.Equal(t, "kurzy.example", link.Host)
	assert.Equal(t, "/auth/verify", link.Path)
	q := link.Query()
	assert.Equal(t, "ada@example.com", q.Get("email"))
	assert.Equal(t, "go-basics", q.Get("slug"))
	assert.Equal(t, "/courses/go-basics", q.Get("returnUrl"))
	assert.Len(t, q.Get("token"), pkg.TokenLength)

	id, bizErr := f.tokens.Redeem(ctx, q.Get("token"), q.Get("email"))
	require.Nil(t, bizErr)
	assert.Equal(t, "Ada", id.Name)
}

func TestLogin_HidesURLInProduction(t *testing.T) {
	f := newFixture(t, 5, 20, false)

	res, bizErr := f.service.Login(context.Background(), LoginRequest{Email: "ada@example.com"}, "10.0.0.1")
	require.Nil(t, bizErr)
	assert.Empty(t, res.URL)
	assert.Len(t, f.mailer.sent, 1)
}

func TestLogin_InvalidEmail(t *testing.T) {
	f := newFixture(t, 5, 20, true)

	for _, email := range []string{"", "   ", "nope", "a@"} {
		_, bizErr := f.service.Login(context.Background(), LoginRequest{Email: email}, "10.0.0.1")
		require.NotNil(t, bizErr, email)
		assert.Equal(t, response.InvalidInput, bizErr.Code)
		assert.Equal(t, http.StatusBadRequest, bizErr.Status)
	}
	assert.Empty(t, f.mailer.sent)
}

func TestLogin_RateLimitedPerEmail(t *testing.T) {
	f := newFixture(t, 2, 100, true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, bizErr := f.service.Login(ctx, LoginRequest{Email: "ada@example.com"}, "10.0.0.1")
		require.Nil(t, bizErr)
	}

	_, bizErr := f.service.Login(ctx, LoginRequest{Email: "ada@example.com"}, "10.0.0.2")
	require.NotNil(t, bizErr)
	assert.Equal(t, response.TooManyRequests, bizErr.Code)
	assert.Equal(t, http.StatusTooManyRequests, bizErr.Status)
	assert.Len(t, f.mailer.sent, 2)

	// another address is unaffected
	_, bizErr = f.service.Login(ctx, LoginRequest{Email: "bob@example.com"}, "10.0.0.1")
	assert.Nil(t, bizErr)

	f.redis.FastForward(time.Hour + time.Second)
	_, bizErr = f.service.Login(ctx, LoginRequest{Email: "ada@example.com"}, "10.0.0.1")
	assert.Nil(t, bizErr)
}

func TestLogin_RateLimitedPerIP(t *testing.T) {
	f := newFixture(t, 100, 1, true)
	ctx := context.Background()

	_, bizErr := f.service.Login(ctx, LoginRequest{Email: "ada@example.com"}, "10.0.0.1")
	require.Nil(t, bizErr)

	_, bizErr = f.service.Login(ctx, LoginRequest{Email: "bob@example.com"}, "10.0.0.1")
	require.NotNil(t, bizErr)
	assert.Equal(t, response.TooManyRequests, bizErr.Code)
}

func TestLogin_LimiterDownFailsOpen(t *testing.T) {
	f := newFixture(t, 1, 1, true)
	f.redis.Close()

	for i := 0; i < 3; i++ {
		_, bizErr := f.service.Login(context.Background(), LoginRequest{Email: "ada@example.com"}, "10.0.0.1")
		require.Nil(t, bizErr)
	}
	assert.Len(t, f.mailer.sent, 3)
}

func TestLogin_MailFailure(t *testing.T) {
	f := newFixture(t, 5, 20, true)
	f.mailer.err = errors.New("smtp: 421 service not available")

	res, bizErr := f.service.Login(context.Background(), LoginRequest{Email: "ada@example.com"}, "10.0.0.1")
	assert.Nil(t, res)
	require.NotNil(t, bizErr)
	assert.Equal(t, response.StorageError, bizErr.Code)
	assert.Equal(t, http.StatusInternalServerError, bizErr.Status)
}

func TestLoginHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t, 5, 20, false)
	r := gin.New()
	RegisterRoutes(r.Group("/api/v1/auth"), NewLoginHandler(f.service))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{name: "ok", body: `{"email":"ada@example.com"}`, wantStatus: http.StatusOK, wantBody: `"success":true`},
		{name: "missing email", body: `{}`, wantStatus: http.StatusBadRequest, wantBody: `"error":"InvalidInput"`},
		{name: "not json", body: `email=ada`, wantStatus: http.StatusBadRequest, wantBody: `"success":false`},
		{name: "bad email", body: `{"email":"ada"}`, wantStatus: http.StatusBadRequest, wantBody: `"error":"InvalidInput"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			if tt.wantStatus == http.StatusOK {
				var res LoginResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
				assert.Empty(t, res.URL)
			}
		})
	}
}
