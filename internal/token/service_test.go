package token

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/intrpom/Kurzy-sub001/internal/model/authtoken"
	userModel "github.com/intrpom/Kurzy-sub001/internal/model/user"
	"github.com/intrpom/Kurzy-sub001/internal/pkg"
	"github.com/intrpom/Kurzy-sub001/internal/testutils"
	"github.com/intrpom/Kurzy-sub001/internal/user"
	"github.com/intrpom/Kurzy-sub001/packages/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T) (*TokenService, *TokenRepository, *clock) {
	t.Helper()
	db := testutils.SetupTestDB(t)
	clk := &clock{now: time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)}
	repo := NewTokenRepository(db)
	svc := NewTokenService(user.NewUserRepository(db), repo, WithClock(clk.Now))
	return svc, repo, clk
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.co", true},
		{"first.last+tag@sub.example.com", true},
		{"", false},
		{"no-at-sign", false},
		{"@example.com", false},
		{"ada@", false},
		{"a@b@c", false},
		{"ada @example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEmail(tt.email))
		})
	}
}

func TestIssue_InvalidInputWritesNothing(t *testing.T) {
	svc, repo, _ := newTestService(t)

	issued, bizErr := svc.Issue(context.Background(), "not-an-email", "Ada")
	assert.Nil(t, issued)
	require.NotNil(t, bizErr)
	assert.Equal(t, response.InvalidInput, bizErr.Code)

	var users int64
	require.NoError(t, repo.db.Model(&userModel.User{}).Count(&users).Error)
	assert.Zero(t, users)
}

// A new user signs in: issue, redeem once, second redeem fails.
func TestIssueAndRedeem_NewUser(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()

	issued, bizErr := svc.Issue(ctx, " a@b.co ", "Ada")
	require.Nil(t, bizErr)
	assert.Len(t, issued.Token, pkg.TokenLength)
	assert.Equal(t, clk.Now().Add(DefaultTTL), issued.ExpiresAt)
	assert.Equal(t, "a@b.co", issued.User.Email)
	assert.Equal(t, userModel.RoleUser, issued.User.Role)

	var stored authtoken.AuthToken
	require.NoError(t, repo.db.First(&stored).Error)
	assert.Equal(t, pkg.HashToken(issued.Token), stored.TokenHash)
	assert.NotEqual(t, issued.Token, stored.TokenHash)

	id, bizErr := svc.Redeem(ctx, issued.Token, "a@b.co")
	require.Nil(t, bizErr)
	assert.Equal(t, issued.User.ID, id.ID)
	assert.Equal(t, "a@b.co", id.Email)
	assert.Equal(t, "Ada", id.Name)
	assert.Equal(t, "user", id.Role)

	_, bizErr = svc.Redeem(ctx, issued.Token, "a@b.co")
	require.NotNil(t, bizErr)
	assert.Equal(t, response.InvalidToken, bizErr.Code)
}

func TestRedeem_Expired(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()

	issued, bizErr := svc.Issue(ctx, "a@b.co", "")
	require.Nil(t, bizErr)

	clk.Advance(DefaultTTL + time.Second)

	_, bizErr = svc.Redeem(ctx, issued.Token, "a@b.co")
	require.NotNil(t, bizErr)
	assert.Equal(t, response.TokenExpired, bizErr.Code)

	n, err := repo.CountForUser(ctx, issued.User.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "expired token is deleted")

	_, bizErr = svc.Redeem(ctx, issued.Token, "a@b.co")
	require.NotNil(t, bizErr)
	assert.Equal(t, response.InvalidToken, bizErr.Code)
}

func TestRedeem_AtExactExpiry(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	issued, bizErr := svc.Issue(ctx, "a@b.co", "")
	require.Nil(t, bizErr)

	clk.Advance(DefaultTTL)
	_, bizErr = svc.Redeem(ctx, issued.Token, "a@b.co")
	assert.Nil(t, bizErr)
}

// A token forwarded to someone else is refused and stays redeemable by its owner.
func TestRedeem_EmailMismatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	issued, bizErr := svc.Issue(ctx, "a@b.co", "")
	require.Nil(t, bizErr)

	tests := []string{"x@y.co", "A@b.co"}
	for _, email := range tests {
		_, bizErr = svc.Redeem(ctx, issued.Token, email)
		require.NotNil(t, bizErr, email)
		assert.Equal(t, response.EmailMismatch, bizErr.Code, email)
	}

	id, bizErr := svc.Redeem(ctx, issued.Token, "a@b.co")
	require.Nil(t, bizErr)
	assert.Equal(t, issued.User.ID, id.ID)
}

func TestRedeem_MalformedToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, tok := range []string{"", "short", "!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!!"} {
		_, bizErr := svc.Redeem(context.Background(), tok, "a@b.co")
		require.NotNil(t, bizErr)
		assert.Equal(t, response.InvalidToken, bizErr.Code)
	}
}

func TestRedeem_ConcurrentSingleUse(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	issued, bizErr := svc.Issue(ctx, "a@b.co", "")
	require.Nil(t, bizErr)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan *response.BusinessError, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Redeem(ctx, issued.Token, "a@b.co")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, invalid int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case err.Code == response.InvalidToken:
			invalid++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, invalid)
}

func TestIssue_CapsLiveTokens(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()

	var tokens []string
	for i := 0; i < DefaultMaxLive+2; i++ {
		issued, bizErr := svc.Issue(ctx, "a@b.co", "")
		require.Nil(t, bizErr)
		tokens = append(tokens, issued.Token)
		clk.Advance(time.Minute)
	}

	latest := tokens[len(tokens)-1]
	n, err := repo.CountForUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultMaxLive), n)

	_, bizErr := svc.Redeem(ctx, tokens[0], "a@b.co")
	require.NotNil(t, bizErr, "oldest token was pruned")
	assert.Equal(t, response.InvalidToken, bizErr.Code)

	_, bizErr = svc.Redeem(ctx, latest, "a@b.co")
	assert.Nil(t, bizErr)
}

type failingTokens struct{}

func (failingTokens) Create(context.Context, *authtoken.AuthToken, int) error {
	return errors.New("disk full")
}

func (failingTokens) Redeem(context.Context, string, string, time.Time) (*userModel.User, error) {
	return nil, errors.New("connection refused")
}

type stubUsers struct{}

func (stubUsers) UpsertByEmail(_ context.Context, email, name string) (*userModel.User, error) {
	return &userModel.User{ID: 1, Email: email, Name: name, Role: userModel.RoleUser}, nil
}

func TestStorageErrors(t *testing.T) {
	svc := NewTokenService(stubUsers{}, failingTokens{})

	issued, bizErr := svc.Issue(context.Background(), "a@b.co", "")
	assert.Nil(t, issued)
	require.NotNil(t, bizErr)
	assert.Equal(t, response.StorageError, bizErr.Code)

	token, err := pkg.GenerateRandomToken()
	require.NoError(t, err)
	_, bizErr = svc.Redeem(context.Background(), token, "a@b.co")
	require.NotNil(t, bizErr)
	assert.Equal(t, response.StorageError, bizErr.Code)
}

func TestDeleteExpired(t *testing.T) {
	svc, repo, clk := newTestService(t)
	ctx := context.Background()

	_, bizErr := svc.Issue(ctx, "a@b.co", "")
	require.Nil(t, bizErr)
	clk.Advance(2 * time.Hour)
	_, bizErr = svc.Issue(ctx, "c@d.co", "")
	require.Nil(t, bizErr)

	deleted, err := repo.DeleteExpired(ctx, clk.Now().Add(DefaultTTL-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
