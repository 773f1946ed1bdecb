package authstate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	calls   atomic.Int32
	release chan struct{}
	user    *authsdk.Identity
	err     error
}

func (f *fakeVerifier) Verify(ctx context.Context) (*authsdk.Identity, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.user, f.err
}

type fakeHints struct {
	mu      sync.Mutex
	session bool
	login   time.Time
	marked  bool
	cleared int
}

func (h *fakeHints) HasSessionHint() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

func (h *fakeHints) RecentLogin() (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.login, h.marked
}

func (h *fakeHints) MarkLogin(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.login, h.marked = at, true
}

func (h *fakeHints) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session, h.marked = false, false
	h.cleared++
}

var ada = &authsdk.Identity{ID: 1, Email: "ada@example.com", Name: "Ada", Role: "user"}

func TestInitialize_NoHintSkipsNetwork(t *testing.T) {
	v := &fakeVerifier{user: ada}
	s := New(v, &fakeHints{})

	require.NoError(t, s.Initialize(context.Background()))

	st := s.State()
	assert.True(t, st.IsInitialized)
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Equal(t, int32(0), v.calls.Load())
}

func TestInitialize_Hints(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		hints     *fakeHints
		wantCalls int32
	}{
		{name: "session_check cookie", hints: &fakeHints{session: true}, wantCalls: 1},
		{name: "recent login", hints: &fakeHints{login: now.Add(-4 * time.Minute), marked: true}, wantCalls: 1},
		{name: "stale login mark", hints: &fakeHints{login: now.Add(-6 * time.Minute), marked: true}, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &fakeVerifier{user: ada}
			s := New(v, tt.hints, WithClock(func() time.Time { return now }))

			require.NoError(t, s.Initialize(context.Background()))
			assert.Equal(t, tt.wantCalls, v.calls.Load())
			assert.Equal(t, tt.wantCalls == 1, s.State().IsAuthenticated)
		})
	}
}

func TestInitialize_SingleFlight(t *testing.T) {
	v := &fakeVerifier{user: ada, release: make(chan struct{})}
	s := New(v, &fakeHints{session: true})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Initialize(context.Background())
		}(i)
	}

	require.Eventually(t, func() bool { return v.calls.Load() == 1 }, time.Second, time.Millisecond)
	// both callers are parked on the same verification
	time.Sleep(10 * time.Millisecond)
	close(v.release)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, int32(1), v.calls.Load())
	assert.True(t, s.State().IsAuthenticated)

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, int32(1), v.calls.Load())
}

// One waiter giving up must not decide the state for the others.
func TestInitialize_CancelledCallerDoesNotSettle(t *testing.T) {
	v := &fakeVerifier{user: ada, release: make(chan struct{})}
	s := New(v, &fakeHints{session: true})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() { errA <- s.Initialize(ctxA) }()
	require.Eventually(t, func() bool { return v.calls.Load() == 1 }, time.Second, time.Millisecond)

	errB := make(chan error, 1)
	go func() { errB <- s.Initialize(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}
	assert.False(t, s.State().IsInitialized, "cancellation settled the shared state")

	close(v.release)
	select {
	case err := <-errB:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second caller never returned")
	}

	st := s.State()
	assert.True(t, st.IsInitialized)
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, ada.Email, st.User.Email)
	assert.Equal(t, int32(1), v.calls.Load())
}

func TestInitialize_VerifyError(t *testing.T) {
	v := &fakeVerifier{err: errors.New("network down")}
	s := New(v, &fakeHints{session: true})

	err := s.Initialize(context.Background())
	assert.Error(t, err)

	st := s.State()
	assert.True(t, st.IsInitialized)
	assert.False(t, st.IsAuthenticated)
}

func TestInitialize_ServerSaysNoSession(t *testing.T) {
	v := &fakeVerifier{}
	s := New(v, &fakeHints{session: true})

	require.NoError(t, s.Initialize(context.Background()))
	assert.False(t, s.State().IsAuthenticated)
	assert.True(t, s.State().IsInitialized)
}

func TestLoginLogout_NotifySubscribers(t *testing.T) {
	hints := &fakeHints{}
	s := New(&fakeVerifier{}, hints)

	var got []State
	unsubscribe := s.Subscribe(func(st State) { got = append(got, st) })

	s.Login(*ada)
	s.Logout()
	unsubscribe()
	s.Login(*ada)

	require.Len(t, got, 2)
	assert.True(t, got[0].IsAuthenticated)
	assert.Equal(t, ada.Email, got[0].User.Email)
	assert.False(t, got[1].IsAuthenticated)
	assert.True(t, got[1].IsInitialized)
	assert.Equal(t, 1, hints.cleared)
	_, marked := hints.RecentLogin()
	assert.True(t, marked)
}

func TestLogin_WinsOverInFlightVerification(t *testing.T) {
	v := &fakeVerifier{release: make(chan struct{})}
	s := New(v, &fakeHints{session: true})

	done := make(chan error)
	go func() { done <- s.Initialize(context.Background()) }()
	require.Eventually(t, func() bool { return v.calls.Load() == 1 }, time.Second, time.Millisecond)

	s.Login(*ada)
	close(v.release)
	require.NoError(t, <-done)

	st := s.State()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, ada.ID, st.User.ID)
}

func TestReinitialize(t *testing.T) {
	hints := &fakeHints{session: true}
	v := &fakeVerifier{user: ada}
	s := New(v, hints)

	require.NoError(t, s.Initialize(context.Background()))
	assert.True(t, s.State().IsAuthenticated)

	v.user = nil
	require.NoError(t, s.Reinitialize(context.Background()))
	assert.False(t, s.State().IsAuthenticated)
	assert.Equal(t, int32(2), v.calls.Load())
}

func TestState_IsACopy(t *testing.T) {
	s := New(&fakeVerifier{}, &fakeHints{})
	s.Login(*ada)

	st := s.State()
	st.User.Name = "changed"
	assert.Equal(t, "Ada", s.State().User.Name)
}
