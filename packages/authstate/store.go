// Package authstate keeps a client's view of "who is signed in" and shares it
// with every part of the client that asks.
//
// A Store is created once per client process and passed to its consumers.
// The first Initialize call decides the state, checking local hints before
// going to the network. Concurrent first calls share one verification.
package authstate

import (
	"context"
	"sync"
	"time"

	authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"

	"golang.org/x/sync/singleflight"
)

const (
	// RecentLoginWindow is how long a local login mark counts as a session hint.
	RecentLoginWindow = 5 * time.Minute
	// VerifyTimeout bounds the shared identity check.
	VerifyTimeout = 30 * time.Second
)

// State is a snapshot of the client's auth state.
type State struct {
	IsAuthenticated bool
	IsInitialized   bool
	User            *authsdk.Identity
}

// Listener receives every state transition.
type Listener func(State)

// Verifier asks the server who the current session belongs to.
// It returns nil, nil when the server reports no session.
type Verifier interface {
	Verify(ctx context.Context) (*authsdk.Identity, error)
}

// Hints are the local signals that a session might exist.
type Hints interface {
	HasSessionHint() bool
	RecentLogin() (time.Time, bool)
	MarkLogin(at time.Time)
	Clear()
}

type Store struct {
	verifier Verifier
	hints    Hints
	now      func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	state      State
	generation uint64
	listeners  map[uint64]Listener
	nextID     uint64
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(verifier Verifier, hints Hints, opts ...Option) *Store {
	s := &Store{
		verifier:  verifier,
		hints:     hints,
		now:       time.Now,
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state)
}

// Subscribe registers fn for future transitions and returns its remover.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Initialize settles the state once. Later calls return immediately, and
// concurrent first calls wait on the same verification. A verification
// error leaves the store initialized and unauthenticated.
//
// The shared verification is detached from the caller: a caller whose ctx
// ends gets ctx.Err() back while the others keep waiting for the result.
func (s *Store) Initialize(ctx context.Context) error {
	if s.State().IsInitialized {
		return nil
	}

	ch := s.group.DoChan("initialize", func() (any, error) {
		vctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), VerifyTimeout)
		defer cancel()
		return nil, s.verify(vctx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) verify(ctx context.Context) error {
	s.mu.RLock()
	initialized := s.state.IsInitialized
	gen := s.generation
	s.mu.RUnlock()
	if initialized {
		return nil
	}

	if !s.hasHint() {
		s.settle(gen, State{IsInitialized: true})
		return nil
	}

	user, err := s.verifier.Verify(ctx)
	if err != nil {
		s.settle(gen, State{IsInitialized: true})
		return err
	}
	if user == nil {
		s.settle(gen, State{IsInitialized: true})
		return nil
	}
	s.settle(gen, State{IsAuthenticated: true, IsInitialized: true, User: user})
	return nil
}

// Reinitialize forgets the settled state and verifies again.
func (s *Store) Reinitialize(ctx context.Context) error {
	s.mu.Lock()
	s.state.IsInitialized = false
	s.mu.Unlock()
	return s.Initialize(ctx)
}

// Login records a successful sign-in made elsewhere in the client.
func (s *Store) Login(user authsdk.Identity) {
	if s.hints != nil {
		s.hints.MarkLogin(s.now())
	}
	s.replace(State{IsAuthenticated: true, IsInitialized: true, User: &user})
}

// Logout drops the local view of the session.
func (s *Store) Logout() {
	if s.hints != nil {
		s.hints.Clear()
	}
	s.replace(State{IsInitialized: true})
}

func (s *Store) hasHint() bool {
	if s.hints == nil {
		return false
	}
	if s.hints.HasSessionHint() {
		return true
	}
	at, ok := s.hints.RecentLogin()
	return ok && s.now().Sub(at) < RecentLoginWindow
}

// settle applies a verification result unless Login or Logout ran after
// the verification started.
func (s *Store) settle(gen uint64, next State) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	s.generation++
	s.state = next
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, next)
}

func (s *Store) replace(next State) {
	s.mu.Lock()
	s.generation++
	s.state = next
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, next)
}

func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []Listener, st State) {
	for _, fn := range listeners {
		fn(copyState(st))
	}
}

func copyState(st State) State {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
