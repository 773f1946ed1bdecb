package authstate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"
)

// Hint cookie names written by the server next to the session cookie.
const (
	SessionCheckCookie = "session_check"
	UserIDCookie       = "user_id"
)

// JarHints reads session hints from a cookie jar and keeps the recent-login
// mark in memory.
type JarHints struct {
	Jar  http.CookieJar
	Base *url.URL

	mu     sync.Mutex
	login  time.Time
	marked bool
}

func (h *JarHints) HasSessionHint() bool {
	for _, c := range h.Jar.Cookies(h.Base) {
		if c.Name == SessionCheckCookie && c.Value == "true" {
			return true
		}
	}
	return false
}

func (h *JarHints) RecentLogin() (time.Time, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.login, h.marked
}

func (h *JarHints) MarkLogin(at time.Time) {
	h.mu.Lock()
	h.login, h.marked = at, true
	h.mu.Unlock()
}

// Clear expires the readable hint cookies and the recent-login mark.
// The HttpOnly session cookie is removed by the server's logout response.
func (h *JarHints) Clear() {
	h.mu.Lock()
	h.login, h.marked = time.Time{}, false
	h.mu.Unlock()

	h.Jar.SetCookies(h.Base, []*http.Cookie{
		{Name: SessionCheckCookie, Value: "", Path: "/", MaxAge: -1},
		{Name: UserIDCookie, Value: "", Path: "/", MaxAge: -1},
	})
}

// HTTPVerifier calls the identity-check endpoint with the client's cookies.
type HTTPVerifier struct {
	Client   *http.Client
	Endpoint string // e.g. https://courses.example.com/api/v1/auth/me
}

type meResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *authsdk.Identity `json:"user,omitempty"`
}

func (v *HTTPVerifier) Verify(ctx context.Context) (*authsdk.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.Endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity check: unexpected status %d", resp.StatusCode)
	}

	var body meResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("identity check: decode: %w", err)
	}
	if !body.Authenticated || body.User == nil {
		return nil, nil
	}
	return body.User, nil
}
