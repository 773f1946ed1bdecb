package pkg

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie      = "session"
	SessionCheckCookie = "session_check"
	UserIDCookie       = "user_id"
)

// CookieConfig cookie attributes shared by the session cookies.
type CookieConfig struct {
	Domain string
	Secure bool
}

// CookieHelper writes and clears the session cookie and its readable hints.
type CookieHelper struct {
	config CookieConfig
}

func NewCookieHelper(config CookieConfig) *CookieHelper {
	return &CookieHelper{config: config}
}

// SetSessionCookies sets the HttpOnly session blob plus the session_check and
// user_id hints that client code may read. All three share one lifetime.
func (h *CookieHelper) SetSessionCookies(c *gin.Context, blob string, userID uint, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	h.setCookie(c, SessionCookie, blob, maxAge, true)
	h.setCookie(c, SessionCheckCookie, "true", maxAge, false)
	h.setCookie(c, UserIDCookie, strconv.FormatUint(uint64(userID), 10), maxAge, false)
}

// ClearSessionCookies expires all three cookies.
func (h *CookieHelper) ClearSessionCookies(c *gin.Context) {
	h.setCookie(c, SessionCookie, "", -1, true)
	h.setCookie(c, SessionCheckCookie, "", -1, false)
	h.setCookie(c, UserIDCookie, "", -1, false)
}

// SessionBlob returns the raw session cookie value, or "".
func (h *CookieHelper) SessionBlob(c *gin.Context) string {
	blob, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return blob
}

func (h *CookieHelper) setCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", h.config.Domain, h.config.Secure, httpOnly)
}
