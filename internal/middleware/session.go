package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/intrpom/Kurzy-sub001/internal/dto"
	userModel "github.com/intrpom/Kurzy-sub001/internal/model/user"
	"github.com/intrpom/Kurzy-sub001/internal/pkg"
	"github.com/intrpom/Kurzy-sub001/internal/user"
	authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"
	"github.com/intrpom/Kurzy-sub001/packages/response"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextIdentity = "identity"
)

type Outcome int

const (
	Authorized Outcome = iota
	RedirectedToLogin
	RedirectedHome
)

func (o Outcome) String() string {
	switch o {
	case Authorized:
		return "Authorized"
	case RedirectedToLogin:
		return "RedirectedToLogin"
	default:
		return "RedirectedHome"
	}
}

// Decision is the guard's verdict for one request.
type Decision struct {
	Outcome     Outcome
	Identity    *authsdk.Identity
	ClearCookie bool // the presented session had expired
}

// Authorize decides whether blob grants access to a route needing
// requiredRole ("" means any signed-in user).
func Authorize(codec *authsdk.Codec, blob string, requiredRole string) Decision {
	id, err := codec.Decode(blob)
	if err != nil {
		return Decision{Outcome: RedirectedToLogin, ClearCookie: errors.Is(err, authsdk.ErrExpiredToken)}
	}
	if requiredRole != "" && id.Role != requiredRole {
		return Decision{Outcome: RedirectedHome, Identity: id}
	}
	return Decision{Outcome: Authorized, Identity: id}
}

// Guard applies Authorize to gin routes.
type Guard struct {
	codec     *authsdk.Codec
	cookies   *pkg.CookieHelper
	loginPath string
	homePath  string
}

func NewGuard(codec *authsdk.Codec, cookies *pkg.CookieHelper, loginPath, homePath string) *Guard {
	return &Guard{codec: codec, cookies: cookies, loginPath: loginPath, homePath: homePath}
}

// RequirePage protects navigational routes: failures redirect instead of
// returning an error status.
func (g *Guard) RequirePage(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := Authorize(g.codec, g.cookies.SessionBlob(c), role)
		if d.ClearCookie {
			g.cookies.ClearSessionCookies(c)
		}

		switch d.Outcome {
		case RedirectedToLogin:
			c.Redirect(http.StatusSeeOther, g.loginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		case RedirectedHome:
			c.Redirect(http.StatusSeeOther, g.homePath)
			c.Abort()
			return
		}

		setIdentity(c, *d.Identity)
		c.Next()
	}
}

// RequireAPI protects JSON routes with 401/403 bodies.
func (g *Guard) RequireAPI(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := Authorize(g.codec, g.cookies.SessionBlob(c), role)
		if d.ClearCookie {
			g.cookies.ClearSessionCookies(c)
		}

		switch d.Outcome {
		case RedirectedToLogin:
			dto.AbortWithError(c, response.NewBusinessError(
				response.WithErrorCode(response.Unauthorized),
				response.WithErrorMessage("Please sign in"),
				response.WithHTTPStatus(http.StatusUnauthorized),
			))
			return
		case RedirectedHome:
			dto.AbortWithError(c, forbidden())
			return
		}

		setIdentity(c, *d.Identity)
		c.Next()
	}
}

func (g *Guard) loginURL(returnTo string) string {
	return g.loginPath + "?" + url.Values{"returnUrl": {returnTo}}.Encode()
}

// RoleLookup reads the current stored role of a user.
type RoleLookup interface {
	GetByID(ctx context.Context, id uint) (*userModel.User, error)
}

// RequireFreshRole re-reads the caller from the store so a role revoked
// after the session was issued no longer grants privileged mutations.
// It must run after RequireAPI.
func RequireFreshRole(users RoleLookup, role userModel.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			dto.AbortWithError(c, response.NewBusinessError(
				response.WithErrorCode(response.Unauthorized),
				response.WithErrorMessage("Please sign in"),
				response.WithHTTPStatus(http.StatusUnauthorized),
			))
			return
		}

		u, err := users.GetByID(c.Request.Context(), id.ID)
		if errors.Is(err, user.ErrUserNotFound) {
			dto.AbortWithError(c, forbidden())
			return
		}
		if err != nil {
			dto.AbortWithError(c, response.NewBusinessError(
				response.WithErrorCode(response.StorageError),
				response.WithErrorMessage("Something went wrong, please try again"),
				response.WithHTTPStatus(http.StatusInternalServerError),
				response.WithError(err),
			))
			return
		}
		if u.Role != role {
			dto.AbortWithError(c, forbidden())
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity set by a guard.
func CurrentIdentity(c *gin.Context) (authsdk.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return authsdk.Identity{}, false
	}
	id, ok := v.(authsdk.Identity)
	return id, ok
}

func setIdentity(c *gin.Context, id authsdk.Identity) {
	c.Set(ContextUserID, id.ID)
	c.Set(ContextIdentity, id)
	c.Request = c.Request.WithContext(authsdk.WithIdentity(c.Request.Context(), id))
}

func forbidden() *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.Forbidden),
		response.WithErrorMessage("You do not have access to this resource"),
		response.WithHTTPStatus(http.StatusForbidden),
	)
}
