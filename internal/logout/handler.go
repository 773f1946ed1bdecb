package logout

import (
	"github.com/intrpom/Kurzy-sub001/internal/dto"
	"github.com/intrpom/Kurzy-sub001/internal/pkg"

	"github.com/gin-gonic/gin"
)

type LogoutHandler struct {
	cookies *pkg.CookieHelper
}

func NewLogoutHandler(cookies *pkg.CookieHelper) *LogoutHandler {
	return &LogoutHandler{cookies: cookies}
}

// Logout clears the session
// @Summary Sign out
// @Description Expires the session, session_check and user_id cookies
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *LogoutHandler) Logout(c *gin.Context) {
	h.cookies.ClearSessionCookies(c)
	dto.MessageResponse(c, "Signed out")
}
