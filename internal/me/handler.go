package me

import (
	"errors"

	"github.com/intrpom/Kurzy-sub001/internal/dto"
	"github.com/intrpom/Kurzy-sub001/internal/pkg"
	authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	codec   *authsdk.Codec
	cookies *pkg.CookieHelper
}

func NewMeHandler(codec *authsdk.Codec, cookies *pkg.CookieHelper) *MeHandler {
	return &MeHandler{codec: codec, cookies: cookies}
}

// GetCurrentUser reports who the session cookie belongs to
// @Summary Identity check
// @Description Always 200. An expired session also clears the session cookies.
// @Tags auth
// @Produce json
// @Success 200 {object} MeResponse
// @Router /auth/me [get]
func (h *MeHandler) GetCurrentUser(c *gin.Context) {
	blob := h.cookies.SessionBlob(c)
	if blob == "" {
		dto.SuccessResponse(c, MeResponse{})
		return
	}

	id, err := h.codec.Decode(blob)
	if err != nil {
		if errors.Is(err, authsdk.ErrExpiredToken) {
			h.cookies.ClearSessionCookies(c)
		}
		dto.SuccessResponse(c, MeResponse{})
		return
	}

	dto.SuccessResponse(c, MeResponse{Authenticated: true, User: id})
}
