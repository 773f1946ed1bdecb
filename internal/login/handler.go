package login

import (
	"net/http"

	"github.com/intrpom/Kurzy-sub001/internal/dto"
	"github.com/intrpom/Kurzy-sub001/packages/response"

	"github.com/gin-gonic/gin"
)

type LoginHandler struct {
	service *LoginService
}

func NewLoginHandler(service *LoginService) *LoginHandler {
	return &LoginHandler{service: service}
}

// Login requests a magic link
// @Summary Request a sign-in link
// @Description Creates the account on first use and emails a single-use sign-in link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "email and optional course intent"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /auth/login [post]
func (h *LoginHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.InvalidInput),
			response.WithErrorMessage("Please enter a valid email address"),
			response.WithHTTPStatus(http.StatusBadRequest),
			response.WithError(err),
		))
		return
	}

	res, bizErr := h.service.Login(c.Request.Context(), req, c.ClientIP())
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}

	dto.SuccessResponse(c, res)
}
