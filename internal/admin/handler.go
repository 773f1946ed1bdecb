package admin

import (
	"net/http"
	"strconv"

	"github.com/intrpom/Kurzy-sub001/internal/dto"
	"github.com/intrpom/Kurzy-sub001/internal/middleware"
	"github.com/intrpom/Kurzy-sub001/packages/response"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service *AdminService
}

func NewAdminHandler(service *AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// UserProgress lists another user's course progress
// @Summary User progress (admin)
// @Tags admin
// @Produce json
// @Param id path int true "user id"
// @Success 200 {object} UserProgressResponse
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/progress [get]
func (h *AdminHandler) UserProgress(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	res, bizErr := h.service.UserProgress(c.Request.Context(), userID)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, res)
}

// SetRole changes a user's role
// @Summary Change role (admin)
// @Description The caller's admin role is re-read from the database first
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "user id"
// @Param request body UpdateRoleRequest true "new role"
// @Success 200 {object} UserResponse
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) SetRole(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage("role is required"),
			response.WithHTTPStatus(http.StatusBadRequest),
			response.WithError(err),
		))
		return
	}

	actor, _ := middleware.CurrentIdentity(c)
	res, bizErr := h.service.SetRole(c.Request.Context(), actor.ID, userID, req.Role)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, res)
}

func userIDParam(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || n == 0 {
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage("id must be a positive integer"),
			response.WithHTTPStatus(http.StatusBadRequest),
		))
		return 0, false
	}
	return uint(n), true
}
