package logout

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *LogoutHandler) {
	r.POST("/logout", h.Logout)
}
