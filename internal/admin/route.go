package admin

import (
	"github.com/intrpom/Kurzy-sub001/internal/middleware"
	userModel "github.com/intrpom/Kurzy-sub001/internal/model/user"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *AdminHandler, guard *middleware.Guard, users middleware.RoleLookup) {
	g := r.Group("/admin", guard.RequireAPI(string(userModel.RoleAdmin)))
	g.GET("/users/:id/progress", h.UserProgress)
	g.PUT("/users/:id/role", middleware.RequireFreshRole(users, userModel.RoleAdmin), h.SetRole)
}
