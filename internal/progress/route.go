package progress

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the JSON API. auth must reject anonymous callers.
func RegisterRoutes(r *gin.RouterGroup, h *ProgressHandler, auth gin.HandlerFunc) {
	g := r.Group("/progress", auth)
	g.POST("", h.MarkComplete)
	g.GET("", h.ListLessons)
	g.GET("/courses/:courseId", h.GetCourse)
}

// RegisterPageRoutes mounts the navigational routes behind a redirecting guard.
func RegisterPageRoutes(r gin.IRouter, h *ProgressHandler, page gin.HandlerFunc) {
	r.GET("/my/progress", page, h.Dashboard)
}
