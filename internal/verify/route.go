package verify

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *VerifyHandler) {
	r.GET("/verify", h.Verify)
	r.HEAD("/verify", h.Verify)
}
