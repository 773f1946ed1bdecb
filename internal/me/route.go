package me

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *MeHandler) {
	r.GET("/me", h.GetCurrentUser)
}
