package admin

import (
	"github.com/intrpom/Kurzy-sub001/internal/progress"
)

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required" example:"admin"`
}

type UserSummary struct {
	ID    uint   `json:"id" example:"7"`
	Email string `json:"email" example:"ada@example.com"`
	Name  string `json:"name" example:"Ada"`
	Role  string `json:"role" example:"admin"`
}

type UserResponse struct {
	Success bool        `json:"success" example:"true"`
	User    UserSummary `json:"user"`
}

type UserProgressResponse struct {
	Success bool                     `json:"success" example:"true"`
	User    UserSummary              `json:"user"`
	Courses []progress.CourseSummary `json:"courses"`
}
