package login

import "github.com/intrpom/Kurzy-sub001/internal/pkg"

// LoginRequest asks for a magic link. The optional course fields describe a
// pre-login action to resume after verification.
type LoginRequest struct {
	Email     string `json:"email" binding:"required" example:"ada@example.com"`
	Name      string `json:"name" example:"Ada Lovelace"`
	CourseID  string `json:"courseId" example:"12"`
	Slug      string `json:"slug" example:"go-basics"`
	Price     string `json:"price" example:"49"`
	Action    string `json:"action" example:"purchase"`
	ReturnURL string `json:"returnUrl" example:"/courses/go-basics"`
}

func (r LoginRequest) Intent() pkg.Intent {
	return pkg.Intent{
		CourseID:  r.CourseID,
		Slug:      r.Slug,
		Price:     r.Price,
		Action:    r.Action,
		ReturnURL: r.ReturnURL,
	}
}

// LoginResponse URL is only filled outside production.
type LoginResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Check your email for a sign-in link"`
	URL     string `json:"url,omitempty" example:"http://localhost:3000/auth/verify?token=...&email=..."`
}
