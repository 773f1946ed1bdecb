package progress

import "time"

type MarkCompleteRequest struct {
	LessonID uint `json:"lessonId" binding:"required" example:"42"`
}

type LessonStatus struct {
	Completed   bool       `json:"completed" example:"true"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type LessonProgress struct {
	LessonID uint `json:"lessonId" example:"42"`
	LessonStatus
}

// CourseSummary is the stored aggregate as the API returns it.
type CourseSummary struct {
	CourseID         uint      `json:"courseId" example:"3"`
	Progress         int       `json:"progress" example:"33"`
	Completed        bool      `json:"completed" example:"false"`
	CompletedLessons int       `json:"completedLessons" example:"1"`
	TotalLessons     int       `json:"totalLessons" example:"3"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type MarkCompleteResponse struct {
	Success        bool           `json:"success" example:"true"`
	LessonProgress LessonProgress `json:"lessonProgress"`
	CourseProgress CourseSummary  `json:"courseProgress"`
}

type LessonProgressResponse struct {
	Success bool                  `json:"success" example:"true"`
	Lessons map[uint]LessonStatus `json:"lessons"`
}

type CourseProgressResponse struct {
	Success        bool          `json:"success" example:"true"`
	CourseProgress CourseSummary `json:"courseProgress"`
}

type CourseListResponse struct {
	Success bool            `json:"success" example:"true"`
	Courses []CourseSummary `json:"courses"`
}
