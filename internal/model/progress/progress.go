package progress

import "time"

// LessonCompletion is the fact that a user finished a lesson.
// At most one row exists per (user, lesson).
type LessonCompletion struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"column:user_id;not null;uniqueIndex:idx_completion_user_lesson" json:"user_id"`
	LessonID    uint      `gorm:"column:lesson_id;not null;uniqueIndex:idx_completion_user_lesson;index" json:"lesson_id"`
	CompletedAt time.Time `gorm:"column:completed_at;not null" json:"completed_at"`
}

func (LessonCompletion) TableName() string {
	return "lesson_completions"
}

// CourseProgress caches the aggregate derived from LessonCompletion rows.
// It is only ever written by the recompute path.
type CourseProgress struct {
	UserID           uint      `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`
	CourseID         uint      `gorm:"column:course_id;primaryKey;autoIncrement:false" json:"course_id"`
	Progress         int       `gorm:"column:progress;not null" json:"progress"`
	Completed        bool      `gorm:"column:completed;not null" json:"completed"`
	CompletedLessons int       `gorm:"column:completed_lessons;not null" json:"completed_lessons"`
	TotalLessons     int       `gorm:"column:total_lessons;not null" json:"total_lessons"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (CourseProgress) TableName() string {
	return "course_progress"
}
