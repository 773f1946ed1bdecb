package course

import "time"

// Course, Module and Lesson are owned by the content service. This service
// only reads them to know which lessons make up a course.
type Course struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Slug      string    `gorm:"column:slug;type:varchar(200);not null;uniqueIndex" json:"slug"`
	Title     string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Course) TableName() string {
	return "courses"
}

type Module struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CourseID uint   `gorm:"column:course_id;not null;index" json:"course_id"`
	Title    string `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Position int    `gorm:"column:position;not null" json:"position"`
}

func (Module) TableName() string {
	return "course_modules"
}

type Lesson struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ModuleID uint   `gorm:"column:module_id;not null;index" json:"module_id"`
	Title    string `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Position int    `gorm:"column:position;not null" json:"position"`
}

func (Lesson) TableName() string {
	return "lessons"
}
