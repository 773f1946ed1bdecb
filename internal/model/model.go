package model

import (
	"fmt"

	"github.com/intrpom/Kurzy-sub001/internal/model/authtoken"
	"github.com/intrpom/Kurzy-sub001/internal/model/course"
	"github.com/intrpom/Kurzy-sub001/internal/model/progress"
	"github.com/intrpom/Kurzy-sub001/internal/model/user"

	"gorm.io/gorm"
)

// GetModels lists every table this service reads or writes.
func GetModels() []any {
	return []any{
		&user.User{},
		&authtoken.AuthToken{},
		&course.Course{},
		&course.Module{},
		&course.Lesson{},
		&progress.LessonCompletion{},
		&progress.CourseProgress{},
	}
}

// InitTable auto-migrates the schema. Production schemas come from the goose
// migrations; this is for tests and local development.
func InitTable(db *gorm.DB) error {
	if err := db.AutoMigrate(GetModels()...); err != nil {
		return fmt.Errorf("auto-migrate tables: %w", err)
	}
	return nil
}
