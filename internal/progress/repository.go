package progress

import (
	"context"
	"errors"
	"time"

	"github.com/intrpom/Kurzy-sub001/internal/model/course"
	progressModel "github.com/intrpom/Kurzy-sub001/internal/model/progress"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrCourseNotFound = errors.New("course not found")
)

// ProgressRepository owns completion facts and is the only writer of
// course_progress rows.
type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Complete records that userID finished lessonID and refreshes the course
// aggregate, all in one transaction. A repeated call keeps the first
// completion time.
func (r *ProgressRepository) Complete(ctx context.Context, userID, lessonID uint, now time.Time) (*progressModel.LessonCompletion, *progressModel.CourseProgress, error) {
	var (
		fact progressModel.LessonCompletion
		agg  *progressModel.CourseProgress
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courseID, err := courseOfLesson(tx, lessonID)
		if err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).Create(&progressModel.LessonCompletion{
			UserID:      userID,
			LessonID:    lessonID,
			CompletedAt: now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&fact).Error; err != nil {
			return err
		}

		agg, err = recompute(tx, userID, courseID, now)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &fact, agg, nil
}

// Refresh recomputes and stores the aggregate for one course.
func (r *ProgressRepository) Refresh(ctx context.Context, userID, courseID uint, now time.Time) (*progressModel.CourseProgress, error) {
	var agg *progressModel.CourseProgress
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&course.Course{}).Where("id = ?", courseID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrCourseNotFound
		}

		var err error
		agg, err = recompute(tx, userID, courseID, now)
		return err
	})
	return agg, err
}

// GetCourseProgress returns the stored aggregate, or gorm.ErrRecordNotFound.
func (r *ProgressRepository) GetCourseProgress(ctx context.Context, userID, courseID uint) (*progressModel.CourseProgress, error) {
	var agg progressModel.CourseProgress
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&agg).Error; err != nil {
		return nil, err
	}
	return &agg, nil
}

// ListCourseProgress returns every stored aggregate for a user, most recent first.
func (r *ProgressRepository) ListCourseProgress(ctx context.Context, userID uint) ([]progressModel.CourseProgress, error) {
	var out []progressModel.CourseProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("course_id").
		Find(&out).Error
	return out, err
}

// ListCompletions returns a user's completion facts, optionally limited to
// one course.
func (r *ProgressRepository) ListCompletions(ctx context.Context, userID uint, courseID *uint) ([]progressModel.LessonCompletion, error) {
	q := r.db.WithContext(ctx).Model(&progressModel.LessonCompletion{}).
		Where("lesson_completions.user_id = ?", userID)
	if courseID != nil {
		q = q.Select("lesson_completions.*").
			Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
			Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
			Where("course_modules.course_id = ?", *courseID)
	}

	var out []progressModel.LessonCompletion
	err := q.Order("lesson_completions.lesson_id").Find(&out).Error
	return out, err
}

// LoadOutline reads the lessons of a course grouped by module in position order.
func (r *ProgressRepository) LoadOutline(ctx context.Context, courseID uint) (CourseOutline, error) {
	return loadOutline(r.db.WithContext(ctx), courseID)
}

func courseOfLesson(tx *gorm.DB, lessonID uint) (uint, error) {
	var m course.Module
	err := tx.Model(&course.Module{}).
		Select("course_modules.*").
		Joins("JOIN lessons ON lessons.module_id = course_modules.id").
		Where("lessons.id = ?", lessonID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrLessonNotFound
	}
	if err != nil {
		return 0, err
	}
	return m.CourseID, nil
}

// recompute is the single writer path for course_progress. The row is
// created if missing and locked before the facts are read, so concurrent
// completions in the same course apply one after another.
func recompute(tx *gorm.DB, userID, courseID uint, now time.Time) (*progressModel.CourseProgress, error) {
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(&progressModel.CourseProgress{
		UserID:    userID,
		CourseID:  courseID,
		UpdatedAt: now,
	}).Error; err != nil {
		return nil, err
	}

	var agg progressModel.CourseProgress
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&agg).Error; err != nil {
		return nil, err
	}

	outline, err := loadOutline(tx, courseID)
	if err != nil {
		return nil, err
	}
	facts, err := loadFacts(tx, userID, courseID)
	if err != nil {
		return nil, err
	}
	res := Recompute(outline, facts)

	agg.Progress = res.Progress
	agg.Completed = res.Completed
	agg.CompletedLessons = res.CompletedLessons
	agg.TotalLessons = res.TotalLessons
	agg.UpdatedAt = now
	if err := tx.Model(&progressModel.CourseProgress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(map[string]any{
			"progress":          agg.Progress,
			"completed":         agg.Completed,
			"completed_lessons": agg.CompletedLessons,
			"total_lessons":     agg.TotalLessons,
			"updated_at":        agg.UpdatedAt,
		}).Error; err != nil {
		return nil, err
	}
	return &agg, nil
}

func loadOutline(db *gorm.DB, courseID uint) (CourseOutline, error) {
	var modules []course.Module
	if err := db.Where("course_id = ?", courseID).Order("position").Order("id").Find(&modules).Error; err != nil {
		return CourseOutline{}, err
	}

	outline := CourseOutline{CourseID: courseID, Modules: make([]ModuleOutline, 0, len(modules))}
	if len(modules) == 0 {
		return outline, nil
	}

	ids := make([]uint, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	var lessons []course.Lesson
	if err := db.Where("module_id IN ?", ids).Order("position").Order("id").Find(&lessons).Error; err != nil {
		return CourseOutline{}, err
	}

	byModule := make(map[uint][]uint, len(modules))
	for _, l := range lessons {
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l.ID)
	}
	for _, m := range modules {
		outline.Modules = append(outline.Modules, ModuleOutline{ModuleID: m.ID, LessonIDs: byModule[m.ID]})
	}
	return outline, nil
}

func loadFacts(tx *gorm.DB, userID, courseID uint) ([]Fact, error) {
	var rows []progressModel.LessonCompletion
	err := tx.Model(&progressModel.LessonCompletion{}).
		Select("lesson_completions.lesson_id, lesson_completions.completed_at").
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id").
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("lesson_completions.user_id = ? AND course_modules.course_id = ?", userID, courseID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	facts := make([]Fact, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, Fact{LessonID: row.LessonID, CompletedAt: row.CompletedAt})
	}
	return facts, nil
}
