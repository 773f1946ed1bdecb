package progress

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/intrpom/Kurzy-sub001/internal/logging"
	"github.com/intrpom/Kurzy-sub001/internal/metrics"
	progressModel "github.com/intrpom/Kurzy-sub001/internal/model/progress"
	"github.com/intrpom/Kurzy-sub001/packages/response"

	"gorm.io/gorm"
)

type ProgressService struct {
	repo   *ProgressRepository
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*ProgressService)

func WithClock(now func() time.Time) Option {
	return func(s *ProgressService) {
		s.now = now
	}
}

func NewProgressService(repo *ProgressRepository, opts ...Option) *ProgressService {
	s := &ProgressService{
		repo:   repo,
		now:    time.Now,
		logger: logging.For("progress"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkComplete records a lesson completion and returns the refreshed course
// aggregate. Nothing is kept when any step fails.
func (s *ProgressService) MarkComplete(ctx context.Context, userID, lessonID uint) (*MarkCompleteResponse, *response.BusinessError) {
	fact, agg, err := s.repo.Complete(ctx, userID, lessonID, s.now().UTC())
	if errors.Is(err, ErrLessonNotFound) {
		return nil, notFound("Lesson not found")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "mark lesson complete failed", "user_id", userID, "lesson_id", lessonID, "error", err)
		return nil, storageError(err)
	}

	metrics.LessonCompletions.Inc()
	s.logger.InfoContext(ctx, "lesson completed",
		"user_id", userID, "lesson_id", lessonID, "course_id", agg.CourseID, "progress", agg.Progress)

	completedAt := fact.CompletedAt
	return &MarkCompleteResponse{
		Success: true,
		LessonProgress: LessonProgress{
			LessonID:     lessonID,
			LessonStatus: LessonStatus{Completed: true, CompletedAt: &completedAt},
		},
		CourseProgress: summary(agg),
	}, nil
}

// ListLessonProgress maps lesson id to completion status, for one course
// when courseID is set.
func (s *ProgressService) ListLessonProgress(ctx context.Context, userID uint, courseID *uint) (map[uint]LessonStatus, *response.BusinessError) {
	out := map[uint]LessonStatus{}

	if courseID != nil {
		outline, err := s.repo.LoadOutline(ctx, *courseID)
		if err != nil {
			return nil, storageError(err)
		}
		for _, m := range outline.Modules {
			for _, id := range m.LessonIDs {
				out[id] = LessonStatus{}
			}
		}
	}

	facts, err := s.repo.ListCompletions(ctx, userID, courseID)
	if err != nil {
		s.logger.ErrorContext(ctx, "list completions failed", "user_id", userID, "error", err)
		return nil, storageError(err)
	}
	for _, f := range facts {
		at := f.CompletedAt
		out[f.LessonID] = LessonStatus{Completed: true, CompletedAt: &at}
	}
	return out, nil
}

// CourseProgress returns the stored aggregate, computing it first when the
// user has none yet for this course.
func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID uint) (*CourseSummary, *response.BusinessError) {
	agg, err := s.repo.GetCourseProgress(ctx, userID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		agg, err = s.repo.Refresh(ctx, userID, courseID, s.now().UTC())
	}
	if errors.Is(err, ErrCourseNotFound) {
		return nil, notFound("Course not found")
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "load course progress failed", "user_id", userID, "course_id", courseID, "error", err)
		return nil, storageError(err)
	}

	sum := summary(agg)
	return &sum, nil
}

// ListCourseProgress lists the user's stored aggregates.
func (s *ProgressService) ListCourseProgress(ctx context.Context, userID uint) ([]CourseSummary, *response.BusinessError) {
	rows, err := s.repo.ListCourseProgress(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "list course progress failed", "user_id", userID, "error", err)
		return nil, storageError(err)
	}

	out := make([]CourseSummary, 0, len(rows))
	for i := range rows {
		out = append(out, summary(&rows[i]))
	}
	return out, nil
}

func summary(agg *progressModel.CourseProgress) CourseSummary {
	return CourseSummary{
		CourseID:         agg.CourseID,
		Progress:         agg.Progress,
		Completed:        agg.Completed,
		CompletedLessons: agg.CompletedLessons,
		TotalLessons:     agg.TotalLessons,
		UpdatedAt:        agg.UpdatedAt,
	}
}

func notFound(msg string) *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.NotFound),
		response.WithErrorMessage(msg),
		response.WithHTTPStatus(http.StatusNotFound),
	)
}

func storageError(err error) *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.StorageError),
		response.WithErrorMessage("Something went wrong, please try again"),
		response.WithHTTPStatus(http.StatusInternalServerError),
		response.WithError(err),
	)
}
