package progress

import (
	"net/http"
	"strconv"

	"github.com/intrpom/Kurzy-sub001/internal/dto"
	"github.com/intrpom/Kurzy-sub001/internal/middleware"
	"github.com/intrpom/Kurzy-sub001/packages/response"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	service *ProgressService
}

func NewProgressHandler(service *ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// MarkComplete marks a lesson done
// @Summary Complete a lesson
// @Description Records the completion (idempotent) and returns the recomputed course progress
// @Tags progress
// @Accept json
// @Produce json
// @Param request body MarkCompleteRequest true "lesson to mark complete"
// @Success 200 {object} MarkCompleteResponse
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /progress [post]
func (h *ProgressHandler) MarkComplete(c *gin.Context) {
	var req MarkCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.ErrorResponse(c, invalidParameter("lessonId is required", err))
		return
	}

	id, _ := middleware.CurrentIdentity(c)
	res, bizErr := h.service.MarkComplete(c.Request.Context(), id.ID, req.LessonID)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, res)
}

// ListLessons returns per-lesson completion
// @Summary Lesson progress
// @Description Map of lesson id to completion status, optionally for one course
// @Tags progress
// @Produce json
// @Param courseId query int false "course id"
// @Success 200 {object} LessonProgressResponse
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /progress [get]
func (h *ProgressHandler) ListLessons(c *gin.Context) {
	var courseID *uint
	if raw := c.Query("courseId"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			dto.ErrorResponse(c, invalidParameter("courseId must be a positive integer", err))
			return
		}
		courseID = &id
	}

	id, _ := middleware.CurrentIdentity(c)
	lessons, bizErr := h.service.ListLessonProgress(c.Request.Context(), id.ID, courseID)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, LessonProgressResponse{Success: true, Lessons: lessons})
}

// GetCourse returns one course aggregate
// @Summary Course progress
// @Tags progress
// @Produce json
// @Param courseId path int true "course id"
// @Success 200 {object} CourseProgressResponse
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /progress/courses/{courseId} [get]
func (h *ProgressHandler) GetCourse(c *gin.Context) {
	courseID, err := parseID(c.Param("courseId"))
	if err != nil {
		dto.ErrorResponse(c, invalidParameter("courseId must be a positive integer", err))
		return
	}

	id, _ := middleware.CurrentIdentity(c)
	sum, bizErr := h.service.CourseProgress(c.Request.Context(), id.ID, courseID)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, CourseProgressResponse{Success: true, CourseProgress: *sum})
}

// Dashboard lists the signed-in user's courses for the /my/progress page.
func (h *ProgressHandler) Dashboard(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	courses, bizErr := h.service.ListCourseProgress(c.Request.Context(), id.ID)
	if bizErr != nil {
		dto.ErrorResponse(c, bizErr)
		return
	}
	dto.SuccessResponse(c, CourseListResponse{Success: true, Courses: courses})
}

func parseID(raw string) (uint, error) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, strconv.ErrRange
	}
	return uint(n), nil
}

func invalidParameter(msg string, err error) *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.InvalidParameter),
		response.WithErrorMessage(msg),
		response.WithHTTPStatus(http.StatusBadRequest),
		response.WithError(err),
	)
}
