package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/intrpom/Kurzy-sub001/internal/logging"
	userModel "github.com/intrpom/Kurzy-sub001/internal/model/user"
	"github.com/intrpom/Kurzy-sub001/internal/progress"
	"github.com/intrpom/Kurzy-sub001/internal/user"
	"github.com/intrpom/Kurzy-sub001/packages/response"
)

// UserStore is the part of the user repository the admin surface needs.
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*userModel.User, error)
	UpdateRole(ctx context.Context, id uint, role userModel.Role) (*userModel.User, error)
}

type AdminService struct {
	users    UserStore
	progress *progress.ProgressService
	logger   *slog.Logger
}

func NewAdminService(users UserStore, progress *progress.ProgressService) *AdminService {
	return &AdminService{users: users, progress: progress, logger: logging.For("admin")}
}

func (s *AdminService) UserProgress(ctx context.Context, userID uint) (*UserProgressResponse, *response.BusinessError) {
	u, bizErr := s.lookup(ctx, userID)
	if bizErr != nil {
		return nil, bizErr
	}
	courses, bizErr := s.progress.ListCourseProgress(ctx, userID)
	if bizErr != nil {
		return nil, bizErr
	}
	return &UserProgressResponse{Success: true, User: toSummary(u), Courses: courses}, nil
}

// SetRole changes a user's role. actorID is logged for audit.
func (s *AdminService) SetRole(ctx context.Context, actorID, userID uint, role string) (*UserResponse, *response.BusinessError) {
	r := userModel.Role(role)
	if !r.Valid() {
		return nil, response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage("role must be user or admin"),
			response.WithHTTPStatus(http.StatusBadRequest),
		)
	}

	u, err := s.users.UpdateRole(ctx, userID, r)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, userNotFound()
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "update role failed", "user_id", userID, "error", err)
		return nil, storageError(err)
	}

	s.logger.InfoContext(ctx, "role changed", "actor_id", actorID, "user_id", userID, "role", r)
	return &UserResponse{Success: true, User: toSummary(u)}, nil
}

func (s *AdminService) lookup(ctx context.Context, userID uint) (*userModel.User, *response.BusinessError) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, userNotFound()
	}
	if err != nil {
		return nil, storageError(err)
	}
	return u, nil
}

func toSummary(u *userModel.User) UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)}
}

func userNotFound() *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.NotFound),
		response.WithErrorMessage("User not found"),
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
