package testutils

import (
	"fmt"
	"time"

	"github.com/intrpom/Kurzy-sub001/internal/model/course"
	"github.com/intrpom/Kurzy-sub001/internal/model/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTestUser creates a user with a unique email.
func CreateTestUser(db *gorm.DB, opts ...UserOption) *user.User {
	uniqueID := uuid.NewString()

	testUser := &user.User{
		Email:     fmt.Sprintf("test_%s@example.com", uniqueID),
		Name:      "Test User",
		Role:      user.RoleUser,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(testUser)
	}

	if err := db.Create(testUser).Error; err != nil {
		panic(fmt.Sprintf("create test user: %v", err))
	}

	return testUser
}

type UserOption func(*user.User)

func WithEmail(email string) UserOption {
	return func(u *user.User) {
		u.Email = email
	}
}

func WithName(name string) UserOption {
	return func(u *user.User) {
		u.Name = name
	}
}

func WithRole(role user.Role) UserOption {
	return func(u *user.User) {
		u.Role = role
	}
}

// TestCourse is a course with its modules and lessons in position order.
type TestCourse struct {
	Course  *course.Course
	Modules []*course.Module
	Lessons [][]*course.Lesson // Lessons[i] belong to Modules[i]
}

// AllLessons flattens the lessons in module order.
func (tc *TestCourse) AllLessons() []*course.Lesson {
	var out []*course.Lesson
	for _, ls := range tc.Lessons {
		out = append(out, ls...)
	}
	return out
}

// CreateTestCourse creates a course with one module per entry in layout,
// each holding layout[i] lessons.
func CreateTestCourse(db *gorm.DB, layout ...int) *TestCourse {
	slug := "course-" + uuid.NewString()
	c := &course.Course{Slug: slug, Title: slug}
	if err := db.Create(c).Error; err != nil {
		panic(fmt.Sprintf("create test course: %v", err))
	}

	tc := &TestCourse{Course: c}
	for i, n := range layout {
		m := &course.Module{CourseID: c.ID, Title: fmt.Sprintf("Module %d", i+1), Position: i}
		if err := db.Create(m).Error; err != nil {
			panic(fmt.Sprintf("create test module: %v", err))
		}
		tc.Modules = append(tc.Modules, m)

		var lessons []*course.Lesson
		for j := 0; j < n; j++ {
			l := &course.Lesson{ModuleID: m.ID, Title: fmt.Sprintf("Lesson %d.%d", i+1, j+1), Position: j}
			if err := db.Create(l).Error; err != nil {
				panic(fmt.Sprintf("create test lesson: %v", err))
			}
			lessons = append(lessons, l)
		}
		tc.Lessons = append(tc.Lessons, lessons)
	}
	return tc
}
