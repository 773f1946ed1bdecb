package user

import (
	"context"
	"errors"

	userModel "github.com/intrpom/Kurzy-sub001/internal/model/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the credential store for user records.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertByEmail returns the user with email, creating it with the default
// role when missing. A non-empty name that differs from the stored one
// replaces it. Concurrent first logins for one email converge on one row.
func (r *UserRepository) UpsertByEmail(ctx context.Context, email, name string) (*userModel.User, error) {
	db := r.db.WithContext(ctx)

	candidate := &userModel.User{Email: email, Name: name, Role: userModel.RoleUser}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(candidate).Error; err != nil {
		return nil, err
	}

	var u userModel.User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}

	if name != "" && u.Name != name {
		if err := db.Model(&u).Update("name", name).Error; err != nil {
			return nil, err
		}
	}

	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*userModel.User, error) {
	var u userModel.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uint, role userModel.Role) (*userModel.User, error) {
	res := r.db.WithContext(ctx).Model(&userModel.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}
