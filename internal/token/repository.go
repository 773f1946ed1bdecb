package token

import (
	"context"
	"errors"
	"time"

	"github.com/intrpom/Kurzy-sub001/internal/model/authtoken"
	userModel "github.com/intrpom/Kurzy-sub001/internal/model/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrEmailMismatch = errors.New("email does not match token owner")
)

// TokenRepository stores pending magic links.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts tok and, in the same transaction, deletes the owner's
// expired tokens and the oldest ones beyond keep.
func (r *TokenRepository) Create(ctx context.Context, tok *authtoken.AuthToken, keep int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tok).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ? AND expires_at < ?", tok.UserID, tok.CreatedAt).
			Delete(&authtoken.AuthToken{}).Error; err != nil {
			return err
		}

		var stale []string
		if err := tx.Model(&authtoken.AuthToken{}).
			Where("user_id = ?", tok.UserID).
			Order("created_at DESC").
			Offset(keep).
			Pluck("id", &stale).Error; err != nil {
			return err
		}
		if len(stale) == 0 {
			return nil
		}
		return tx.Where("id IN ?", stale).Delete(&authtoken.AuthToken{}).Error
	})
}

// Redeem consumes the token with tokenHash for email at now.
//
// Unknown hash: ErrTokenNotFound. Past expiry: the row is deleted and
// ErrTokenExpired returned. Owner email differs: ErrEmailMismatch and the
// row is kept. Otherwise the row is deleted and the owner returned.
func (r *TokenRepository) Redeem(ctx context.Context, tokenHash, email string, now time.Time) (*userModel.User, error) {
	var (
		owner   *userModel.User
		outcome error
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tok authtoken.AuthToken
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_hash = ?", tokenHash).
			First(&tok).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome = ErrTokenNotFound
			return nil
		}
		if err != nil {
			return err
		}

		if now.After(tok.ExpiresAt) {
			if err := tx.Delete(&tok).Error; err != nil {
				return err
			}
			outcome = ErrTokenExpired
			return nil
		}

		var u userModel.User
		if err := tx.First(&u, tok.UserID).Error; err != nil {
			return err
		}
		if u.Email != email {
			outcome = ErrEmailMismatch
			return nil
		}

		res := tx.Delete(&tok)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			outcome = ErrTokenNotFound
			return nil
		}
		owner = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}
	return owner, nil
}

// DeleteExpired removes every token past its expiry and reports how many.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&authtoken.AuthToken{})
	return res.RowsAffected, res.Error
}

// CountForUser reports how many tokens a user holds.
func (r *TokenRepository) CountForUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&authtoken.AuthToken{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
