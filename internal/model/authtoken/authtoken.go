package authtoken

import "time"

// AuthToken is a pending magic link. Only the SHA-256 of the token is stored.
type AuthToken struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	TokenHash string    `gorm:"column:token_hash;type:char(64);not null;uniqueIndex" json:"-"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (AuthToken) TableName() string {
	return "auth_tokens"
}
