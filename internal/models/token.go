package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Token is one TikTok grant. Rows are only ever inserted, so a user's
// history of grants accumulates.
type Token struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	Scope        string    `gorm:"type:text" json:"scope"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (t *Token) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (Token) TableName() string {
	return "tiktok_tokens"
}
