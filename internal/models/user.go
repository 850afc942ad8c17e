package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the aggregate root. A row is created the first time a TikTok
// account links; the Discord identity is attached to it later.
type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DiscordID       *string   `gorm:"size:255;uniqueIndex" json:"discord_id"`
	DiscordUsername *string   `gorm:"size:255" json:"discord_username"`
	TikTokOpenID    *string   `gorm:"column:tiktok_open_id;size:255;uniqueIndex" json:"tiktok_open_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Tokens    []Token             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Config    *UserConfig         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Profile   *Profile            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Snapshots []AnalyticsSnapshot `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (User) TableName() string {
	return "users"
}
