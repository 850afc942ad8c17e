package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ScheduleImmediate = "immediate"
	ScheduleScheduled = "scheduled"

	DefaultCaptionTemplate = "Check out this video! {hashtags}"
)

// UserConfig holds the reposting settings of a user. Exactly one per user.
type UserConfig struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DouyinSecUID    string                      `gorm:"size:255" json:"douyin_sec_uid"`
	RapidAPIKey     string                      `gorm:"type:text" json:"-"`
	Hashtags        datatypes.JSONSlice[string] `json:"hashtags"`
	CaptionTemplate string                      `gorm:"type:text" json:"caption_template"`
	PostingEnabled  bool                        `gorm:"not null;default:false" json:"posting_enabled"`
	ScheduleType    string                      `gorm:"size:50;not null;default:'immediate'" json:"schedule_type"`
	ScheduledTimes  datatypes.JSONSlice[string] `json:"scheduled_times"`
	CreatedAt       time.Time                   `json:"created_at"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

// NewDefaultUserConfig returns the config every user starts with.
func NewDefaultUserConfig(userID uuid.UUID) UserConfig {
	return UserConfig{
		UserID:          userID,
		Hashtags:        datatypes.JSONSlice[string]{},
		CaptionTemplate: DefaultCaptionTemplate,
		PostingEnabled:  false,
		ScheduleType:    ScheduleImmediate,
		ScheduledTimes:  datatypes.JSONSlice[string]{},
	}
}

func (c *UserConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (UserConfig) TableName() string {
	return "user_configs"
}
