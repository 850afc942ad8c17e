package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile mirrors the TikTok user info last fetched for a user. It is
// mutated in place; UpdatedAt moves on every write.
type Profile struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DisplayName    string    `gorm:"size:255" json:"display_name"`
	AvatarURL      string    `gorm:"type:text" json:"avatar_url"`
	FollowerCount  int64     `gorm:"not null;default:0" json:"follower_count"`
	FollowingCount int64     `gorm:"not null;default:0" json:"following_count"`
	LikesCount     int64     `gorm:"not null;default:0" json:"likes_count"`
	VideoCount     int64     `gorm:"not null;default:0" json:"video_count"`
	BioDescription string    `gorm:"type:text" json:"bio_description"`
	IsVerified     bool      `gorm:"not null;default:false" json:"is_verified"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Profile) TableName() string {
	return "tiktok_profiles"
}

// AnalyticsSnapshot is an append-only record of a user's counters at a
// point in time.
type AnalyticsSnapshot struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index:idx_snapshots_user_date,priority:1" json:"user_id"`
	FollowerCount int64     `gorm:"not null;default:0" json:"follower_count"`
	LikesCount    int64     `gorm:"not null;default:0" json:"likes_count"`
	VideoCount    int64     `gorm:"not null;default:0" json:"video_count"`
	SnapshotDate  time.Time `gorm:"not null;index:idx_snapshots_user_date,priority:2" json:"snapshot_date"`
}

func (s *AnalyticsSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SnapshotDate.IsZero() {
		s.SnapshotDate = time.Now().UTC()
	}
	return nil
}

func (AnalyticsSnapshot) TableName() string {
	return "analytics_snapshots"
}
