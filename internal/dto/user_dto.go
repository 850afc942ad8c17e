package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/models"
	"github.com/google/uuid"
)

type ProfileResponse struct {
	DisplayName     string  `json:"display_name"`
	Avatar          string  `json:"avatar"`
	FollowerCount   int64   `json:"follower_count"`
	FollowingCount  int64   `json:"following_count"`
	LikesCount      int64   `json:"likes_count"`
	VideoCount      int64   `json:"video_count"`
	BioDescription  string  `json:"bio_description"`
	IsVerified      bool    `json:"is_verified"`
	DiscordUsername *string `json:"discord_username"`
}

// NewProfileResponse builds the profile view. user may be nil.
func NewProfileResponse(p *models.Profile, user *models.User) ProfileResponse {
	resp := ProfileResponse{
		DisplayName:    p.DisplayName,
		Avatar:         p.AvatarURL,
		FollowerCount:  p.FollowerCount,
		FollowingCount: p.FollowingCount,
		LikesCount:     p.LikesCount,
		VideoCount:     p.VideoCount,
		BioDescription: p.BioDescription,
		IsVerified:     p.IsVerified,
	}
	if user != nil {
		resp.DiscordUsername = user.DiscordUsername
	}
	return resp
}

type UserResponse struct {
	ID              uuid.UUID `json:"id"`
	TikTokOpenID    *string   `json:"tiktok_open_id"`
	DiscordID       *string   `json:"discord_id"`
	DiscordUsername *string   `json:"discord_username"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		TikTokOpenID:    u.TikTokOpenID,
		DiscordID:       u.DiscordID,
		DiscordUsername: u.DiscordUsername,
	}
}

type SnapshotResponse struct {
	FollowerCount int64     `json:"follower_count"`
	LikesCount    int64     `json:"likes_count"`
	VideoCount    int64     `json:"video_count"`
	SnapshotDate  time.Time `json:"snapshot_date"`
}

type AnalyticsResponse struct {
	Snapshots []SnapshotResponse `json:"snapshots"`
}

func NewAnalyticsResponse(snaps []models.AnalyticsSnapshot) AnalyticsResponse {
	resp := AnalyticsResponse{Snapshots: make([]SnapshotResponse, 0, len(snaps))}
	for _, s := range snaps {
		resp.Snapshots = append(resp.Snapshots, SnapshotResponse{
			FollowerCount: s.FollowerCount,
			LikesCount:    s.LikesCount,
			VideoCount:    s.VideoCount,
			SnapshotDate:  s.SnapshotDate,
		})
	}
	return resp
}

// ConfigResponse never includes the RapidAPI key itself.
type ConfigResponse struct {
	DouyinSecUID    string    `json:"douyin_sec_uid"`
	HasRapidAPIKey  bool      `json:"has_rapid_api_key"`
	Hashtags        []string  `json:"hashtags"`
	CaptionTemplate string    `json:"caption_template"`
	PostingEnabled  bool      `json:"posting_enabled"`
	ScheduleType    string    `json:"schedule_type"`
	ScheduledTimes  []string  `json:"scheduled_times"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewConfigResponse(c *models.UserConfig) ConfigResponse {
	resp := ConfigResponse{
		DouyinSecUID:    c.DouyinSecUID,
		HasRapidAPIKey:  c.RapidAPIKey != "",
		Hashtags:        []string(c.Hashtags),
		CaptionTemplate: c.CaptionTemplate,
		PostingEnabled:  c.PostingEnabled,
		ScheduleType:    c.ScheduleType,
		ScheduledTimes:  []string(c.ScheduledTimes),
		UpdatedAt:       c.UpdatedAt,
	}
	if resp.Hashtags == nil {
		resp.Hashtags = []string{}
	}
	if resp.ScheduledTimes == nil {
		resp.ScheduledTimes = []string{}
	}
	return resp
}

// UpdateConfigRequest is a partial update; omitted fields are unchanged.
type UpdateConfigRequest struct {
	DouyinSecUID    *string  `json:"douyin_sec_uid"`
	RapidAPIKey     *string  `json:"rapid_api_key"`
	Hashtags        []string `json:"hashtags"`
	CaptionTemplate *string  `json:"caption_template"`
	PostingEnabled  *bool    `json:"posting_enabled"`
	ScheduleType    *string  `json:"schedule_type"`
	ScheduledTimes  []string `json:"scheduled_times"`
}
