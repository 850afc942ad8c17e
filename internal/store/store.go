package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing row")
)

// Store is the persistence boundary for the linking workflow. All methods
// take and return plain model values.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a store bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) FindOrCreateUserByTikTokOpenID(ctx context.Context, openID string) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("tiktok_open_id = ?", openID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// ON CONFLICT DO NOTHING keeps a concurrent insert of the same open_id
	// from aborting the surrounding postgres transaction.
	user = models.User{TikTokOpenID: &openID}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tiktok_open_id"}},
		DoNothing: true,
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	var stored models.User
	if err := db.Where("tiktok_open_id = ?", openID).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &stored, nil
}

func (s *Store) InsertToken(ctx context.Context, token *models.Token) error {
	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

// UpsertConfigDefaults creates the default config for userID unless one
// already exists, and returns the stored row.
func (s *Store) UpsertConfigDefaults(ctx context.Context, userID uuid.UUID) (*models.UserConfig, error) {
	db := s.db.WithContext(ctx)

	cfg := models.NewDefaultUserConfig(userID)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&cfg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert config: %w", err)
	}
	return s.FindConfig(ctx, userID)
}

// ProfileData is the provider-side view of a profile.
type ProfileData struct {
	DisplayName    string
	AvatarURL      string
	FollowerCount  int64
	FollowingCount int64
	LikesCount     int64
	VideoCount     int64
	BioDescription string
	IsVerified     bool
}

// UpsertProfile loads the profile of userID (or starts a new one), applies
// data and persists it. UpdatedAt is always moved forward.
func (s *Store) UpsertProfile(ctx context.Context, userID uuid.UUID, data ProfileData) (*models.Profile, error) {
	db := s.db.WithContext(ctx)

	var profile models.Profile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile.UserID = userID
	profile.DisplayName = data.DisplayName
	profile.AvatarURL = data.AvatarURL
	profile.FollowerCount = data.FollowerCount
	profile.FollowingCount = data.FollowingCount
	profile.LikesCount = data.LikesCount
	profile.VideoCount = data.VideoCount
	profile.BioDescription = data.BioDescription
	profile.IsVerified = data.IsVerified
	profile.UpdatedAt = time.Now().UTC()

	if err := db.Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return &profile, nil
}

// UpdateUserDiscordIdentity writes the Discord identity onto the existing
// user row. A Discord account already attached to another user is a conflict.
func (s *Store) UpdateUserDiscordIdentity(ctx context.Context, userID uuid.UUID, discordID, username string) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var owner models.User
	err := db.Where("discord_id = ? AND id <> ?", discordID, userID).First(&owner).Error
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check discord owner: %w", err)
	}

	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"discord_id":       discordID,
		"discord_username": username,
	})
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		// Another user took discord_id between the check and the update.
		return nil, ErrConflict
	}
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update discord identity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindUser(ctx, userID)
}

func (s *Store) ClearDiscordIdentity(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"discord_id":       nil,
		"discord_username": nil,
	})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to clear discord identity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindUser(ctx, userID)
}

func (s *Store) FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.first(ctx, &user, "id = ?", userID); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) FindProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.first(ctx, &profile, "user_id = ?", userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Store) FindConfig(ctx context.Context, userID uuid.UUID) (*models.UserConfig, error) {
	var cfg models.UserConfig
	if err := s.first(ctx, &cfg, "user_id = ?", userID); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LatestToken returns the most recently inserted token of userID.
func (s *Store) LatestToken(ctx context.Context, userID uuid.UUID) (*models.Token, error) {
	var token models.Token
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&token).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &token, nil
}

// ConfigPatch carries the fields of a partial config update; nil fields are
// left untouched.
type ConfigPatch struct {
	DouyinSecUID    *string
	RapidAPIKey     *string
	Hashtags        []string
	CaptionTemplate *string
	PostingEnabled  *bool
	ScheduleType    *string
	ScheduledTimes  []string
}

func (s *Store) UpdateConfig(ctx context.Context, userID uuid.UUID, patch ConfigPatch) (*models.UserConfig, error) {
	var out *models.UserConfig
	err := s.Transaction(ctx, func(tx *Store) error {
		cfg, err := tx.FindConfig(ctx, userID)
		if err != nil {
			return err
		}
		if patch.DouyinSecUID != nil {
			cfg.DouyinSecUID = *patch.DouyinSecUID
		}
		if patch.RapidAPIKey != nil {
			cfg.RapidAPIKey = *patch.RapidAPIKey
		}
		if patch.Hashtags != nil {
			cfg.Hashtags = datatypes.JSONSlice[string](patch.Hashtags)
		}
		if patch.CaptionTemplate != nil {
			cfg.CaptionTemplate = *patch.CaptionTemplate
		}
		if patch.PostingEnabled != nil {
			cfg.PostingEnabled = *patch.PostingEnabled
		}
		if patch.ScheduleType != nil {
			cfg.ScheduleType = *patch.ScheduleType
		}
		if patch.ScheduledTimes != nil {
			cfg.ScheduledTimes = datatypes.JSONSlice[string](patch.ScheduledTimes)
		}
		if err := tx.db.Save(cfg).Error; err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		out = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteUser removes the user and every row it owns.
func (s *Store) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.Transaction(ctx, func(tx *Store) error {
		for _, owned := range []interface{}{
			&models.Token{}, &models.UserConfig{}, &models.Profile{}, &models.AnalyticsSnapshot{},
		} {
			if err := tx.db.Where("user_id = ?", userID).Delete(owned).Error; err != nil {
				return fmt.Errorf("failed to delete owned rows: %w", err)
			}
		}
		result := tx.db.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) InsertSnapshot(ctx context.Context, snapshot *models.AnalyticsSnapshot) error {
	if err := s.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns up to limit snapshots of userID, newest first.
func (s *Store) ListSnapshots(ctx context.Context, userID uuid.UUID, limit int) ([]models.AnalyticsSnapshot, error) {
	var snapshots []models.AnalyticsSnapshot
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("snapshot_date DESC").
		Limit(limit).
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snapshots, nil
}

func (s *Store) first(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := s.db.WithContext(ctx).Where(query, args...).First(dest).Error; err != nil {
		return notFound(err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
