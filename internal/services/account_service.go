package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/store"
	"github.com/google/uuid"
)

var (
	ErrNoToken        = errors.New("no tiktok token on file")
	ErrInvalidConfig  = errors.New("invalid config")
	ErrUserNotFound   = errors.New("user not found")
	ErrConfigNotFound = errors.New("config not found")
)

const (
	DefaultSnapshotLimit = 30
	MaxSnapshotLimit     = 365

	maxHashtags       = 30
	maxCaptionRunes   = 2200
	maxScheduledTimes = 24
)

// AccountService covers what a signed-in user can do with their own data.
type AccountService struct {
	store  *store.Store
	tiktok TikTokProvider
}

func NewAccountService(st *store.Store, tiktok TikTokProvider) *AccountService {
	return &AccountService{store: st, tiktok: tiktok}
}

func requireUser(st session.State) (uuid.UUID, error) {
	if !st.Authenticated() {
		return uuid.Nil, ErrNotAuthenticated
	}
	return *st.UserID, nil
}

// RefreshProfile re-fetches the TikTok profile with the latest token and
// records an analytics snapshot from the fetched counters.
func (s *AccountService) RefreshProfile(ctx context.Context, st session.State) (*models.Profile, error) {
	userID, err := requireUser(st)
	if err != nil {
		return nil, err
	}

	tok, err := s.store.LatestToken(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, err
	}

	profile, err := syncProfile(ctx, s.store, s.tiktok, userID, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	if err := s.store.InsertSnapshot(ctx, &models.AnalyticsSnapshot{
		UserID:        userID,
		FollowerCount: profile.FollowerCount,
		LikesCount:    profile.LikesCount,
		VideoCount:    profile.VideoCount,
		SnapshotDate:  time.Now().UTC(),
	}); err != nil {
		slog.Error("failed to record analytics snapshot", "user_id", userID.String(), "error", err.Error())
	}
	return profile, nil
}

// Analytics lists snapshots newest first. limit <= 0 selects the default.
func (s *AccountService) Analytics(ctx context.Context, st session.State, limit int) ([]models.AnalyticsSnapshot, error) {
	userID, err := requireUser(st)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}
	if limit > MaxSnapshotLimit {
		limit = MaxSnapshotLimit
	}
	return s.store.ListSnapshots(ctx, userID, limit)
}

func (s *AccountService) Config(ctx context.Context, st session.State) (*models.UserConfig, error) {
	userID, err := requireUser(st)
	if err != nil {
		return nil, err
	}
	cfg, err := s.store.FindConfig(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrConfigNotFound
	}
	return cfg, err
}

func (s *AccountService) UpdateConfig(ctx context.Context, st session.State, patch store.ConfigPatch) (*models.UserConfig, error) {
	userID, err := requireUser(st)
	if err != nil {
		return nil, err
	}
	if err := normalizeConfigPatch(&patch); err != nil {
		return nil, err
	}
	cfg, err := s.store.UpdateConfig(ctx, userID, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrConfigNotFound
	}
	return cfg, err
}

func (s *AccountService) UnlinkDiscord(ctx context.Context, st session.State) (*models.User, error) {
	userID, err := requireUser(st)
	if err != nil {
		return nil, err
	}
	user, err := s.store.ClearDiscordIdentity(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// DeleteAccount removes the user aggregate. The caller clears the session.
func (s *AccountService) DeleteAccount(ctx context.Context, st session.State) error {
	userID, err := requireUser(st)
	if err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	slog.Info("account deleted", "user_id", userID.String())
	return nil
}

func normalizeConfigPatch(p *store.ConfigPatch) error {
	if p.ScheduleType != nil {
		switch *p.ScheduleType {
		case models.ScheduleImmediate, models.ScheduleScheduled:
		default:
			return fmt.Errorf("%w: schedule_type must be %q or %q", ErrInvalidConfig, models.ScheduleImmediate, models.ScheduleScheduled)
		}
	}

	if p.ScheduledTimes != nil {
		if len(p.ScheduledTimes) > maxScheduledTimes {
			return fmt.Errorf("%w: at most %d scheduled_times", ErrInvalidConfig, maxScheduledTimes)
		}
		for _, t := range p.ScheduledTimes {
			if len(t) != 5 {
				return fmt.Errorf("%w: scheduled time %q must be HH:MM", ErrInvalidConfig, t)
			}
			if _, err := time.Parse("15:04", t); err != nil {
				return fmt.Errorf("%w: scheduled time %q must be HH:MM", ErrInvalidConfig, t)
			}
		}
	}

	if p.Hashtags != nil {
		if len(p.Hashtags) > maxHashtags {
			return fmt.Errorf("%w: at most %d hashtags", ErrInvalidConfig, maxHashtags)
		}
		tags := make([]string, 0, len(p.Hashtags))
		for _, tag := range p.Hashtags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if !strings.HasPrefix(tag, "#") {
				tag = "#" + tag
			}
			if strings.ContainsAny(tag[1:], " \t#") {
				return fmt.Errorf("%w: hashtag %q must be a single word", ErrInvalidConfig, tag)
			}
			tags = append(tags, tag)
		}
		p.Hashtags = tags
	}

	if p.CaptionTemplate != nil && utf8.RuneCountInString(*p.CaptionTemplate) > maxCaptionRunes {
		return fmt.Errorf("%w: caption_template exceeds %d characters", ErrInvalidConfig, maxCaptionRunes)
	}
	return nil
}
