package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/oauth"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/store"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRefreshProfileAppendsSnapshot(t *testing.T) {
	f := newLinkFixture(t)
	st := f.link(t)
	account := NewAccountService(store.New(f.db), f.tiktok)

	f.tiktok.user.FollowerCount = 150
	profile, err := account.RefreshProfile(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, int64(150), profile.FollowerCount)

	f.tiktok.user.FollowerCount = 175
	_, err = account.RefreshProfile(context.Background(), st)
	require.NoError(t, err)

	snaps, err := account.Analytics(context.Background(), st, 0)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(175), snaps[0].FollowerCount)
	assert.Equal(t, int64(1), f.count(t, &models.Profile{}))
}

func TestRefreshProfileErrors(t *testing.T) {
	f := newLinkFixture(t)
	account := NewAccountService(store.New(f.db), f.tiktok)

	_, err := account.RefreshProfile(context.Background(), session.State{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	st := f.link(t)
	f.tiktok.userErr = oauth.ErrUpstreamTimeout
	_, err = account.RefreshProfile(context.Background(), st)
	assert.ErrorIs(t, err, oauth.ErrUpstreamTimeout)
	assert.Zero(t, f.count(t, &models.AnalyticsSnapshot{}))

	require.NoError(t, f.db.Where("1 = 1").Delete(&models.Token{}).Error)
	_, err = account.RefreshProfile(context.Background(), st)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestAccountOperationsRequireSessionWithoutStoreAccess(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	account := NewAccountService(store.New(db), newFakeTikTok("x"))
	ctx := context.Background()
	anon := session.State{}

	_, err := account.RefreshProfile(ctx, anon)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = account.Analytics(ctx, anon, 10)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = account.Config(ctx, anon)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = account.UpdateConfig(ctx, anon, store.ConfigPatch{})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = account.UnlinkDiscord(ctx, anon)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, account.DeleteAccount(ctx, anon), ErrNotAuthenticated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateConfig(t *testing.T) {
	f := newLinkFixture(t)
	st := f.link(t)
	account := NewAccountService(store.New(f.db), f.tiktok)
	ctx := context.Background()

	enabled := true
	cfg, err := account.UpdateConfig(ctx, st, store.ConfigPatch{
		Hashtags:       []string{"fyp", " #dance ", ""},
		PostingEnabled: &enabled,
		ScheduleType:   strPtr("scheduled"),
		ScheduledTimes: []string{"09:00", "18:30"},
		RapidAPIKey:    strPtr("secret"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"#fyp", "#dance"}, []string(cfg.Hashtags))
	assert.True(t, cfg.PostingEnabled)
	assert.Equal(t, "scheduled", cfg.ScheduleType)
	assert.Equal(t, models.DefaultCaptionTemplate, cfg.CaptionTemplate)

	loaded, err := account.Config(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, "secret", loaded.RapidAPIKey)
	assert.Equal(t, []string{"09:00", "18:30"}, []string(loaded.ScheduledTimes))
}

func TestUpdateConfigValidation(t *testing.T) {
	f := newLinkFixture(t)
	st := f.link(t)
	account := NewAccountService(store.New(f.db), f.tiktok)

	cases := map[string]store.ConfigPatch{
		"schedule type":  {ScheduleType: strPtr("weekly")},
		"time format":    {ScheduledTimes: []string{"9:00"}},
		"time range":     {ScheduledTimes: []string{"25:00"}},
		"spaced hashtag": {Hashtags: []string{"two words"}},
	}
	for name, patch := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := account.UpdateConfig(context.Background(), st, patch)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	cfg, err := account.Config(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleImmediate, cfg.ScheduleType)
}

func TestUnlinkDiscord(t *testing.T) {
	f := newLinkFixture(t)
	st := f.link(t)
	_, st, err := f.svc.StartDiscord(st)
	require.NoError(t, err)
	_, st, err = f.svc.CompleteDiscord(context.Background(), st, CallbackParams{State: st.DiscordOAuthState, Code: "c"})
	require.NoError(t, err)

	account := NewAccountService(store.New(f.db), f.tiktok)
	user, err := account.UnlinkDiscord(context.Background(), st)
	require.NoError(t, err)

	assert.Nil(t, user.DiscordID)
	assert.Nil(t, user.DiscordUsername)
	assert.Equal(t, *st.UserID, user.ID)
}

func TestDeleteAccount(t *testing.T) {
	f := newLinkFixture(t)
	st := f.link(t)
	account := NewAccountService(store.New(f.db), f.tiktok)
	_, err := account.RefreshProfile(context.Background(), st)
	require.NoError(t, err)

	require.NoError(t, account.DeleteAccount(context.Background(), st))

	for _, m := range []interface{}{
		&models.User{}, &models.Token{}, &models.UserConfig{}, &models.Profile{}, &models.AnalyticsSnapshot{},
	} {
		assert.Zero(t, f.count(t, m))
	}
	assert.ErrorIs(t, account.DeleteAccount(context.Background(), st), ErrUserNotFound)
}
