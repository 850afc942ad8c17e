package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/oauth"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/store"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidState         = errors.New("invalid state")
	ErrMissingVerifier      = errors.New("missing code verifier")
	ErrMissingCode          = errors.New("missing authorization code")
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrDiscordAlreadyLinked = errors.New("discord account already linked to another user")
)

type TikTokProvider interface {
	AuthorizeURL(state, challenge string) string
	ExchangeCode(ctx context.Context, code, verifier string) (*oauth.TikTokToken, error)
	FetchUserInfo(ctx context.Context, accessToken string) (*oauth.TikTokUser, error)
}

type DiscordProvider interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	FetchUserInfo(ctx context.Context, accessToken string) (*oauth.DiscordUser, error)
}

// CallbackParams are the query parameters of a provider redirect.
type CallbackParams struct {
	State            string
	Code             string
	Error            string
	ErrorDescription string
}

// LinkResult describes a completed TikTok link. Profile is nil when the
// best-effort profile fetch failed.
type LinkResult struct {
	User    *models.User
	Profile *models.Profile
}

// ProfileView is a profile together with the owning user.
type ProfileView struct {
	Profile *models.Profile
	User    *models.User
}

// LinkService drives the TikTok and Discord OAuth round trips. Every
// operation takes the caller's session state and returns the state to store;
// on error the returned state is the input unchanged.
type LinkService struct {
	store   *store.Store
	tiktok  TikTokProvider
	discord DiscordProvider
	now     func() time.Time
}

func NewLinkService(st *store.Store, tiktok TikTokProvider, discord DiscordProvider) *LinkService {
	return &LinkService{
		store:   st,
		tiktok:  tiktok,
		discord: discord,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// StartTikTok begins a TikTok authorization with a fresh state and PKCE pair.
func (s *LinkService) StartTikTok(st session.State) (string, session.State) {
	state := oauth.GenerateState()
	verifier, challenge := oauth.GeneratePKCE()

	st.OAuthState = state
	st.CodeVerifier = verifier
	return s.tiktok.AuthorizeURL(state, challenge), st
}

// CompleteTikTokCallback finishes the redirect flow. State and verifier are
// checked before anything is written or sent upstream.
func (s *LinkService) CompleteTikTokCallback(ctx context.Context, st session.State, p CallbackParams) (*LinkResult, session.State, error) {
	if p.Error != "" {
		return nil, st, &oauth.ProviderDeniedError{Provider: oauth.ProviderTikTok, Code: p.Error, Description: p.ErrorDescription}
	}
	if !stateMatches(st.OAuthState, p.State) {
		return nil, st, ErrInvalidState
	}
	if st.CodeVerifier == "" {
		return nil, st, ErrMissingVerifier
	}
	if p.Code == "" {
		return nil, st, ErrMissingCode
	}
	return s.completeTikTok(ctx, st, p.Code, st.CodeVerifier)
}

// CompleteTikTokManual exchanges a code obtained out of band. The stored
// verifier is attached when present; its absence is not an error.
func (s *LinkService) CompleteTikTokManual(ctx context.Context, st session.State, code string) (*LinkResult, session.State, error) {
	if code == "" {
		return nil, st, ErrMissingCode
	}
	return s.completeTikTok(ctx, st, code, st.CodeVerifier)
}

func (s *LinkService) completeTikTok(ctx context.Context, st session.State, code, verifier string) (*LinkResult, session.State, error) {
	tok, err := s.tiktok.ExchangeCode(ctx, code, verifier)
	if err != nil {
		metrics.IncLink(oauth.ProviderTikTok, metrics.OutcomeError)
		return nil, st, err
	}

	var user *models.User
	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		u, err := tx.FindOrCreateUserByTikTokOpenID(ctx, tok.OpenID)
		if err != nil {
			return err
		}
		if err := tx.InsertToken(ctx, &models.Token{
			UserID:       u.ID,
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			ExpiresAt:    tok.ExpiresAt(s.now()),
			Scope:        tok.Scope,
		}); err != nil {
			return err
		}
		if _, err := tx.UpsertConfigDefaults(ctx, u.ID); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		metrics.IncLink(oauth.ProviderTikTok, metrics.OutcomeError)
		return nil, st, fmt.Errorf("failed to persist tiktok link: %w", err)
	}

	result := &LinkResult{User: user}
	profile, err := syncProfile(ctx, s.store, s.tiktok, user.ID, tok.AccessToken)
	if err != nil {
		metrics.ProfileFetchFailures.Inc()
		slog.Warn("profile fetch after tiktok link failed",
			"user_id", user.ID.String(),
			"provider", oauth.ProviderTikTok,
			"error", err.Error(),
		)
	} else {
		result.Profile = profile
	}

	id := user.ID
	st.UserID = &id
	st.TikTokOpenID = tok.OpenID
	st.OAuthState = ""
	st.CodeVerifier = ""

	metrics.IncLink(oauth.ProviderTikTok, metrics.OutcomeSuccess)
	slog.Info("tiktok account linked", "user_id", id.String(), "profile", result.Profile != nil)
	return result, st, nil
}

// StartDiscord begins linking a Discord identity onto the signed-in user.
func (s *LinkService) StartDiscord(st session.State) (string, session.State, error) {
	if !st.Authenticated() {
		return "", st, ErrNotAuthenticated
	}
	state := oauth.GenerateState()
	st.DiscordOAuthState = state
	return s.discord.AuthorizeURL(state), st, nil
}

func (s *LinkService) CompleteDiscord(ctx context.Context, st session.State, p CallbackParams) (*models.User, session.State, error) {
	if p.Error != "" {
		return nil, st, &oauth.ProviderDeniedError{Provider: oauth.ProviderDiscord, Code: p.Error, Description: p.ErrorDescription}
	}
	if !stateMatches(st.DiscordOAuthState, p.State) {
		return nil, st, ErrInvalidState
	}
	if !st.Authenticated() {
		return nil, st, ErrNotAuthenticated
	}
	if p.Code == "" {
		return nil, st, ErrMissingCode
	}

	tok, err := s.discord.ExchangeCode(ctx, p.Code)
	if err != nil {
		metrics.IncLink(oauth.ProviderDiscord, metrics.OutcomeError)
		return nil, st, err
	}
	identity, err := s.discord.FetchUserInfo(ctx, tok.AccessToken)
	if err != nil {
		metrics.IncLink(oauth.ProviderDiscord, metrics.OutcomeError)
		return nil, st, err
	}

	user, err := s.store.UpdateUserDiscordIdentity(ctx, *st.UserID, identity.ID, identity.Username)
	switch {
	case errors.Is(err, store.ErrConflict):
		metrics.IncLink(oauth.ProviderDiscord, metrics.OutcomeError)
		return nil, st, ErrDiscordAlreadyLinked
	case errors.Is(err, store.ErrNotFound):
		return nil, st, ErrNotAuthenticated
	case err != nil:
		return nil, st, err
	}

	st.DiscordOAuthState = ""
	metrics.IncLink(oauth.ProviderDiscord, metrics.OutcomeSuccess)
	slog.Info("discord account linked", "user_id", user.ID.String(), "discord_id", identity.ID)
	return user, st, nil
}

// Profile returns the stored TikTok profile of the signed-in user.
func (s *LinkService) Profile(ctx context.Context, st session.State) (*ProfileView, error) {
	if !st.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	profile, err := s.store.FindProfile(ctx, *st.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	view := &ProfileView{Profile: profile}
	user, err := s.store.FindUser(ctx, *st.UserID)
	switch {
	case err == nil:
		view.User = user
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	return view, nil
}

// stateMatches compares byte for byte. An empty stored state never matches.
func stateMatches(stored, got string) bool {
	return stored != "" && stored == got
}

func syncProfile(ctx context.Context, st *store.Store, tiktok TikTokProvider, userID uuid.UUID, accessToken string) (*models.Profile, error) {
	info, err := tiktok.FetchUserInfo(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return st.UpsertProfile(ctx, userID, store.ProfileData{
		DisplayName:    info.DisplayName,
		AvatarURL:      info.AvatarURL,
		FollowerCount:  info.FollowerCount,
		FollowingCount: info.FollowingCount,
		LikesCount:     info.LikesCount,
		VideoCount:     info.VideoCount,
		BioDescription: info.BioDescription,
		IsVerified:     info.IsVerified,
	})
}
