package services

import (
	"context"
	"net/url"
	"sync"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/oauth"
	"golang.org/x/oauth2"
)

type exchangeCall struct {
	Code     string
	Verifier string
}

type fakeTikTok struct {
	mu          sync.Mutex
	token       *oauth.TikTokToken
	exchangeErr error
	user        *oauth.TikTokUser
	userErr     error
	exchanges   []exchangeCall
	userCalls   int
}

func newFakeTikTok(openID string) *fakeTikTok {
	return &fakeTikTok{
		token: &oauth.TikTokToken{AccessToken: "at-" + openID, RefreshToken: "rt", ExpiresIn: 86400, OpenID: openID, Scope: oauth.TikTokScopes},
		user:  &oauth.TikTokUser{OpenID: openID, DisplayName: "Dee", FollowerCount: 100, LikesCount: 5, VideoCount: 2},
	}
}

func (f *fakeTikTok) AuthorizeURL(state, challenge string) string {
	return "https://tiktok.test/auth?state=" + url.QueryEscape(state) + "&code_challenge=" + url.QueryEscape(challenge)
}

func (f *fakeTikTok) ExchangeCode(_ context.Context, code, verifier string) (*oauth.TikTokToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges = append(f.exchanges, exchangeCall{Code: code, Verifier: verifier})
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	tok := *f.token
	return &tok, nil
}

func (f *fakeTikTok) FetchUserInfo(_ context.Context, _ string) (*oauth.TikTokUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	u := *f.user
	return &u, nil
}

type fakeDiscord struct {
	authorizeCalls int
	exchangeCalls  int
	exchangeErr    error
	user           *oauth.DiscordUser
	userErr        error
}

func (f *fakeDiscord) AuthorizeURL(state string) string {
	f.authorizeCalls++
	return "https://discord.test/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeDiscord) ExchangeCode(_ context.Context, _ string) (*oauth2.Token, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "dat"}, nil
}

func (f *fakeDiscord) FetchUserInfo(_ context.Context, _ string) (*oauth.DiscordUser, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *fakeDiscord) calls() int {
	return f.authorizeCalls + f.exchangeCalls
}
