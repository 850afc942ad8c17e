package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/metrics"
)

const (
	TikTokScopes = "user.info.basic,user.info.profile,user.info.stats,video.list"

	defaultTokenLifetime = 86400
)

var tiktokUserFields = []string{
	"open_id", "display_name", "avatar_url", "follower_count", "following_count",
	"likes_count", "video_count", "bio_description", "is_verified",
}

// TikTokToken is the result of a TikTok authorization code exchange.
type TikTokToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	OpenID       string `json:"open_id"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// ExpiresAt returns the absolute expiry relative to now.
func (t *TikTokToken) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}

type TikTokUser struct {
	OpenID         string `json:"open_id"`
	DisplayName    string `json:"display_name"`
	AvatarURL      string `json:"avatar_url"`
	FollowerCount  int64  `json:"follower_count"`
	FollowingCount int64  `json:"following_count"`
	LikesCount     int64  `json:"likes_count"`
	VideoCount     int64  `json:"video_count"`
	BioDescription string `json:"bio_description"`
	IsVerified     bool   `json:"is_verified"`
}

// TikTokClient talks to the TikTok v2 OAuth and user info endpoints. TikTok
// names the client id "client_key", so the token request is built by hand.
type TikTokClient struct {
	clientKey    string
	clientSecret string
	redirectURI  string
	authURL      string
	tokenURL     string
	apiBase      string
	httpClient   *http.Client
	timeout      time.Duration
}

func NewTikTokClient(cfg *config.Config, httpClient *http.Client) *TikTokClient {
	return &TikTokClient{
		clientKey:    cfg.TikTokClientKey,
		clientSecret: cfg.TikTokClientSecret,
		redirectURI:  cfg.TikTokRedirectURI,
		authURL:      cfg.TikTokAuthURL,
		tokenURL:     cfg.TikTokTokenURL,
		apiBase:      strings.TrimRight(cfg.TikTokAPIBase, "/"),
		httpClient:   httpClient,
		timeout:      cfg.UpstreamTimeout,
	}
}

func (c *TikTokClient) AuthorizeURL(state, challenge string) string {
	params := url.Values{}
	params.Set("client_key", c.clientKey)
	params.Set("scope", TikTokScopes)
	params.Set("response_type", "code")
	params.Set("redirect_uri", c.redirectURI)
	params.Set("state", state)
	params.Set("code_challenge", challenge)
	params.Set("code_challenge_method", "S256")
	return c.authURL + "?" + params.Encode()
}

// ExchangeCode trades an authorization code for a token. The verifier is
// sent only when non-empty.
func (c *TikTokClient) ExchangeCode(ctx context.Context, code, verifier string) (tok *TikTokToken, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider(ProviderTikTok, "token_exchange", outcomeOf(err), start) }()

	form := url.Values{}
	form.Set("client_key", c.clientKey)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.redirectURI)
	if verifier != "" {
		form.Set("code_verifier", verifier)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build tiktok token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, ProviderTikTok, "token exchange", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, transportError(ctx, ProviderTikTok, "token exchange", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TokenExchangeError{Provider: ProviderTikTok, StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	var payload struct {
		TikTokToken
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &TokenExchangeError{Provider: ProviderTikTok, StatusCode: resp.StatusCode, Body: truncate(body)}
	}
	if hasTikTokError(payload.Error) || payload.AccessToken == "" || payload.OpenID == "" {
		return nil, &TokenExchangeError{Provider: ProviderTikTok, StatusCode: resp.StatusCode, Body: truncate(body)}
	}
	if payload.ExpiresIn <= 0 {
		payload.ExpiresIn = defaultTokenLifetime
	}

	token := payload.TikTokToken
	return &token, nil
}

// FetchUserInfo loads the profile fields of the token owner.
func (c *TikTokClient) FetchUserInfo(ctx context.Context, accessToken string) (user *TikTokUser, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider(ProviderTikTok, "user_info", outcomeOf(err), start) }()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	endpoint := c.apiBase + "/user/info/?fields=" + url.QueryEscape(strings.Join(tiktokUserFields, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tiktok user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, ProviderTikTok, "user info", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, transportError(ctx, ProviderTikTok, "user info", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProfileFetchError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	var payload struct {
		Data struct {
			User TikTokUser `json:"user"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ProfileFetchError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}
	if payload.Error.Code != "" && payload.Error.Code != "ok" {
		return nil, &ProfileFetchError{StatusCode: resp.StatusCode, Code: payload.Error.Code, Body: truncate(body)}
	}

	u := payload.Data.User
	return &u, nil
}

func (c *TikTokClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// hasTikTokError reports whether a token response carries an error. TikTok
// sends either a string code or an object with a code other than "ok".
func hasTikTokError(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	var code string
	if err := json.Unmarshal(raw, &code); err == nil {
		return code != "" && code != "ok"
	}
	var obj struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Code != "" && obj.Code != "ok"
	}
	return true
}
