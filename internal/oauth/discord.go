package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/metrics"
	"golang.org/x/oauth2"
)

type DiscordUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
}

// DiscordClient links a Discord identity. It uses the plain authorization
// code grant with the "identify" scope.
type DiscordClient struct {
	oauth      *oauth2.Config
	apiBase    string
	httpClient *http.Client
	timeout    time.Duration
}

func NewDiscordClient(cfg *config.Config, httpClient *http.Client) *DiscordClient {
	return &DiscordClient{
		oauth: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.DiscordAuthURL,
				TokenURL:  cfg.DiscordTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase:    strings.TrimRight(cfg.DiscordAPIBase, "/"),
		httpClient: httpClient,
		timeout:    cfg.UpstreamTimeout,
	}
}

func (c *DiscordClient) AuthorizeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

func (c *DiscordClient) ExchangeCode(ctx context.Context, code string) (tok *oauth2.Token, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider(ProviderDiscord, "token_exchange", outcomeOf(err), start) }()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	tok, err = c.oauth.Exchange(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient), code)
	if err == nil {
		if tok.AccessToken == "" {
			return nil, &TokenExchangeError{Provider: ProviderDiscord, StatusCode: http.StatusOK, Body: "response missing access_token"}
		}
		return tok, nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return nil, &TokenExchangeError{Provider: ProviderDiscord, StatusCode: status, Body: truncate(retrieveErr.Body)}
	}

	// http.Client.Do failures arrive as *url.Error. Anything else is oauth2
	// rejecting a 2xx body, e.g. one without access_token.
	var urlErr *url.Error
	if errors.As(err, &urlErr) || isTimeout(ctx, err) {
		return nil, transportError(ctx, ProviderDiscord, "token exchange", err)
	}
	return nil, &TokenExchangeError{Provider: ProviderDiscord, StatusCode: http.StatusOK, Body: truncate([]byte(err.Error()))}
}

// FetchUserInfo calls /users/@me. The request goes through the timed client
// directly since oauth2.Config.Client would replace it.
func (c *DiscordClient) FetchUserInfo(ctx context.Context, accessToken string) (user *DiscordUser, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider(ProviderDiscord, "user_info", outcomeOf(err), start) }()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build discord user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, ProviderDiscord, "user info", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, transportError(ctx, ProviderDiscord, "user info", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UserInfoError{Provider: ProviderDiscord, StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	var u DiscordUser
	if err := json.Unmarshal(body, &u); err != nil || u.ID == "" {
		return nil, &UserInfoError{Provider: ProviderDiscord, StatusCode: resp.StatusCode, Body: truncate(body)}
	}
	return &u, nil
}

func (c *DiscordClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
