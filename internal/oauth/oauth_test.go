package oauth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(base string) *config.Config {
	return &config.Config{
		TikTokClientKey:     "ck",
		TikTokClientSecret:  "cs",
		TikTokRedirectURI:   "http://localhost/api/auth/tiktok/callback",
		TikTokAuthURL:       base + "/auth",
		TikTokTokenURL:      base + "/oauth/token/",
		TikTokAPIBase:       base,
		DiscordClientID:     "dc",
		DiscordClientSecret: "ds",
		DiscordRedirectURI:  "http://localhost/api/auth/discord/callback",
		DiscordAuthURL:      base + "/discord/authorize",
		DiscordTokenURL:     base + "/discord/token",
		DiscordAPIBase:      base + "/discord",
		UpstreamTimeout:     2 * time.Second,
	}
}

func TestGeneratePKCE(t *testing.T) {
	verifier, challenge := GeneratePKCE()

	assert.GreaterOrEqual(t, len(verifier), 43)
	sum := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), challenge)

	other, _ := GeneratePKCE()
	assert.NotEqual(t, verifier, other)
}

func TestGenerateState(t *testing.T) {
	a, b := GenerateState(), GenerateState()
	assert.NotEqual(t, a, b)
	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestTikTokAuthorizeURL(t *testing.T) {
	c := NewTikTokClient(testConfig("https://tiktok.test"), NewHTTPClient(time.Second))

	u, err := url.Parse(c.AuthorizeURL("st", "ch"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "ck", q.Get("client_key"))
	assert.Equal(t, TikTokScopes, q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "st", q.Get("state"))
	assert.Equal(t, "ch", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
}

func TestTikTokExchangeCode(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","open_id":"oid","scope":"user.info.basic"}`))
	}))
	defer srv.Close()

	c := NewTikTokClient(testConfig(srv.URL), NewHTTPClient(time.Second))
	tok, err := c.ExchangeCode(context.Background(), "code-1", "verifier-1")
	require.NoError(t, err)

	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "oid", tok.OpenID)
	assert.Equal(t, int64(86400), tok.ExpiresIn)
	assert.Equal(t, "ck", form.Get("client_key"))
	assert.Equal(t, "cs", form.Get("client_secret"))
	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "verifier-1", form.Get("code_verifier"))

	_, err = c.ExchangeCode(context.Background(), "code-2", "")
	require.NoError(t, err)
	_, present := form["code_verifier"]
	assert.False(t, present, "empty verifier must not be sent")
}

func TestTikTokExchangeErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"non-2xx", http.StatusBadRequest, `{"error":"invalid_grant"}`},
		{"2xx with error code", http.StatusOK, `{"error":"invalid_request","error_description":"Code expired"}`},
		{"2xx with error object", http.StatusOK, `{"error":{"code":"access_token_invalid"}}`},
		{"2xx without token", http.StatusOK, `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewTikTokClient(testConfig(srv.URL), NewHTTPClient(time.Second))
			_, err := c.ExchangeCode(context.Background(), "code", "v")

			var exErr *TokenExchangeError
			require.ErrorAs(t, err, &exErr)
			assert.Equal(t, ProviderTikTok, exErr.Provider)
			assert.Equal(t, tc.status, exErr.StatusCode)
			assert.Equal(t, tc.body, exErr.Body)
		})
	}
}

func TestTikTokTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig(srv.URL)
	cfg.UpstreamTimeout = 50 * time.Millisecond
	c := NewTikTokClient(cfg, NewHTTPClient(cfg.UpstreamTimeout))

	_, err := c.ExchangeCode(context.Background(), "code", "v")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)

	_, err = c.FetchUserInfo(context.Background(), "at")
	assert.ErrorIs(t, err, ErrUpstreamTimeout)
}

func TestTikTokFetchUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/info/", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("fields"), "bio_description")
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"access_token_invalid"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"user":{"open_id":"oid","display_name":"Dee","follower_count":12,"is_verified":true}},"error":{"code":"ok"}}`))
	}))
	defer srv.Close()

	c := NewTikTokClient(testConfig(srv.URL), NewHTTPClient(time.Second))

	user, err := c.FetchUserInfo(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "Dee", user.DisplayName)
	assert.Equal(t, int64(12), user.FollowerCount)
	assert.Equal(t, int64(0), user.LikesCount)
	assert.True(t, user.IsVerified)

	_, err = c.FetchUserInfo(context.Background(), "bad")
	var pfErr *ProfileFetchError
	require.ErrorAs(t, err, &pfErr)
	assert.Equal(t, http.StatusUnauthorized, pfErr.StatusCode)
}

func TestTikTokFetchUserInfoErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{},"error":{"code":"scope_not_authorized","message":"nope"}}`))
	}))
	defer srv.Close()

	c := NewTikTokClient(testConfig(srv.URL), NewHTTPClient(time.Second))
	_, err := c.FetchUserInfo(context.Background(), "at")

	var pfErr *ProfileFetchError
	require.ErrorAs(t, err, &pfErr)
	assert.Equal(t, "scope_not_authorized", pfErr.Code)
}

func TestDiscordAuthorizeURL(t *testing.T) {
	c := NewDiscordClient(testConfig("https://discord.test"), NewHTTPClient(time.Second))

	u, err := url.Parse(c.AuthorizeURL("st"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "dc", q.Get("client_id"))
	assert.Equal(t, "identify", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "st", q.Get("state"))
	assert.Empty(t, q.Get("code_challenge"))
}

func TestDiscordExchangeAndUserInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/discord/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") == "no-token" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token_type":"Bearer"}`))
			return
		}
		if r.PostForm.Get("code") != "good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		assert.Equal(t, "dc", r.PostForm.Get("client_id"))
		assert.Equal(t, "ds", r.PostForm.Get("client_secret"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"dat","token_type":"Bearer","expires_in":600}`))
	})
	mux.HandleFunc("/discord/users/@me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer dat" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"123","username":"dee"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewDiscordClient(testConfig(srv.URL), NewHTTPClient(time.Second))

	tok, err := c.ExchangeCode(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "dat", tok.AccessToken)

	user, err := c.FetchUserInfo(context.Background(), tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "123", user.ID)
	assert.Equal(t, "dee", user.Username)

	_, err = c.ExchangeCode(context.Background(), "bad")
	var exErr *TokenExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, ProviderDiscord, exErr.Provider)
	assert.Equal(t, http.StatusBadRequest, exErr.StatusCode)
	assert.Contains(t, exErr.Body, "invalid_grant")

	_, err = c.ExchangeCode(context.Background(), "no-token")
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, http.StatusOK, exErr.StatusCode)
	assert.Contains(t, exErr.Body, "access_token")
	assert.False(t, errors.Is(err, ErrUpstreamUnavailable))

	_, err = c.FetchUserInfo(context.Background(), "wrong")
	var uiErr *UserInfoError
	require.ErrorAs(t, err, &uiErr)
	assert.Equal(t, http.StatusUnauthorized, uiErr.StatusCode)
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewDiscordClient(testConfig(base), NewHTTPClient(time.Second))
	_, err := c.FetchUserInfo(context.Background(), "at")

	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.False(t, errors.Is(err, ErrUpstreamTimeout))

	_, err = c.ExchangeCode(context.Background(), "good")
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	var exErr *TokenExchangeError
	assert.False(t, errors.As(err, &exErr))
}
