package middleware

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/dtt-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieKey(t *testing.T) {
	a, err := CookieKey("secret")
	require.NoError(t, err)
	b, err := CookieKey("secret")
	require.NoError(t, err)
	other, err := CookieKey("other")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	_, err = CookieKey("")
	assert.Error(t, err)
}

func newSessionApp(t *testing.T) *fiber.App {
	key, err := CookieKey("secret")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(EncryptCookies(key))
	app.Use(LoadSession(session.NewManager(nil, session.Options{TTL: time.Hour})))
	app.Get("/login", func(c *fiber.Ctx) error {
		id := uuid.New()
		return SessionFrom(c).Put(session.State{UserID: &id, TikTokOpenID: "open-1"})
	})
	app.Get("/private", RequireUser(), func(c *fiber.Ctx) error {
		return c.SendString(SessionFrom(c).State().TikTokOpenID)
	})
	return app
}

func TestRequireUserRejectsAnonymous(t *testing.T) {
	app := newSessionApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"error":"Not authenticated"}`, string(body))
}

func TestRequireUserAcceptsSignedInSession(t *testing.T) {
	app := newSessionApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	_, err = uuid.Parse(cookie.Value)
	assert.Error(t, err, "session id must not travel in clear text")

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "open-1", string(body))
}

func TestSecurityHeadersAndCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS(&config.Config{CORSOrigins: "http://localhost:3000"}))
	app.Use(SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
