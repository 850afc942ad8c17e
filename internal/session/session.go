package session

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
)

const (
	CookieName = "dtt_session"
	stateKey   = "state"
)

// State is everything the server remembers about one browser. A nil UserID
// means the browser is not authenticated.
type State struct {
	OAuthState        string
	CodeVerifier      string
	DiscordOAuthState string
	UserID            *uuid.UUID
	TikTokOpenID      string
}

func (s State) Authenticated() bool {
	return s.UserID != nil
}

type Options struct {
	TTL    time.Duration
	Secure bool
}

type Manager struct {
	store *fibersession.Store
}

// NewManager builds a session store over storage. A nil storage selects
// fiber's in-memory storage.
func NewManager(storage fiber.Storage, opts Options) *Manager {
	store := fibersession.New(fibersession.Config{
		Expiration:     opts.TTL,
		Storage:        storage,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSecure:   opts.Secure,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
	store.RegisterType(State{})
	return &Manager{store: store}
}

// Handle is the session of the current request.
type Handle struct {
	sess *fibersession.Session
}

func (m *Manager) Load(c *fiber.Ctx) (*Handle, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &Handle{sess: sess}, nil
}

func (h *Handle) State() State {
	if st, ok := h.sess.Get(stateKey).(State); ok {
		return st
	}
	return State{}
}

// Put replaces the stored state and saves the session.
func (h *Handle) Put(st State) error {
	h.sess.Set(stateKey, st)
	if err := h.sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear drops the session from storage and expires the cookie.
func (h *Handle) Clear() error {
	if err := h.sess.Destroy(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}
