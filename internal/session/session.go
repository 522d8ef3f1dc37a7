// Package session wires fiber's session store and records which store the
// operator is working on.
package session

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

const currentStoreKey = "current_store_id"

var ErrNoSession = errors.New("session unavailable")

type Manager struct {
	store *fibersession.Store
}

// NewManager uses Redis when redisURL is set and reachable, memory otherwise.
func NewManager(redisURL string, expiration time.Duration, secureCookie bool) *Manager {
	cfg := fibersession.Config{
		Expiration:     expiration,
		KeyLookup:      "cookie:shopify_automation_session",
		CookieHTTPOnly: true,
		CookieSecure:   secureCookie,
		CookieSameSite: "Lax",
	}
	if redisURL != "" {
		storage, err := NewRedisStorage(redisURL)
		if err != nil {
			slog.Error("redis session storage unavailable, falling back to memory", "error", err)
		} else {
			cfg.Storage = storage
			slog.Info("session storage: redis")
		}
	}
	return &Manager{store: fibersession.New(cfg)}
}

// CurrentStoreID returns the store recorded in the session, if any.
func (m *Manager) CurrentStoreID(c *fiber.Ctx) (uint, bool) {
	sess, err := m.store.Get(c)
	if err != nil {
		slog.Warn("failed to load session", "error", err)
		return 0, false
	}
	id, ok := sess.Get(currentStoreKey).(uint)
	return id, ok && id != 0
}

// SetCurrentStoreID records id as the current store.
func (m *Manager) SetCurrentStoreID(c *fiber.Ctx, id uint) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return errors.Join(ErrNoSession, err)
	}
	sess.Set(currentStoreKey, id)
	return sess.Save()
}

// ClearCurrentStoreID forgets the current store when it equals id.
func (m *Manager) ClearCurrentStoreID(c *fiber.Ctx, id uint) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return errors.Join(ErrNoSession, err)
	}
	if cur, ok := sess.Get(currentStoreKey).(uint); !ok || cur != id {
		return nil
	}
	sess.Delete(currentStoreKey)
	return sess.Save()
}
