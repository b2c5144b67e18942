package auth

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Context keys set by the session middleware.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
	ContextSessionID = "session_id"
)

// Manager ties the token signer and the session store together. It creates
// sessions on login, resolves cookies to sessions on each request and revokes
// sessions on logout.
type Manager struct {
	signer *TokenSigner
	store  SessionStore
	ttl    time.Duration
	secure bool
}

func NewManager(signer *TokenSigner, store SessionStore, ttl time.Duration, secure bool) *Manager {
	return &Manager{signer: signer, store: store, ttl: ttl, secure: secure}
}

// Issue creates a session record, persists it and sets the session cookie.
func (m *Manager) Issue(c echo.Context, userID uuid.UUID, email, role string) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(c.Request().Context(), sess); err != nil {
		return nil, err
	}
	token, err := m.signer.Mint(sess)
	if err != nil {
		return nil, err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// Revoke deletes the session record and clears the cookie.
func (m *Manager) Revoke(c echo.Context) error {
	if id, ok := c.Get(ContextSessionID).(string); ok && id != "" {
		if err := m.store.Delete(c.Request().Context(), id); err != nil {
			return err
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Middleware resolves the session cookie into request context. Missing or
// invalid cookies pass through unauthenticated; RequireAuth and RequireRole
// enforce access on protected routes.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}
			claims, err := m.signer.Parse(cookie.Value)
			if err != nil {
				log.Debug().Err(err).Msg("invalid session token")
				return next(c)
			}
			sess, err := m.store.Get(c.Request().Context(), claims.ID)
			if err != nil {
				if err != ErrSessionNotFound {
					log.Warn().Err(err).Msg("session store lookup failed")
				}
				return next(c)
			}
			c.Set(ContextUserID, sess.UserID)
			c.Set(ContextUserEmail, sess.Email)
			c.Set(ContextUserRole, sess.Role)
			c.Set(ContextSessionID, sess.ID)
			return next(c)
		}
	}
}

// UserID returns the authenticated user's id, or uuid.Nil when anonymous.
func UserID(c echo.Context) uuid.UUID {
	if id, ok := c.Get(ContextUserID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// Role returns the authenticated user's role, or "" when anonymous.
func Role(c echo.Context) string {
	if role, ok := c.Get(ContextUserRole).(string); ok {
		return role
	}
	return ""
}
