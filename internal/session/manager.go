package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/zaqqye/surat_tugas_web/internal/models"
	"github.com/zaqqye/surat_tugas_web/internal/services"
	"github.com/zaqqye/surat_tugas_web/internal/upstream"
)

var ErrNotAuthenticated = errors.New("session: not authenticated")

// storage is the store surface the manager depends on. *Store implements it;
// tests substitute an in-memory version.
type storage interface {
	Create(sessionID, accessToken, refreshToken, userJSON string, expiresAt time.Time) error
	Find(sessionID string) (*models.Session, error)
	Delete(sessionID string) error
	DeleteExpired(now time.Time) error
	UpdateTokens(sessionID, accessToken, refreshToken string) error
	UpdateUser(sessionID, userJSON string) error
	open(sealed string) (string, error)
}

// Manager owns the session lifecycle: it is constructed once at startup and
// handed to the middleware and controllers. There is no other holder of
// session state.
type Manager struct {
	store storage
	api   *services.API
	ttl   time.Duration
}

func NewManager(store *Store, api *services.API, ttl time.Duration) *Manager {
	return &Manager{store: store, api: api, ttl: ttl}
}

// TTL is the session lifetime, also used as the cookie max-age.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Current is one resolved session: the cookie value plus the cached user.
type Current struct {
	SessionID string
	User      models.User
}

func (c *Current) IsAdmin() bool { return c.User.IsAdmin }
func (c *Current) IsUser() bool  { return c.User.Role == models.RoleUser }

// HasPermission checks a role requirement. Admin passes every check.
func (c *Current) HasPermission(role string) bool {
	return c.User.IsAdmin || c.User.Role == role
}

// features is the static capability table: feature key -> predicate over the
// current session. Unknown keys deny.
var features = map[string]func(*Current) bool{
	"dashboard:view":  func(*Current) bool { return true },
	"surat:create":    func(*Current) bool { return true },
	"surat:view":      func(*Current) bool { return true },
	"surat:approve":   (*Current).IsAdmin,
	"users:manage":    (*Current).IsAdmin,
	"nims:manage":     (*Current).IsAdmin,
	"reports:view":    (*Current).IsAdmin,
	"settings:manage": (*Current).IsAdmin,
}

func (c *Current) CanAccess(feature string) bool {
	allow, ok := features[feature]
	return ok && allow(c)
}

// Login authenticates against the user service and creates a session on
// success. Failure never mutates state.
func (m *Manager) Login(ctx context.Context, username, password string) (string, models.User, services.Result) {
	payload, res := m.api.Auth(nil).Login(ctx, username, password)
	if !res.Success {
		return "", models.User{}, res
	}
	sessionID, err := m.createSession(payload)
	if err != nil {
		return "", models.User{}, services.Failure(err)
	}
	return sessionID, payload.User, res
}

// Register creates an account (gated upstream by the NIM allowlist) and logs
// the new user in.
func (m *Manager) Register(ctx context.Context, username, nim, password string) (string, models.User, services.Result) {
	payload, res := m.api.Auth(nil).Register(ctx, username, nim, password)
	if !res.Success {
		return "", models.User{}, res
	}
	sessionID, err := m.createSession(payload)
	if err != nil {
		return "", models.User{}, services.Failure(err)
	}
	return sessionID, payload.User, res
}

func (m *Manager) createSession(payload services.AuthPayload) (string, error) {
	userJSON, err := json.Marshal(payload.User)
	if err != nil {
		return "", err
	}
	sessionID := uuid.NewString()
	if err := m.store.Create(sessionID, payload.AccessToken, payload.RefreshToken, string(userJSON), time.Now().UTC().Add(m.ttl)); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Logout destroys the session unconditionally. Safe to call at any time,
// including for sessions that no longer exist.
func (m *Manager) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := m.store.Delete(sessionID); err != nil {
		log.Printf("session: logout delete failed: %v", err)
	}
}

// Resolve validates the session behind a cookie value. An expired access
// token is refreshed proactively before the request proceeds; a dead refresh
// token tears the session down.
func (m *Manager) Resolve(ctx context.Context, sessionID string) (*Current, error) {
	if sessionID == "" {
		return nil, ErrNotAuthenticated
	}
	rec, err := m.store.Find(sessionID)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	now := time.Now().UTC()
	if now.After(rec.ExpiresAt) {
		_ = m.store.Delete(sessionID)
		_ = m.store.DeleteExpired(now)
		return nil, ErrNotAuthenticated
	}

	access, err := m.store.open(rec.AccessSealed)
	if err != nil {
		_ = m.store.Delete(sessionID)
		return nil, ErrNotAuthenticated
	}
	if tokenExpired(access, now) {
		if _, err := m.refresh(ctx, sessionID, rec.RefreshSealed); err != nil {
			_ = m.store.Delete(sessionID)
			return nil, ErrNotAuthenticated
		}
	}

	var user models.User
	if err := json.Unmarshal([]byte(rec.UserJSON), &user); err != nil {
		_ = m.store.Delete(sessionID)
		return nil, ErrNotAuthenticated
	}
	user.Normalize()
	return &Current{SessionID: sessionID, User: user}, nil
}

// refresh exchanges the sealed refresh token and persists the new pair.
// Returns the new access token.
func (m *Manager) refresh(ctx context.Context, sessionID, refreshSealed string) (string, error) {
	refreshToken, err := m.store.open(refreshSealed)
	if err != nil {
		return "", err
	}
	payload, err := m.api.Auth(nil).RefreshTokens(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if err := m.store.UpdateTokens(sessionID, payload.AccessToken, payload.RefreshToken); err != nil {
		return "", err
	}
	return payload.AccessToken, nil
}

// RefreshUserData re-fetches the profile and replaces the cached user. Any
// failure is treated as an unrecoverable stale session and forces logout.
func (m *Manager) RefreshUserData(ctx context.Context, cur *Current) services.Result {
	user, res := m.api.Auth(m.TokenSource(cur.SessionID)).GetProfile(ctx)
	if !res.Success {
		m.Logout(ctx, cur.SessionID)
		return res
	}
	m.storeUser(cur, user)
	return res
}

// UpdateProfile forwards the change upstream and syncs the cached user.
func (m *Manager) UpdateProfile(ctx context.Context, cur *Current, username string) services.Result {
	user, res := m.api.Auth(m.TokenSource(cur.SessionID)).UpdateProfile(ctx, username)
	if !res.Success {
		return res
	}
	m.storeUser(cur, user)
	return res
}

func (m *Manager) storeUser(cur *Current, user models.User) {
	user.Normalize()
	cur.User = user
	if userJSON, err := json.Marshal(user); err == nil {
		if err := m.store.UpdateUser(cur.SessionID, string(userJSON)); err != nil {
			log.Printf("session: user cache update failed: %v", err)
		}
	}
}

// TokenSource binds a session to the upstream clients: token lookup, the
// single 401-triggered refresh, and teardown on refresh failure.
func (m *Manager) TokenSource(sessionID string) upstream.TokenSource {
	return &tokenSource{m: m, sessionID: sessionID}
}

type tokenSource struct {
	m         *Manager
	sessionID string
}

func (t *tokenSource) AccessToken(ctx context.Context) (string, error) {
	rec, err := t.m.store.Find(t.sessionID)
	if err != nil {
		return "", upstream.ErrSessionExpired
	}
	return t.m.store.open(rec.AccessSealed)
}

func (t *tokenSource) Refresh(ctx context.Context) (string, error) {
	rec, err := t.m.store.Find(t.sessionID)
	if err != nil {
		return "", upstream.ErrSessionExpired
	}
	return t.m.refresh(ctx, t.sessionID, rec.RefreshSealed)
}

func (t *tokenSource) Invalidate(ctx context.Context) error {
	return t.m.store.Delete(t.sessionID)
}

// tokenExpired checks the exp claim of the stored upstream access token. The
// token is not verified here (the dashboard does not hold the signing key);
// a token that cannot be parsed is passed through and left to the upstream
// 401 path.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	// Refresh slightly early so an in-flight request does not race expiry.
	return now.After(exp.Time.Add(-30 * time.Second))
}
