package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/zaqqye/surat_tugas_web/internal/models"
	"github.com/zaqqye/surat_tugas_web/internal/session"
)

// stubResolver maps cookie values straight to sessions, no store involved.
type stubResolver struct {
	sessions map[string]*session.Current
}

func (s *stubResolver) Resolve(ctx context.Context, sessionID string) (*session.Current, error) {
	if cur, ok := s.sessions[sessionID]; ok {
		return cur, nil
	}
	return nil, session.ErrNotAuthenticated
}

func testGuard() *Guard {
	return &Guard{
		Manager: &stubResolver{sessions: map[string]*session.Current{
			"sid-user":  {SessionID: "sid-user", User: models.User{Username: "budi", Role: models.RoleUser}},
			"sid-admin": {SessionID: "sid-admin", User: models.User{Username: "tu", Role: models.RoleAdmin, IsAdmin: true}},
		}},
		CookieName: "st_session",
	}
}

func perform(t *testing.T, r *gin.Engine, path, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "st_session", Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := testGuard()
	r := gin.New()
	r.GET("/dashboard", g.RequireSession(), func(c *gin.Context) {
		cur := Current(c)
		if cur == nil {
			t.Error("Current(c) is nil inside a guarded handler")
			return
		}
		c.String(http.StatusOK, cur.User.Username)
	})

	t.Run("no cookie redirects to login", func(t *testing.T) {
		w := perform(t, r, "/dashboard", "")
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
			t.Errorf("got %d -> %q, want 303 -> /login", w.Code, w.Header().Get("Location"))
		}
	})

	t.Run("unknown session redirects and clears the cookie", func(t *testing.T) {
		w := perform(t, r, "/dashboard", "sid-stale")
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
			t.Errorf("got %d -> %q, want 303 -> /login", w.Code, w.Header().Get("Location"))
		}
		cleared := false
		for _, ck := range w.Result().Cookies() {
			if ck.Name == "st_session" && ck.MaxAge < 0 {
				cleared = true
			}
		}
		if !cleared {
			t.Error("stale cookie was not cleared")
		}
	})

	t.Run("valid session reaches the handler", func(t *testing.T) {
		w := perform(t, r, "/dashboard", "sid-user")
		if w.Code != http.StatusOK || w.Body.String() != "budi" {
			t.Errorf("got %d %q, want 200 budi", w.Code, w.Body.String())
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := testGuard()
	r := gin.New()
	r.GET("/admin/users", g.RequireSession(), g.RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("regular user is sent to unauthorized", func(t *testing.T) {
		w := perform(t, r, "/admin/users", "sid-user")
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/unauthorized" {
			t.Errorf("got %d -> %q, want 303 -> /unauthorized", w.Code, w.Header().Get("Location"))
		}
	})

	t.Run("admin passes", func(t *testing.T) {
		w := perform(t, r, "/admin/users", "sid-admin")
		if w.Code != http.StatusOK {
			t.Errorf("got %d, want 200", w.Code)
		}
	})

	t.Run("no session falls back to login", func(t *testing.T) {
		w := perform(t, r, "/admin/users", "")
		if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
			t.Errorf("got %d -> %q, want 303 -> /login", w.Code, w.Header().Get("Location"))
		}
	})
}

func TestRedirectIfAuthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := testGuard()
	r := gin.New()
	r.GET("/login", g.RedirectIfAuthenticated(), func(c *gin.Context) {
		c.String(http.StatusOK, "login page")
	})

	tests := []struct {
		name   string
		cookie string
		code   int
		loc    string
	}{
		{"anonymous sees the page", "", http.StatusOK, ""},
		{"stale cookie sees the page", "sid-stale", http.StatusOK, ""},
		{"user goes to dashboard", "sid-user", http.StatusSeeOther, "/dashboard"},
		{"admin goes to admin dashboard", "sid-admin", http.StatusSeeOther, "/admin/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, r, "/login", tt.cookie)
			if w.Code != tt.code {
				t.Fatalf("got %d, want %d", w.Code, tt.code)
			}
			if tt.loc != "" && w.Header().Get("Location") != tt.loc {
				t.Errorf("Location = %q, want %q", w.Header().Get("Location"), tt.loc)
			}
		})
	}
}

func TestDashboardPath(t *testing.T) {
	user := &session.Current{User: models.User{Role: models.RoleUser}}
	adm := &session.Current{User: models.User{Role: models.RoleAdmin, IsAdmin: true}}
	if got := DashboardPath(user); got != "/dashboard" {
		t.Errorf("DashboardPath(user) = %q", got)
	}
	if got := DashboardPath(adm); got != "/admin/dashboard" {
		t.Errorf("DashboardPath(admin) = %q", got)
	}
}
