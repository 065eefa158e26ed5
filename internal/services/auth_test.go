package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zaqqye/surat_tugas_web/internal/upstream"
)

func testAuthService(t *testing.T, handler http.HandlerFunc) (*AuthService, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	client := upstream.New("user-service", srv.URL, 5*time.Second, 5*time.Second)
	return &AuthService{pub: client, auth: client}, &calls
}

func TestLoginValidation(t *testing.T) {
	svc, calls := testAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "secret"},
		{"blank username", "   ", "secret"},
		{"empty password", "budi", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := svc.Login(context.Background(), tt.username, tt.password)
			if res.Success {
				t.Fatal("expected validation failure")
			}
			if res.Message != "Username dan password wajib diisi" {
				t.Errorf("Message = %q", res.Message)
			}
		})
	}
	if *calls != 0 {
		t.Errorf("upstream calls = %d, want 0 for validation failures", *calls)
	}
}

// A successful login must come back with IsAdmin recomputed from the role,
// whatever the payload claimed.
func TestLoginNormalizesUser(t *testing.T) {
	svc, _ := testAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "budi" || body["password"] != "secret" {
			t.Errorf("credentials not forwarded: %v", body)
		}
		w.Write([]byte(`{"data":{"accessToken":"at","refreshToken":"rt","user":{"id":1,"username":"budi","role":"admin","isAdmin":false}}}`))
	})

	p, res := svc.Login(context.Background(), "budi", "secret")
	if !res.Success {
		t.Fatalf("unexpected failure: %s", res.Message)
	}
	if p.AccessToken != "at" || p.RefreshToken != "rt" {
		t.Errorf("tokens = (%q, %q), want (at, rt)", p.AccessToken, p.RefreshToken)
	}
	if !p.User.IsAdmin {
		t.Error("IsAdmin not recomputed from role")
	}
}

func TestLoginUpstreamRejection(t *testing.T) {
	svc, _ := testAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Username atau password salah"}`))
	})
	_, res := svc.Login(context.Background(), "budi", "wrong")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Message != "Username atau password salah" {
		t.Errorf("Message = %q, want upstream message preserved", res.Message)
	}
	if res.Err == nil || res.Err.Kind != upstream.KindAuth {
		t.Errorf("Err = %+v, want auth kind", res.Err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, calls := testAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	if _, res := svc.Register(context.Background(), "budi", "", "secret1"); res.Success {
		t.Error("expected failure for missing NIM")
	}
	if _, res := svc.Register(context.Background(), "budi", "1101", "abc"); res.Success ||
		res.Message != "Password minimal 6 karakter" {
		t.Errorf("short password: %+v", res)
	}
	if *calls != 0 {
		t.Errorf("upstream calls = %d, want 0", *calls)
	}
}

// The NIM whitelist lives upstream: a 403 with a message surfaces verbatim.
func TestRegisterWhitelistRejection(t *testing.T) {
	svc, _ := testAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"NIM tidak terdaftar"}`))
	})
	_, res := svc.Register(context.Background(), "budi", "9999", "secret1")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Message != "NIM tidak terdaftar" {
		t.Errorf("Message = %q, want whitelist message", res.Message)
	}
}

func TestRefreshTokens(t *testing.T) {
	svc, _ := testAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refreshToken"] != "rt-old" {
			t.Errorf("refreshToken = %q, want rt-old", body["refreshToken"])
		}
		w.Write([]byte(`{"accessToken":"at-new","refreshToken":"rt-new","user":{"id":"1","role":"user"}}`))
	})

	p, err := svc.RefreshTokens(context.Background(), "rt-old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.AccessToken != "at-new" || p.RefreshToken != "rt-new" {
		t.Errorf("tokens = (%q, %q), want new pair", p.AccessToken, p.RefreshToken)
	}
}

func TestRefreshTokensRevoked(t *testing.T) {
	svc, _ := testAuthService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"refresh token revoked"}`))
	})
	if _, err := svc.RefreshTokens(context.Background(), "rt-dead"); err == nil {
		t.Fatal("expected an error for a revoked refresh token")
	}
}
