package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTokens struct {
	token       string
	refreshed   string
	refreshErr  error
	refreshes   int32
	invalidated int32
}

func (f *fakeTokens) AccessToken(ctx context.Context) (string, error) {
	return f.token, nil
}

func (f *fakeTokens) Refresh(ctx context.Context) (string, error) {
	atomic.AddInt32(&f.refreshes, 1)
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	return f.refreshed, nil
}

func (f *fakeTokens) Invalidate(ctx context.Context) error {
	atomic.AddInt32(&f.invalidated, 1)
	return nil
}

func newTestClient(url string, ts TokenSource) *Client {
	c := New("test", url, 5*time.Second, 5*time.Second)
	if ts != nil {
		c = c.WithTokens(ts)
	}
	return c
}

func TestDoAttachesBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, &fakeTokens{token: "tok-1"})
	resp, err := c.Do(context.Background(), http.MethodGet, "/api/users", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK() {
		t.Errorf("status = %d, want 2xx", resp.StatusCode)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-1")
	}
}

func TestDoWithoutTokensSendsNoBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, nil)
	if _, err := c.Do(context.Background(), http.MethodGet, "/", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

// A 401 triggers exactly one refresh, then one replay with the new token.
func TestDoRefreshesOnceOn401(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "tok-old", refreshed: "tok-new"}
	c := newTestClient(srv.URL, tokens)

	resp, err := c.Do(context.Background(), http.MethodGet, "/api/mails", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK() {
		t.Errorf("status = %d, want 2xx after replay", resp.StatusCode)
	}
	if tokens.refreshes != 1 {
		t.Errorf("refreshes = %d, want exactly 1", tokens.refreshes)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2 (original + replay)", calls)
	}
}

// A failed refresh invalidates the stored credentials and surfaces
// ErrSessionExpired; nothing is replayed.
func TestDoFailedRefreshInvalidates(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "tok-old", refreshErr: errors.New("refresh token revoked")}
	c := newTestClient(srv.URL, tokens)

	_, err := c.Do(context.Background(), http.MethodGet, "/api/mails", nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if tokens.refreshes != 1 {
		t.Errorf("refreshes = %d, want exactly 1", tokens.refreshes)
	}
	if tokens.invalidated != 1 {
		t.Errorf("invalidated = %d, want 1", tokens.invalidated)
	}
	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1 (no replay after failed refresh)", calls)
	}
}

// A 401 on the replay itself also tears the session down instead of looping.
func TestDoSecond401StopsRetrying(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "tok-old", refreshed: "tok-new"}
	c := newTestClient(srv.URL, tokens)

	_, err := c.Do(context.Background(), http.MethodGet, "/api/mails", nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2", calls)
	}
	if tokens.invalidated != 1 {
		t.Errorf("invalidated = %d, want 1", tokens.invalidated)
	}
}

func TestDoNetworkFailure(t *testing.T) {
	// Closed server: connection refused, no response.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(url, nil)
	_, err := c.Do(context.Background(), http.MethodGet, "/", nil)
	var ue *Error
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if ue.Kind != KindNetwork {
		t.Errorf("Kind = %q, want %q", ue.Kind, KindNetwork)
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindForbidden},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
	}
	for _, tt := range tests {
		if got := FromStatus(tt.status, ""); got.Kind != tt.want {
			t.Errorf("FromStatus(%d).Kind = %q, want %q", tt.status, got.Kind, tt.want)
		}
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyTransport(t *testing.T) {
	if got := classifyTransport(timeoutErr{}); got.Kind != KindTimeout {
		t.Errorf("timeout error classified as %q, want %q", got.Kind, KindTimeout)
	}
	if got := classifyTransport(errors.New("connection refused")); got.Kind != KindNetwork {
		t.Errorf("plain error classified as %q, want %q", got.Kind, KindNetwork)
	}
	if got := classifyTransport(context.DeadlineExceeded); got.Kind != KindTimeout {
		t.Errorf("deadline exceeded classified as %q, want %q", got.Kind, KindTimeout)
	}
}

func TestErrorUserMessages(t *testing.T) {
	for _, kind := range []Kind{KindNetwork, KindTimeout, KindAuth, KindForbidden, KindNotFound, KindValidation, KindServer, KindDecode} {
		e := &Error{Kind: kind}
		if e.UserMessage() == "" {
			t.Errorf("UserMessage for %q is empty", kind)
		}
	}
}
