package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/zaqqye/surat_tugas_web/internal/models"
	"github.com/zaqqye/surat_tugas_web/internal/upstream"
)

// AuthService wraps the auth endpoints of the user service. Login, Register
// and RefreshTokens are unauthenticated; profile calls carry the bearer.
type AuthService struct {
	pub  *upstream.Client
	auth *upstream.Client
}

// AuthPayload is the strict shape of a successful login/register/refresh.
type AuthPayload struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, username, password string) (AuthPayload, Result) {
	var p AuthPayload
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return p, invalid("Username dan password wajib diisi")
	}

	resp, err := s.pub.Do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return p, failure(err)
	}
	if !resp.OK() {
		return p, failureStatus(resp)
	}
	if derr := decodeObject(resp.Body, &p); derr != nil {
		return p, failure(derr)
	}
	p.User.Normalize()
	return p, success("Login berhasil")
}

func (s *AuthService) Register(ctx context.Context, username, nim, password string) (AuthPayload, Result) {
	var p AuthPayload
	username = strings.TrimSpace(username)
	nim = strings.TrimSpace(nim)
	if username == "" || nim == "" || password == "" {
		return p, invalid("Username, NIM, dan password wajib diisi")
	}
	if len(password) < 6 {
		return p, invalid("Password minimal 6 karakter")
	}

	resp, err := s.pub.Do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"nim":      nim,
		"password": password,
	})
	if err != nil {
		return p, failure(err)
	}
	if !resp.OK() {
		// The whitelist rejection arrives as a 4xx with an upstream message.
		return p, failureStatus(resp)
	}
	if derr := decodeObject(resp.Body, &p); derr != nil {
		return p, failure(derr)
	}
	p.User.Normalize()
	return p, success("Registrasi berhasil")
}

// RefreshTokens exchanges a refresh token for a new pair. This is session
// machinery, not a page operation, so it returns a plain error.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (AuthPayload, error) {
	var p AuthPayload
	resp, err := s.pub.Do(ctx, http.MethodPost, "/api/auth/refresh-token", map[string]string{
		"refreshToken": refreshToken,
	})
	if err != nil {
		return p, err
	}
	if !resp.OK() {
		return p, upstream.FromStatus(resp.StatusCode, messageFrom(resp.Body))
	}
	if derr := decodeObject(resp.Body, &p); derr != nil {
		return p, derr
	}
	p.User.Normalize()
	return p, nil
}

func (s *AuthService) GetProfile(ctx context.Context) (models.User, Result) {
	var u models.User
	resp, err := s.auth.Do(ctx, http.MethodGet, "/api/users/profile", nil)
	if err != nil {
		return u, failure(err)
	}
	if !resp.OK() {
		return u, failureStatus(resp)
	}
	if derr := decodeObject(resp.Body, &u); derr != nil {
		return u, failure(derr)
	}
	u.Normalize()
	return u, success("")
}

func (s *AuthService) UpdateProfile(ctx context.Context, username string) (models.User, Result) {
	var u models.User
	username = strings.TrimSpace(username)
	if username == "" {
		return u, invalid("Username wajib diisi")
	}

	resp, err := s.auth.Do(ctx, http.MethodPut, "/api/users/profile", map[string]string{
		"username": username,
	})
	if err != nil {
		return u, failure(err)
	}
	if !resp.OK() {
		return u, failureStatus(resp)
	}
	if derr := decodeObject(resp.Body, &u); derr != nil {
		return u, failure(derr)
	}
	u.Normalize()
	return u, success("Profil berhasil diperbarui")
}
