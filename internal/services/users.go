package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zaqqye/surat_tugas_web/internal/models"
	"github.com/zaqqye/surat_tugas_web/internal/upstream"
)

// UserService wraps the admin user-management endpoints of the user service.
type UserService struct {
	client *upstream.Client
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.UserRecord, Result) {
	resp, err := s.client.Do(ctx, http.MethodGet, "/api/users", nil)
	if err != nil {
		return nil, failure(err)
	}
	if !resp.OK() {
		return nil, failureStatus(resp)
	}
	items := extractList(resp.Body)
	users := make([]models.UserRecord, 0, len(items))
	for _, item := range items {
		var u models.UserRecord
		if json.Unmarshal(item, &u) != nil {
			continue
		}
		users = append(users, u)
	}
	return users, success("")
}

func (s *UserService) GetUser(ctx context.Context, id string) (models.UserRecord, Result) {
	var u models.UserRecord
	resp, err := s.client.Do(ctx, http.MethodGet, "/api/users/"+id, nil)
	if err != nil {
		return u, failure(err)
	}
	if !resp.OK() {
		return u, failureStatus(resp)
	}
	if derr := decodeObject(resp.Body, &u); derr != nil {
		return u, failure(derr)
	}
	return u, success("")
}

func (s *UserService) DeleteUser(ctx context.Context, id string) Result {
	resp, err := s.client.Do(ctx, http.MethodDelete, "/api/users/"+id, nil)
	if err != nil {
		return failure(err)
	}
	if !resp.OK() {
		return failureStatus(resp)
	}
	return success("Pengguna berhasil dihapus")
}
