package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zaqqye/surat_tugas_web/internal/models"
	"github.com/zaqqye/surat_tugas_web/internal/upstream"
)

// NimService wraps the registration-allowlist endpoints of the user service.
type NimService struct {
	client *upstream.Client
}

func (s *NimService) ListNims(ctx context.Context) ([]models.NimEntry, Result) {
	resp, err := s.client.Do(ctx, http.MethodGet, "/api/nims", nil)
	if err != nil {
		return nil, failure(err)
	}
	if !resp.OK() {
		return nil, failureStatus(resp)
	}
	items := extractList(resp.Body)
	entries := make([]models.NimEntry, 0, len(items))
	for _, item := range items {
		var n models.NimEntry
		if json.Unmarshal(item, &n) != nil {
			continue
		}
		entries = append(entries, n)
	}
	return entries, success("")
}

func (s *NimService) AddNim(ctx context.Context, nim string) Result {
	nim = strings.TrimSpace(nim)
	if nim == "" {
		return invalid("NIM wajib diisi")
	}

	resp, err := s.client.Do(ctx, http.MethodPost, "/api/nims", map[string]string{"nim": nim})
	if err != nil {
		return failure(err)
	}
	if !resp.OK() {
		return failureStatus(resp)
	}
	return success("NIM berhasil ditambahkan")
}

func (s *NimService) ActivateNim(ctx context.Context, id string) Result {
	return s.setNimState(ctx, "/api/nims/activate/"+id, "NIM berhasil diaktifkan")
}

func (s *NimService) DeactivateNim(ctx context.Context, id string) Result {
	return s.setNimState(ctx, "/api/nims/deactivate/"+id, "NIM berhasil dinonaktifkan")
}

func (s *NimService) setNimState(ctx context.Context, path, okMsg string) Result {
	resp, err := s.client.Do(ctx, http.MethodPut, path, nil)
	if err != nil {
		return failure(err)
	}
	if !resp.OK() {
		return failureStatus(resp)
	}
	return success(okMsg)
}
