package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/zaqqye/surat_tugas_web/internal/models"
	"github.com/zaqqye/surat_tugas_web/internal/upstream"
)

// SuratService wraps the mail service: letter submission, listings, history
// and the admin status decision.
type SuratService struct {
	client *upstream.Client
}

// Stats is the strict shape of GET /api/mails/stats.
type Stats struct {
	Total     int `json:"total"`
	Diproses  int `json:"diproses"`
	Disetujui int `json:"disetujui"`
	Ditolak   int `json:"ditolak"`
}

// CreateSurat submits a new letter as multipart form data. Both validations
// run before any network call; a missing file never reaches the wire.
func (s *SuratService) CreateSurat(ctx context.Context, subject, fileName string, file io.Reader) (models.Surat, Result) {
	var surat models.Surat
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return surat, invalid("Subjek surat wajib diisi")
	}
	if file == nil || fileName == "" {
		return surat, invalid("File surat wajib dipilih")
	}

	resp, err := s.client.DoMultipart(ctx, http.MethodPost, "/api/mails",
		map[string]string{"subject_surat": subject}, "file_surat", fileName, file)
	if err != nil {
		return surat, failure(err)
	}
	if !resp.OK() {
		return surat, failureStatus(resp)
	}
	if derr := decodeObject(resp.Body, &surat); derr != nil {
		return surat, failure(derr)
	}
	return surat, success("Surat berhasil diajukan")
}

// ListUserSurat returns the letters submitted by the current user.
func (s *SuratService) ListUserSurat(ctx context.Context) ([]models.Surat, Result) {
	return s.list(ctx, "/api/mails/user")
}

// ListAllSurat returns every letter in the system. Admin only.
func (s *SuratService) ListAllSurat(ctx context.Context) ([]models.Surat, Result) {
	return s.list(ctx, "/api/mails")
}

func (s *SuratService) list(ctx context.Context, path string) ([]models.Surat, Result) {
	resp, err := s.client.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, failure(err)
	}
	if !resp.OK() {
		return nil, failureStatus(resp)
	}
	items := extractList(resp.Body)
	letters := make([]models.Surat, 0, len(items))
	for _, item := range items {
		var m models.Surat
		if json.Unmarshal(item, &m) != nil {
			continue
		}
		letters = append(letters, m)
	}
	return letters, success("")
}

func (s *SuratService) GetSuratDetail(ctx context.Context, id string) (models.Surat, Result) {
	var surat models.Surat
	resp, err := s.client.Do(ctx, http.MethodGet, "/api/mails/details/"+id, nil)
	if err != nil {
		return surat, failure(err)
	}
	if !resp.OK() {
		return surat, failureStatus(resp)
	}
	if derr := decodeObject(resp.Body, &surat); derr != nil {
		return surat, failure(derr)
	}
	return surat, success("")
}

func (s *SuratService) GetHistory(ctx context.Context, suratID string) ([]models.History, Result) {
	resp, err := s.client.Do(ctx, http.MethodGet, "/api/history/"+suratID, nil)
	if err != nil {
		return nil, failure(err)
	}
	if !resp.OK() {
		return nil, failureStatus(resp)
	}
	items := extractList(resp.Body)
	histories := make([]models.History, 0, len(items))
	for _, item := range items {
		var h models.History
		if json.Unmarshal(item, &h) != nil {
			continue
		}
		histories = append(histories, h)
	}
	return histories, success("")
}

// UpdateSuratStatus records an admin decision. Alasan is required when a
// letter is rejected so the sender knows why.
func (s *SuratService) UpdateSuratStatus(ctx context.Context, suratID string, status models.Status, alasan string) Result {
	if !status.Valid() {
		return invalid("Status tidak dikenali")
	}
	alasan = strings.TrimSpace(alasan)
	if status == models.StatusDitolak && alasan == "" {
		return invalid("Alasan penolakan wajib diisi")
	}

	body := map[string]string{"status": string(status)}
	if alasan != "" {
		body["alasan"] = alasan
	}
	resp, err := s.client.Do(ctx, http.MethodPost, "/api/history/"+suratID, body)
	if err != nil {
		return failure(err)
	}
	if !resp.OK() {
		return failureStatus(resp)
	}
	return success("Status surat berhasil diperbarui")
}

func (s *SuratService) GetStats(ctx context.Context) (Stats, Result) {
	var st Stats
	resp, err := s.client.Do(ctx, http.MethodGet, "/api/mails/stats", nil)
	if err != nil {
		return st, failure(err)
	}
	if !resp.OK() {
		return st, failureStatus(resp)
	}
	if derr := decodeObject(resp.Body, &st); derr != nil {
		return st, failure(derr)
	}
	return st, success("")
}
