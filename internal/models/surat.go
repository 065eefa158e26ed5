package models

import "time"

// Status is the closed set of letter statuses assigned by admin action on the
// mail service. The dashboard only displays the latest one, never transitions.
type Status string

const (
	StatusDiproses  Status = "diproses"
	StatusDisetujui Status = "disetujui"
	StatusDitolak   Status = "ditolak"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDiproses, StatusDisetujui, StatusDitolak:
		return true
	}
	return false
}

// Label returns the display name used on badges and tables.
func (s Status) Label() string {
	switch s {
	case StatusDiproses:
		return "Diproses"
	case StatusDisetujui:
		return "Disetujui"
	case StatusDitolak:
		return "Ditolak"
	}
	return string(s)
}

// Surat is a task-assignment letter owned by the mail service. LatestStatus
// may be empty; derive.LatestStatus is the authoritative way to resolve it.
type Surat struct {
	ID                FlexibleString `json:"id"`
	SubjectSurat      string         `json:"subject_surat"`
	TanggalPengiriman time.Time      `json:"tanggal_pengiriman"`
	URLFileSurat      string         `json:"url_file_surat"`
	IDPengirim        FlexibleString `json:"id_pengirim"`
	LatestStatus      Status         `json:"latestStatus,omitempty"`
	Histories         []History      `json:"histories,omitempty"`
}

// History is one status decision recorded against a letter.
type History struct {
	ID            FlexibleString `json:"id"`
	Status        Status         `json:"status"`
	TanggalUpdate time.Time      `json:"tanggal_update"`
	Alasan        string         `json:"alasan,omitempty"`
}

// SuratWithSender is the denormalized admin-table row: a letter joined with
// its sender's user record by matching IDPengirim.
type SuratWithSender struct {
	Surat
	Sender *UserRecord
}

// SenderName returns the joined sender's username, or a placeholder when the
// user record was not found in the fetched set.
func (s SuratWithSender) SenderName() string {
	if s.Sender == nil {
		return "-"
	}
	return s.Sender.Username
}
