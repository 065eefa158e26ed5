package derive

import (
	"math"
	"sort"

	"github.com/zaqqye/surat_tugas_web/internal/models"
)

// LatestStatus resolves the display status of a letter. This is the single
// authoritative rule: a non-empty backend value wins; otherwise the newest
// history entry by tanggal_update (the client never assumes the backend
// pre-sorted the history); otherwise diproses.
func LatestStatus(s models.Surat) models.Status {
	if s.LatestStatus != "" {
		return s.LatestStatus
	}
	if len(s.Histories) == 0 {
		return models.StatusDiproses
	}
	histories := make([]models.History, len(s.Histories))
	copy(histories, s.Histories)
	sort.SliceStable(histories, func(i, j int) bool {
		return histories[i].TanggalUpdate.After(histories[j].TanggalUpdate)
	})
	return histories[0].Status
}

// Distribution is the per-status count aggregate shown on dashboards.
type Distribution struct {
	Diproses  int
	Disetujui int
	Ditolak   int
	Total     int
}

func Distribute(letters []models.Surat) Distribution {
	var d Distribution
	for _, s := range letters {
		switch LatestStatus(s) {
		case models.StatusDisetujui:
			d.Disetujui++
		case models.StatusDitolak:
			d.Ditolak++
		default:
			d.Diproses++
		}
		d.Total++
	}
	return d
}

// ApprovalRate returns the approved share as a rounded percentage.
func (d Distribution) ApprovalRate() int {
	if d.Total == 0 {
		return 0
	}
	return int(math.Round(float64(d.Disetujui) / float64(d.Total) * 100))
}

// Badge is the render metadata for one status. The mapping is a closed
// dispatch over the status set; unknown values get an explicit fallback
// instead of disappearing from the page.
type Badge struct {
	Label string
	Color string
	Icon  string
}

func BadgeFor(s models.Status) Badge {
	switch s {
	case models.StatusDiproses:
		return Badge{Label: "Diproses", Color: "yellow", Icon: "clock"}
	case models.StatusDisetujui:
		return Badge{Label: "Disetujui", Color: "green", Icon: "check-circle"}
	case models.StatusDitolak:
		return Badge{Label: "Ditolak", Color: "red", Icon: "x-circle"}
	}
	return Badge{Label: string(s), Color: "gray", Icon: "help-circle"}
}

// statusRank orders statuses for the status sort key: pending work first.
func statusRank(s models.Status) int {
	switch s {
	case models.StatusDiproses:
		return 0
	case models.StatusDisetujui:
		return 1
	case models.StatusDitolak:
		return 2
	}
	return 3
}
