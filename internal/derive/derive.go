package derive

import (
	"sort"
	"strings"
	"time"

	"github.com/zaqqye/surat_tugas_web/internal/models"
)

// Window is a relative date filter applied to a letter's submission date.
type Window string

const (
	WindowAll   Window = ""
	WindowToday Window = "today"
	Window7d    Window = "7d"
	Window30d   Window = "30d"
	Window1y    Window = "1y"
)

// Contains reports whether t falls inside the window ending at now.
func (w Window) Contains(t, now time.Time) bool {
	switch w {
	case WindowToday:
		y1, m1, d1 := t.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case Window7d:
		return !t.Before(now.AddDate(0, 0, -7))
	case Window30d:
		return !t.Before(now.AddDate(0, 0, -30))
	case Window1y:
		return !t.Before(now.AddDate(-1, 0, 0))
	}
	return true
}

// SortKey selects the table ordering.
type SortKey string

const (
	SortNewest  SortKey = "newest"
	SortOldest  SortKey = "oldest"
	SortSubject SortKey = "subject"
	SortStatus  SortKey = "status"
)

// SuratQuery is the full client-side derivation input for a letter table:
// free-text search, categorical status filter, relative date window, sort.
// Each filter is an independent predicate, so application order never
// changes the result set.
type SuratQuery struct {
	Search string
	Status models.Status
	Window Window
	Sort   SortKey
}

// FilterSurat re-derives the visible rows from the full fetched collection.
// Pure: the input slice is never mutated. Recomputed from scratch on every
// request; fine at the tens-to-hundreds scale this dashboard sees.
func FilterSurat(in []models.Surat, q SuratQuery, now time.Time) []models.Surat {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.Surat, 0, len(in))
	for _, s := range in {
		if term != "" && !matchSurat(s, term) {
			continue
		}
		if q.Status != "" && LatestStatus(s) != q.Status {
			continue
		}
		if !q.Window.Contains(s.TanggalPengiriman, now) {
			continue
		}
		out = append(out, s)
	}
	sortSurat(out, q.Sort)
	return out
}

func matchSurat(s models.Surat, term string) bool {
	return strings.Contains(strings.ToLower(s.SubjectSurat), term) ||
		strings.Contains(strings.ToLower(s.IDPengirim.String()), term) ||
		strings.Contains(strings.ToLower(string(LatestStatus(s))), term)
}

func sortSurat(letters []models.Surat, key SortKey) {
	switch key {
	case SortOldest:
		sort.SliceStable(letters, func(i, j int) bool {
			return letters[i].TanggalPengiriman.Before(letters[j].TanggalPengiriman)
		})
	case SortSubject:
		sort.SliceStable(letters, func(i, j int) bool {
			return strings.ToLower(letters[i].SubjectSurat) < strings.ToLower(letters[j].SubjectSurat)
		})
	case SortStatus:
		sort.SliceStable(letters, func(i, j int) bool {
			return statusRank(LatestStatus(letters[i])) < statusRank(LatestStatus(letters[j]))
		})
	default: // newest first
		sort.SliceStable(letters, func(i, j int) bool {
			return letters[i].TanggalPengiriman.After(letters[j].TanggalPengiriman)
		})
	}
}

// FilterUsers applies search (username, NIM) and an optional role filter.
func FilterUsers(in []models.UserRecord, search, role string) []models.UserRecord {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.UserRecord, 0, len(in))
	for _, u := range in {
		if term != "" &&
			!strings.Contains(strings.ToLower(u.Username), term) &&
			!strings.Contains(strings.ToLower(u.NIM), term) {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	return out
}

// FilterNims applies search and an optional active/inactive filter.
func FilterNims(in []models.NimEntry, search, status string) []models.NimEntry {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.NimEntry, 0, len(in))
	for _, n := range in {
		if term != "" && !strings.Contains(strings.ToLower(n.NIM), term) {
			continue
		}
		if status != "" && n.Status != status {
			continue
		}
		out = append(out, n)
	}
	return out
}

// JoinSenders builds the denormalized admin rows by matching each letter's
// IDPengirim against the fetched user records. Unmatched senders stay nil.
func JoinSenders(letters []models.Surat, users []models.UserRecord) []models.SuratWithSender {
	byID := make(map[string]*models.UserRecord, len(users))
	for i := range users {
		byID[users[i].ID.String()] = &users[i]
	}
	out := make([]models.SuratWithSender, 0, len(letters))
	for _, s := range letters {
		out = append(out, models.SuratWithSender{Surat: s, Sender: byID[s.IDPengirim.String()]})
	}
	return out
}

// DefaultPageSize is the fixed table page size used by every list page.
const DefaultPageSize = 10

// Page slices one fixed-size page out of a derived collection. Page numbers
// are 1-based; out-of-range pages clamp to the nearest valid page.
func Page[T any](in []T, page, size int) (items []T, totalPages int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages = (len(in) + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * size
	end := start + size
	if end > len(in) {
		end = len(in)
	}
	return in[start:end], totalPages
}
