package view

import (
	"sort"
	"strings"
	"time"

	"mailsage/internal/model"
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// PinLookup answers pin set membership.
type PinLookup interface {
	Has(id string) bool
}

// Apply filters and sorts emails for f. It never mutates its input and is
// deterministic for a given now.
func Apply(emails []model.Email, pins PinLookup, f Filter, now time.Time) []model.Email {
	query := strings.ToLower(f.SearchQuery)
	windowDays, windowed := f.TimeRange.Days()
	nowMillis := now.UnixMilli()

	out := make([]model.Email, 0, len(emails))
	for _, e := range emails {
		if f.ActiveTab == TabPinned && (pins == nil || !pins.Has(e.ID)) {
			continue
		}
		if query != "" && !matches(e, query) {
			continue
		}
		if windowed && DiffDays(nowMillis, e.Timestamp) > windowDays {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// DiffDays is ceil(|now - ts| / 1 day) with both values in epoch millis.
func DiffDays(nowMillis, tsMillis int64) int64 {
	diff := nowMillis - tsMillis
	if diff < 0 {
		diff = -diff
	}
	return (diff + dayMillis - 1) / dayMillis
}

func matches(e model.Email, lowered string) bool {
	for _, field := range [...]string{e.Subject, e.Sender.Name, e.Sender.Email, e.Body} {
		if strings.Contains(strings.ToLower(field), lowered) {
			return true
		}
	}
	return false
}

// Context projects a view into the compact index handed to the assistant.
func Context(emails []model.Email) []model.ContextEntry {
	out := make([]model.ContextEntry, len(emails))
	for i, e := range emails {
		out[i] = e.Context()
	}
	return out
}

// Neighbor returns the id delta positions away from current in the view.
// An unknown current id resolves to the first message when moving forward.
func Neighbor(emails []model.Email, current string, delta int) (string, bool) {
	if len(emails) == 0 {
		return "", false
	}
	idx := -1
	for i := range emails {
		if emails[i].ID == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		if delta > 0 {
			return emails[0].ID, true
		}
		return "", false
	}
	next := idx + delta
	if next < 0 || next >= len(emails) {
		return "", false
	}
	return emails[next].ID, true
}
