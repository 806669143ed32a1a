package inbox

import (
	"sync"
	"time"

	"mailsage/internal/model"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
)

// FetchStatus describes the outcome of the most recent inbox refresh.
type FetchStatus struct {
	Status    Status    `json:"status"`
	Notice    string    `json:"notice,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store holds one session's reconciled message list, its pin set and the
// per-message summarizing markers. Every method is atomic.
type Store struct {
	mu          sync.RWMutex
	emails      []model.Email
	pins        PinSet
	summarizing map[string]struct{}
	status      FetchStatus
	now         func() time.Time
}

func NewStore(pinned ...string) *Store {
	return &Store{
		pins:        NewPinSet(pinned...),
		summarizing: make(map[string]struct{}),
		status:      FetchStatus{Status: StatusIdle},
		now:         time.Now,
	}
}

// Emails returns a copy of the current list.
func (s *Store) Emails() []model.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Email, len(s.emails))
	copy(out, s.emails)
	return out
}

func (s *Store) Email(id string) (model.Email, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.emails[i], true
	}
	return model.Email{}, false
}

// Pins returns a snapshot of the pin set.
func (s *Store) Pins() PinSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pins.Clone()
}

// Snapshot returns the list and the pin set read under one lock.
func (s *Store) Snapshot() ([]model.Email, PinSet) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Email, len(s.emails))
	copy(out, s.emails)
	return out, s.pins.Clone()
}

func (s *Store) Status() FetchStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Store) BeginFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = FetchStatus{Status: StatusLoading, UpdatedAt: s.now()}
}

// ApplyFetch replaces the list with the fetched messages merged against the
// current pin set.
func (s *Store) ApplyFetch(fetched []model.Email) []model.Email {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emails = Merge(fetched, s.pins)
	s.status = FetchStatus{Status: StatusOK, UpdatedAt: s.now()}

	out := make([]model.Email, len(s.emails))
	copy(out, s.emails)
	return out
}

// FetchFailed keeps the previous list and records a transient notice.
func (s *Store) FetchFailed(notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = FetchStatus{Status: StatusFailed, Notice: notice, UpdatedAt: s.now()}
}

// TogglePin flips membership of id in the pin set and the matching
// message's flag. It returns the new membership.
func (s *Store) TogglePin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pinned := !s.pins.Has(id)
	s.applyPin(id, pinned)
	return pinned
}

// SetPinned forces membership. It reports whether anything changed.
func (s *Store) SetPinned(id string, pinned bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pins.Has(id) == pinned {
		return false
	}
	s.applyPin(id, pinned)
	return true
}

func (s *Store) applyPin(id string, pinned bool) {
	s.pins.set(id, pinned)
	if i := s.indexOf(id); i >= 0 {
		s.emails[i].IsPinned = pinned
	}
}

// SetSummary marks the message summarized and stores text.
func (s *Store) SetSummary(id, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.emails[i].HasSummary = true
	s.emails[i].Summary = text
	return true
}

// ClearSummary hides the summary but keeps its text for RestoreSummary.
func (s *Store) ClearSummary(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.emails[i].HasSummary = false
	return true
}

// RestoreSummary re-enables retained summary text. It returns false when
// there is nothing to restore.
func (s *Store) RestoreSummary(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 || s.emails[i].Summary == "" {
		return false
	}
	s.emails[i].HasSummary = true
	return true
}

// RemoveByID drops the message from the current list. Pin membership is
// left alone.
func (s *Store) RemoveByID(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.emails = append(s.emails[:i], s.emails[i+1:]...)
	return true
}

// BeginSummarizing marks id as in flight. It returns false if it already was.
func (s *Store) BeginSummarizing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.summarizing[id]; busy {
		return false
	}
	s.summarizing[id] = struct{}{}
	return true
}

func (s *Store) EndSummarizing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.summarizing, id)
}

func (s *Store) IsSummarizing(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, busy := s.summarizing[id]
	return busy
}

func (s *Store) indexOf(id string) int {
	for i := range s.emails {
		if s.emails[i].ID == id {
			return i
		}
	}
	return -1
}
