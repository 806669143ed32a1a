package memory

import (
	"context"
	"sort"
	"sync"

	"mailsage/internal/model"
	"mailsage/internal/repository"
)

type InMemoryUserRepository struct {
	users map[string]*model.User
	mutex sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[string]*model.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.users[user.ID] = user
	return nil
}

func (r *InMemoryUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.findFirst(func(u *model.User) bool { return u.GoogleID == googleID })
}

func (r *InMemoryUserRepository) findFirst(match func(*model.User) bool) (*model.User, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, user := range r.users {
		if match(user) {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *model.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.users[user.ID]; !exists {
		return repository.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

// Pin repository implementation
type InMemoryPinRepository struct {
	pins  map[string]map[string]struct{}
	mutex sync.RWMutex
}

func NewInMemoryPinRepository() *InMemoryPinRepository {
	return &InMemoryPinRepository{
		pins: make(map[string]map[string]struct{}),
	}
}

func (r *InMemoryPinRepository) ListPins(ctx context.Context, userID string) ([]string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, 0, len(r.pins[userID]))
	for id := range r.pins[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *InMemoryPinRepository) SetPin(ctx context.Context, userID, messageID string, pinned bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !pinned {
		delete(r.pins[userID], messageID)
		return nil
	}
	if r.pins[userID] == nil {
		r.pins[userID] = make(map[string]struct{})
	}
	r.pins[userID][messageID] = struct{}{}
	return nil
}

// Summary repository implementation
type InMemorySummaryRepository struct {
	summaries map[[2]string]model.SummaryRecord
	mutex     sync.RWMutex
}

func NewInMemorySummaryRepository() *InMemorySummaryRepository {
	return &InMemorySummaryRepository{
		summaries: make(map[[2]string]model.SummaryRecord),
	}
}

func (r *InMemorySummaryRepository) SaveSummary(ctx context.Context, record *model.SummaryRecord) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.summaries[[2]string{record.UserID, record.MessageID}] = *record
	return nil
}

func (r *InMemorySummaryRepository) FindSummary(ctx context.Context, userID, messageID string) (*model.SummaryRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	record, exists := r.summaries[[2]string{userID, messageID}]
	if !exists {
		return nil, repository.ErrNotFound
	}
	return &record, nil
}

func (r *InMemorySummaryRepository) DeleteSummary(ctx context.Context, userID, messageID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.summaries, [2]string{userID, messageID})
	return nil
}

// New returns a full set of in-memory repositories.
func New() *repository.Repositories {
	return &repository.Repositories{
		Users:     NewInMemoryUserRepository(),
		Pins:      NewInMemoryPinRepository(),
		Summaries: NewInMemorySummaryRepository(),
		Close:     func() error { return nil },
	}
}
