package address

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("address not found")
)

// Repository scopes every operation to the owning user. Touching another
// user's address yields ErrNotFound.
type Repository interface {
	List(userID string) ([]Address, error)
	Create(a Address) (Address, error)
	Update(a Address) (Address, error)
	Delete(userID, id string) error
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string]Address
}

func NewInMemoryRepository(seed []Address) *InMemoryRepository {
	r := &InMemoryRepository{data: make(map[string]Address, len(seed))}
	for _, a := range seed {
		r.data[a.ID] = a
	}
	return r
}

func (r *InMemoryRepository) List(userID string) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Address, 0)
	for _, a := range r.data {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sortAddresses(out)
	return out, nil
}

func (r *InMemoryRepository) clearDefaults(userID, exceptID string) {
	for id, a := range r.data {
		if a.UserID == userID && id != exceptID && a.IsDefault {
			a.IsDefault = false
			r.data[id] = a
		}
	}
}

func (r *InMemoryRepository) Create(a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.IsDefault {
		r.clearDefaults(a.UserID, a.ID)
	}
	r.data[a.ID] = a
	return a, nil
}

func (r *InMemoryRepository) Update(a Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[a.ID]
	if !ok || existing.UserID != a.UserID {
		return Address{}, ErrNotFound
	}
	if a.IsDefault {
		r.clearDefaults(a.UserID, a.ID)
	}
	a.CreatedAt = existing.CreatedAt
	r.data[a.ID] = a
	return a, nil
}

func (r *InMemoryRepository) Delete(userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[id]
	if !ok || existing.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// sortAddresses puts the default address first, then newest first.
func sortAddresses(list []Address) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsDefault != list[j].IsDefault {
			return list[i].IsDefault
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
