package category

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrNotFound   = errors.New("category not found")
	ErrNameExists = errors.New("category already exists")
)

// Repository provides access to category rows.
type Repository interface {
	List() ([]Category, error)
	Create(c Category) (Category, error)
	Update(id int, c Category) (Category, error)
	Delete(id int) error
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	items  []Category
	nextID int
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{items: make([]Category, 0, len(seed)), nextID: 1}
	for _, c := range seed {
		r.items = append(r.items, c)
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) List() ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, len(r.items))
	copy(out, r.items)
	return out, nil
}

func (r *InMemoryRepository) nameTaken(name string, exceptID int) bool {
	for _, c := range r.items {
		if c.ID != exceptID && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) Create(c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(c.Name, 0) {
		return Category{}, ErrNameExists
	}
	c.ID = r.nextID
	r.nextID++
	r.items = append(r.items, c)
	return c, nil
}

func (r *InMemoryRepository) Update(id int, c Category) (Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.items {
		if existing.ID == id {
			if r.nameTaken(c.Name, id) {
				return Category{}, ErrNameExists
			}
			c.ID = id
			r.items[i] = c
			return c, nil
		}
	}
	return Category{}, ErrNotFound
}

func (r *InMemoryRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.items {
		if c.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
