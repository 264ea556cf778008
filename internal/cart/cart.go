package cart

import (
	"errors"
	"sync"
)

var (
	ErrNotFound = errors.New("user not found")
)

// Item is a single cart row. Carts are keyed per user; a quantity of zero is
// equivalent to the row being absent.
type Item struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type Repository interface {
	Get(userID int) ([]Item, error)
	// Set stores the exact quantity for a product; qty <= 0 removes the row.
	Set(userID int, productID int, qty int) ([]Item, error)
	Clear(userID int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int]map[int]int // userID -> productID -> quantity
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int]map[int]int)}
}

func (r *InMemoryRepository) Get(userID int) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return itemsOf(r.carts[userID]), nil
}

func (r *InMemoryRepository) Set(userID int, productID int, qty int) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.carts[userID]
	if m == nil {
		m = make(map[int]int)
		r.carts[userID] = m
	}
	if qty <= 0 {
		delete(m, productID)
	} else {
		m[productID] = qty
	}
	return itemsOf(m), nil
}

func (r *InMemoryRepository) Clear(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func itemsOf(m map[int]int) []Item {
	out := make([]Item, 0, len(m))
	for pid, q := range m {
		out = append(out, Item{ProductID: pid, Quantity: q})
	}
	return out
}
