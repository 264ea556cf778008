package order

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("order not found")
)

// Ref identifies an order by the issuer's invoice id or by our external id.
// Lookups prefer the invoice id when both are present.
type Ref struct {
	InvoiceID  string
	ExternalID string
}

type Repository interface {
	Create(ord Order) (Order, error)
	// AttachInvoice records the issuer's invoice id/url on a provisional order.
	AttachInvoice(externalID, invoiceID, invoiceURL, updatedAt string) error
	FindByRef(ref Ref) (Order, error)
	// UpdateStatus overwrites status and updatedAt unconditionally,
	// preserving paidAt.
	UpdateStatus(ref Ref, status Status, updatedAt string) (Order, error)
	// MarkPaid performs the atomic PENDING -> PAID transition, setting paidAt.
	// The boolean reports whether the transition was applied; false means the
	// order exists but was not PENDING anymore.
	MarkPaid(ref Ref, updatedAt, paidAt string) (Order, bool, error)
	MarkNotified(externalID string, updatedAt string) error
	ListByUser(userID int) ([]Order, error)
	// ListAll returns every order, newest first.
	ListAll() ([]Order, error)
	Stats() (Stats, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders []Order
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ord.ID = r.nextID
	r.nextID++
	r.orders = append(r.orders, ord)
	return ord, nil
}

func (r *InMemoryRepository) AttachInvoice(externalID, invoiceID, invoiceURL, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ExternalID == externalID {
			r.orders[i].InvoiceID = invoiceID
			r.orders[i].InvoiceURL = invoiceURL
			r.orders[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) FindByRef(ref Ref) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(ref); i >= 0 {
		return r.orders[i], nil
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) UpdateStatus(ref Ref, status Status, updatedAt string) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ref)
	if i < 0 {
		return Order{}, ErrNotFound
	}
	r.orders[i].Status = status
	r.orders[i].UpdatedAt = updatedAt
	return r.orders[i], nil
}

func (r *InMemoryRepository) MarkPaid(ref Ref, updatedAt, paidAt string) (Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ref)
	if i < 0 {
		return Order{}, false, ErrNotFound
	}
	if r.orders[i].Status != StatusPending {
		return r.orders[i], false, nil
	}
	r.orders[i].Status = StatusPaid
	r.orders[i].UpdatedAt = updatedAt
	r.orders[i].PaidAt = paidAt
	return r.orders[i], true, nil
}

func (r *InMemoryRepository) MarkNotified(externalID string, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.orders {
		if r.orders[i].ExternalID == externalID {
			r.orders[i].NotificationSent = true
			r.orders[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0)
	for _, ord := range r.orders {
		if ord.UserID == userID {
			out = append(out, ord)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) ListAll() ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, len(r.orders))
	copy(out, r.orders)
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) Stats() (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var st Stats
	for _, ord := range r.orders {
		st.TotalOrders++
		switch ord.Status {
		case StatusPaid:
			st.PaidOrders++
			st.TotalRevenue += ord.Total
		case StatusPending:
			st.PendingPayments++
		}
	}
	return st, nil
}

// indexOf resolves a ref to an order index; invoice id wins over external id.
func (r *InMemoryRepository) indexOf(ref Ref) int {
	if ref.InvoiceID != "" {
		for i := range r.orders {
			if r.orders[i].InvoiceID == ref.InvoiceID {
				return i
			}
		}
		return -1
	}
	if ref.ExternalID != "" {
		for i := range r.orders {
			if r.orders[i].ExternalID == ref.ExternalID {
				return i
			}
		}
	}
	return -1
}

func sortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt == orders[j].CreatedAt {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt > orders[j].CreatedAt
	})
}
