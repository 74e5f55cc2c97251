package payment

import (
	"context"
	"sync"

	"github.com/wichananm65/boutique-backend/internal/order"
)

type memoryState struct {
	orders   map[string]NewOrder
	items    map[string][]order.Item
	payments map[string]PaymentRecord
	carts    map[string]int
}

func newMemoryState() *memoryState {
	return &memoryState{
		orders:   make(map[string]NewOrder),
		items:    make(map[string][]order.Item),
		payments: make(map[string]PaymentRecord),
		carts:    make(map[string]int),
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]order.Item(nil), v...)
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	return c
}

// InMemoryStore serialises units of work under a mutex and publishes a
// unit's writes only when it returns nil.
type InMemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{state: newMemoryState()}
}

func (s *InMemoryStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(&memoryTx{state: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// SetCart sets the number of cart lines held by userID.
func (s *InMemoryStore) SetCart(userID string, lines int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.carts[userID] = lines
}

func (s *InMemoryStore) CartLines(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.carts[userID]
}

func (s *InMemoryStore) Order(id string) (NewOrder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.state.orders[id]
	if ok {
		o.Items = append([]order.Item(nil), s.state.items[id]...)
	}
	return o, ok
}

func (s *InMemoryStore) Payment(transactionID string) (PaymentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.payments[transactionID]
	return p, ok
}

// Counts returns the number of orders, order items and payments.
func (s *InMemoryStore) Counts() (orders, items, payments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, list := range s.state.items {
		items += len(list)
	}
	return len(s.state.orders), items, len(s.state.payments)
}

type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) FindOrder(_ context.Context, providerTxID, orderID string) (OrderState, bool, error) {
	if providerTxID != "" {
		for _, o := range t.state.orders {
			if o.ProviderTxID == providerTxID {
				return o.OrderState, true, nil
			}
		}
	}
	if o, ok := t.state.orders[orderID]; ok && orderID != "" {
		return o.OrderState, true, nil
	}
	return OrderState{}, false, nil
}

func (t *memoryTx) CreateOrder(_ context.Context, o NewOrder) error {
	if _, exists := t.state.orders[o.ID]; exists {
		return ErrDuplicate
	}
	items := o.Items
	o.Items = nil
	t.state.orders[o.ID] = o
	if len(items) > 0 {
		t.state.items[o.ID] = append([]order.Item(nil), items...)
	}
	return nil
}

func (t *memoryTx) UpdateOrderState(_ context.Context, id, expectedStatus, status, paymentStatus, providerTxID string) (bool, error) {
	o, ok := t.state.orders[id]
	if !ok || o.Status != expectedStatus {
		return false, nil
	}
	o.Status = status
	o.PaymentStatus = paymentStatus
	if providerTxID != "" {
		o.ProviderTxID = providerTxID
	}
	t.state.orders[id] = o
	return true, nil
}

func (t *memoryTx) UpsertPayment(_ context.Context, p PaymentRecord) error {
	t.state.payments[p.TransactionID] = p
	return nil
}

func (t *memoryTx) ClearCart(_ context.Context, userID string) error {
	delete(t.state.carts, userID)
	return nil
}

func (t *memoryTx) CountItems(_ context.Context, orderID string) (int, error) {
	return len(t.state.items[orderID]), nil
}

func (t *memoryTx) AddItems(_ context.Context, orderID string, items []order.Item) error {
	t.state.items[orderID] = append(t.state.items[orderID], items...)
	return nil
}
