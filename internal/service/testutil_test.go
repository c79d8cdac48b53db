package service

import (
	"context"
	"sync"
	"time"

	"github.com/shoply/checkout/internal/models"
)

// fakeStore is an in-memory OrderRepository with the same conditional-write
// semantics as the postgres implementation. Used where mocks cannot model
// racing writers.
type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	nextID uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: map[string]*models.Order{}}
}

func (f *fakeStore) put(order models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.OrderID] = &order
}

func copyOrder(order *models.Order) *models.Order {
	cp := *order
	cp.Items = append([]models.LineItem(nil), order.Items...)
	return &cp
}

func (f *fakeStore) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.orders[order.OrderID]; ok {
		return nil, models.ErrConflictData
	}

	f.nextID++
	cp := copyOrder(order)
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	f.orders[order.OrderID] = cp

	return copyOrder(cp), nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return nil, models.ErrDataNotFound
	}

	return copyOrder(order), nil
}

func (f *fakeStore) GetOrdersByUserID(ctx context.Context, userID uint64) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	orders := []models.Order{}
	for _, order := range f.orders {
		if order.UserID == userID {
			orders = append(orders, *copyOrder(order))
		}
	}

	return orders, nil
}

func (f *fakeStore) SetGatewayHandle(ctx context.Context, orderID string, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return models.ErrDataNotFound
	}
	if order.GatewayHandle != nil {
		return models.ErrConflictData
	}

	order.GatewayHandle = &handle

	return nil
}

func (f *fakeStore) TransitionStatus(ctx context.Context, orderID string, status models.OrderStatus, stateCode string, txnID *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}
	if order.Status != models.OrderStatusPending {
		return false, nil
	}

	order.Status = status
	order.GatewayStateCode = &stateCode
	if txnID != nil {
		order.GatewayTxnID = txnID
	}

	return true, nil
}

func (f *fakeStore) ClaimNotification(ctx context.Context, orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}
	if order.NotifiedAt != nil {
		return false, nil
	}

	now := time.Now()
	order.NotifiedAt = &now

	return true, nil
}

// fakeNotifier records confirmation sends
type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *fakeNotifier) SendConfirmation(ctx context.Context, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil {
		return n.err
	}

	n.sent = append(n.sent, order.OrderID)

	return nil
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
