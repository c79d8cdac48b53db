package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shoply/checkout/internal/models"
	"github.com/shoply/checkout/internal/repository/postgres"
)

const pgErrUniqueViolationCode = "23505"

const (
	insertOrderQuery = `
						INSERT INTO orders (order_id, user_id, amount, items, shipping, status)
						VALUES ($1, $2, $3, $4, $5, $6)
						RETURNING id, order_id, user_id, amount, items, shipping, gateway_handle, status, gateway_state_code, gateway_txn_id, notified_at, created_at
`
	selectOrderByIDQuery = `
						SELECT id, order_id, user_id, amount, items, shipping, gateway_handle, status, gateway_state_code, gateway_txn_id, notified_at, created_at FROM orders
						WHERE order_id = $1
`
	selectOrdersByUserIDQuery = `
						SELECT id, order_id, user_id, amount, items, shipping, gateway_handle, status, gateway_state_code, gateway_txn_id, notified_at, created_at FROM orders
						WHERE user_id = $1
						ORDER BY created_at DESC
`
	// gateway handle is write-once
	setGatewayHandleQuery = `
						UPDATE orders
						SET gateway_handle = $2
						WHERE order_id = $1 AND gateway_handle IS NULL
`
	// compare-and-swap on status, terminal statuses never regress
	transitionStatusQuery = `
						UPDATE orders
						SET status = $2, gateway_state_code = $3, gateway_txn_id = COALESCE($4, gateway_txn_id)
						WHERE order_id = $1 AND status = 'PENDING'
`
	// notified_at is write-once, a successful claim authorizes a single send
	claimNotificationQuery = `
						UPDATE orders
						SET notified_at = now()
						WHERE order_id = $1 AND notified_at IS NULL
`
)

// OrderRepository implements OrderRepository interface
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := models.Order{}
	var items, shipping []byte

	err := row.Scan(&order.ID, &order.OrderID, &order.UserID, &order.Amount, &items, &shipping,
		&order.GatewayHandle, &order.Status, &order.GatewayStateCode, &order.GatewayTxnID,
		&order.NotifiedAt, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(shipping, &order.Shipping); err != nil {
		return nil, err
	}

	return &order, nil
}

// CreateOrder inserts new order to database
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}
	shipping, err := json.Marshal(order.Shipping)
	if err != nil {
		return nil, err
	}

	row := or.db.QueryRow(ctx, insertOrderQuery, order.OrderID, order.UserID, order.Amount, items, shipping, order.Status)

	created, err := scanOrder(row)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return created, nil
}

// GetOrderByID returns order by order id
func (or *OrderRepository) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return order, nil
}

// GetOrdersByUserID gets user orders
func (or *OrderRepository) GetOrdersByUserID(ctx context.Context, userID uint64) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, selectOrdersByUserIDQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// SetGatewayHandle stores gateway handle for order. The handle is write-once,
// a second call is a no-op.
func (or *OrderRepository) SetGatewayHandle(ctx context.Context, orderID string, handle string) error {
	cmd, err := or.db.Exec(ctx, setGatewayHandleQuery, orderID, handle)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrConflictData
	}

	return nil
}

// TransitionStatus atomically moves order from PENDING to given terminal
// status. Returns false when another writer already committed a terminal
// status, the order is left untouched in that case.
func (or *OrderRepository) TransitionStatus(ctx context.Context, orderID string, status models.OrderStatus, stateCode string, txnID *string) (bool, error) {
	cmd, err := or.db.Exec(ctx, transitionStatusQuery, orderID, status, stateCode, txnID)
	if err != nil {
		return false, err
	}

	return cmd.RowsAffected() == 1, nil
}

// ClaimNotification atomically claims the right to send the confirmation.
// Returns true exactly once per order.
func (or *OrderRepository) ClaimNotification(ctx context.Context, orderID string) (bool, error) {
	cmd, err := or.db.Exec(ctx, claimNotificationQuery, orderID)
	if err != nil {
		return false, err
	}

	return cmd.RowsAffected() == 1, nil
}
