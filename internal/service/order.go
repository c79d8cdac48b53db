package service

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"github.com/shoply/checkout/internal/gateway"
	"github.com/shoply/checkout/internal/logger"
	"github.com/shoply/checkout/internal/models"
	"go.uber.org/zap"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order to database
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by order id
	GetOrderByID(ctx context.Context, orderID string) (*models.Order, error)
	// GetOrdersByUserID gets user orders
	GetOrdersByUserID(ctx context.Context, userID uint64) ([]models.Order, error)
	// SetGatewayHandle stores gateway handle for order, write-once
	SetGatewayHandle(ctx context.Context, orderID string, handle string) error
	// TransitionStatus atomically moves order from PENDING to terminal status
	TransitionStatus(ctx context.Context, orderID string, status models.OrderStatus, stateCode string, txnID *string) (bool, error)
	// ClaimNotification atomically claims the right to send the confirmation
	ClaimNotification(ctx context.Context, orderID string) (bool, error)
}

// GatewayClient is interface for the payment gateway
type GatewayClient interface {
	// Initiate registers a payment with the gateway
	Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResult, error)
	// QueryStatus returns gateway-side payment state for the handle
	QueryStatus(ctx context.Context, handle string) (*gateway.StatusResult, error)
}

// Notifier sends the order confirmation, no retry contract assumed
type Notifier interface {
	SendConfirmation(ctx context.Context, order *models.Order) error
}

// OrderService owns the order lifecycle
type OrderService struct {
	repo     OrderRepository
	gw       GatewayClient
	notifier Notifier
	baseURL  string
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository, gw GatewayClient, notifier Notifier, baseURL string) *OrderService {
	return &OrderService{
		repo:     repo,
		gw:       gw,
		notifier: notifier,
		baseURL:  baseURL,
	}
}

// CreateOrder validates input, persists a PENDING order and initiates the
// payment with the gateway. When initiation fails the persisted order is
// retained without a handle so a later retry or manual reconciliation can
// still resolve it; the caller gets ErrGatewayUnavailable.
func (os *OrderService) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, string, error) {
	if order.UserID == 0 || order.Amount <= 0 || len(order.Items) == 0 || order.Shipping.Email == "" {
		return nil, "", models.ErrValidation
	}

	order.OrderID = uuid.NewString()
	order.Status = models.OrderStatusPending

	order, err := os.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, "", err
	}

	redirectURL, err := url.JoinPath(os.baseURL, "orders", order.OrderID)
	if err != nil {
		return nil, "", err
	}
	callbackURL, err := url.JoinPath(os.baseURL, "api", "gateway", "callback")
	if err != nil {
		return nil, "", err
	}

	res, err := os.gw.Initiate(ctx, gateway.InitiateRequest{
		OrderID:     order.OrderID,
		Amount:      order.Amount,
		RedirectURL: redirectURL,
		CallbackURL: callbackURL,
		UserID:      order.UserID,
		Phone:       order.Shipping.Phone,
	})
	if err != nil {
		logger.Log.Error("payment initiation failed, order retained",
			zap.String("order_id", order.OrderID),
			zap.Error(err))
		return order, "", models.ErrGatewayUnavailable
	}

	if err := os.repo.SetGatewayHandle(ctx, order.OrderID, res.Handle); err != nil {
		logger.Log.Error("cannot store gateway handle",
			zap.String("order_id", order.OrderID),
			zap.Error(err))
		return order, "", err
	}

	handle := res.Handle
	order.GatewayHandle = &handle

	return order, res.RedirectURL, nil
}

// QueryStatus actively re-queries the gateway for a pending order and routes
// the result through Reconcile. Terminal orders are answered from the store
// without a gateway call.
func (os *OrderService) QueryStatus(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status.Terminal() {
		return order, nil
	}

	if order.GatewayHandle == nil {
		return nil, models.ErrMissingHandle
	}

	st, err := os.gw.QueryStatus(ctx, *order.GatewayHandle)
	if err != nil {
		// a failed query never implies FAILED, the order stays as is
		logger.Log.Warn("gateway status query failed",
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, models.ErrGatewayUnavailable
	}

	return os.Reconcile(ctx, orderID, st.Signal())
}

// ListUserOrders returns list of user orders
func (os *OrderService) ListUserOrders(ctx context.Context, userID uint64) ([]models.Order, error) {
	orders, err := os.repo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return nil, models.ErrDataNotFound
	}

	return orders, nil
}
