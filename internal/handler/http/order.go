package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shoply/checkout/internal/middleware"
	"github.com/shoply/checkout/internal/models"
)

type OrderService interface {
	// CreateOrder validates input, persists order and initiates the payment
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, string, error)
	// QueryStatus returns current order state, re-querying the gateway if pending
	QueryStatus(ctx context.Context, orderID string) (*models.Order, error)
	// ListUserOrders returns list of user orders
	ListUserOrders(ctx context.Context, userID uint64) ([]models.Order, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	Amount   int64               `json:"amount"`
	Items    []models.LineItem   `json:"items"`
	Shipping models.ShippingInfo `json:"shipping"`
}

type createOrderResponse struct {
	OrderID     string `json:"order_id"`
	RedirectURL string `json:"redirect_url"`
}

// CreateOrder creates new order and initiates the payment
// 201 — order is created, payment is initiated;
// 400 — invalid request body or order input;
// 401 — user is not authenticated;
// 502 — payment initiation failed, order is retained;
// 500 — internal error.
func (oh *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var createReq createOrderRequest

		if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order := models.Order{
			UserID:   userID,
			Amount:   createReq.Amount,
			Items:    createReq.Items,
			Shipping: createReq.Shipping,
		}

		created, redirectURL, err := oh.svc.CreateOrder(r.Context(), &order)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrValidation):
				http.Error(w, "invalid order", http.StatusBadRequest)
			case errors.Is(err, models.ErrGatewayUnavailable):
				http.Error(w, "payment initiation failed", http.StatusBadGateway)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(createOrderResponse{
			OrderID:     created.OrderID,
			RedirectURL: redirectURL,
		}); err != nil {
			return
		}
	}
}

type orderResponse struct {
	OrderID       string  `json:"order_id"`
	Status        string  `json:"status"`
	Amount        int64   `json:"amount"`
	StateCode     *string `json:"gateway_state_code,omitempty"`
	TransactionID *string `json:"transaction_id,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func toOrderResponse(order *models.Order) orderResponse {
	return orderResponse{
		OrderID:       order.OrderID,
		Status:        string(order.Status),
		Amount:        order.Amount,
		StateCode:     order.GatewayStateCode,
		TransactionID: order.GatewayTxnID,
		CreatedAt:     order.CreatedAt.Format(time.RFC3339),
	}
}

// GetOrderStatus returns current order state
// 200 — successful processing;
// 401 — user is not authenticated;
// 404 — order is unknown or belongs to another user;
// 409 — payment initiation never completed, retry later;
// 502 — gateway is unavailable, retry later;
// 500 — internal error.
func (oh *OrderHandler) GetOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orderID := chi.URLParam(r, "orderID")
		if orderID == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		order, err := oh.svc.QueryStatus(r.Context(), orderID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrMissingHandle):
				http.Error(w, "payment not initiated", http.StatusConflict)
			case errors.Is(err, models.ErrGatewayUnavailable):
				http.Error(w, "gateway unavailable", http.StatusBadGateway)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		if order.UserID != userID {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(toOrderResponse(order)); err != nil {
			return
		}
	}
}

// ListUserOrders returns list of user orders
// 200 — successful processing;
// 204 — user has no orders;
// 401 — user is not authenticated;
// 500 — internal error.
func (oh *OrderHandler) ListUserOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := oh.svc.ListUserOrders(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "no content", http.StatusNoContent)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toOrderResponse(&orders[i]))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			return
		}
	}
}
