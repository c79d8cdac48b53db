package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/shoply/checkout/internal/gateway"
	"github.com/shoply/checkout/internal/logger"
	"github.com/shoply/checkout/internal/models"
	"go.uber.org/zap"
)

type CallbackService interface {
	// Reconcile applies a status signal to the order
	Reconcile(ctx context.Context, orderID string, sig models.StatusSignal) (*models.Order, error)
}

// CallbackHandler represents HTTP handler for gateway notifications
type CallbackHandler struct {
	svc    CallbackService
	secret string
}

// NewCallbackHandler creates new CallbackHandler instance
func NewCallbackHandler(svc CallbackService, secret string) *CallbackHandler {
	return &CallbackHandler{
		svc:    svc,
		secret: secret,
	}
}

// HandleCallback receives a signed gateway notification
// 400 — signature is absent or payload cannot be decoded, nothing was touched;
// 200 — otherwise, even when the order is unknown or already settled, so the
// gateway does not retry a notification this service cannot act on.
func (ch *CallbackHandler) HandleCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		payload, err := gateway.DecodeCallback(body, r.Header.Get(gateway.SignatureHeader), ch.secret)
		if err != nil {
			http.Error(w, "invalid callback", http.StatusBadRequest)
			return
		}

		if _, err := ch.svc.Reconcile(r.Context(), payload.OrderID, payload.Signal()); err != nil {
			// logged and dropped, a retry from the gateway cannot help
			if errors.Is(err, models.ErrOrderNotFound) {
				logger.Log.Warn("callback for unknown order",
					zap.String("order_id", payload.OrderID))
			} else {
				logger.Log.Error("callback reconciliation failed",
					zap.String("order_id", payload.OrderID),
					zap.Error(err))
			}
		}

		w.WriteHeader(http.StatusOK)
	}
}
