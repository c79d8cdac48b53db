package service

import (
	"context"
	"errors"

	"github.com/shoply/checkout/internal/logger"
	"github.com/shoply/checkout/internal/models"
	"go.uber.org/zap"
)

// Reconcile applies a status signal to the order. Signals arrive from two
// unordered at-least-once channels, the gateway callback and the client
// poll; both reduce to this call. The conditional update in the repository
// is the only synchronization point: terminal statuses are write-once, and
// however many duplicates arrive in whatever order, the first committed
// terminal status wins and the confirmation is sent at most once.
func (os *OrderService) Reconcile(ctx context.Context, orderID string, sig models.StatusSignal) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			// the signal cannot be attributed, callbacks are not trusted
			// to carry enough data to create an order
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}

	// duplicate or late signal for a settled order
	if order.Status.Terminal() {
		return order, nil
	}

	switch sig.State {
	case models.SignalStillPending:
		return order, nil

	case models.SignalSuccess:
		txnID := sig.TransactionID
		won, err := os.repo.TransitionStatus(ctx, orderID, models.OrderStatusCompleted, sig.Code, &txnID)
		if err != nil {
			return nil, err
		}
		if won {
			os.dispatchConfirmation(ctx, orderID)
		}

	case models.SignalFailure:
		if _, err := os.repo.TransitionStatus(ctx, orderID, models.OrderStatusFailed, sig.Code, nil); err != nil {
			return nil, err
		}
	}

	// return whatever state committed, ours or a concurrent writer's
	return os.repo.GetOrderByID(ctx, orderID)
}

// dispatchConfirmation sends the confirmation for a completed order at most
// once. The claim on notified_at is the idempotency guard; a send failure
// after a successful claim leaves the order COMPLETED without a sent
// confirmation and is logged as a recoverable gap, not retried, because a
// retry risks duplicate delivery when the failure was on the
// acknowledgement path.
func (os *OrderService) dispatchConfirmation(ctx context.Context, orderID string) {
	claimed, err := os.repo.ClaimNotification(ctx, orderID)
	if err != nil {
		logger.Log.Error("cannot claim confirmation",
			zap.String("order_id", orderID),
			zap.Error(err))
		return
	}
	if !claimed {
		return
	}

	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Log.Error("cannot load order for confirmation",
			zap.String("order_id", orderID),
			zap.Error(err))
		return
	}

	if err := os.notifier.SendConfirmation(ctx, order); err != nil {
		logger.Log.Error("confirmation not sent, order stays completed",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}
