package models

import "time"

// OrderStatus is the authoritative lifecycle state of an order.
// PENDING — order is created, payment outcome is not known yet;
// COMPLETED — gateway reported a settled payment;
// FAILED — gateway declined or the payment expired.
// COMPLETED and FAILED are terminal and write-once.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// Terminal reports whether the status is final.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// PaymentSignal is normalized payment outcome carried by a gateway callback
// or a gateway status poll. Closed set, keep reconcile switches exhaustive.
type PaymentSignal int

const (
	SignalStillPending PaymentSignal = iota
	SignalSuccess
	SignalFailure
)

// StatusSignal is a single status report about an order, normalized from
// whichever channel delivered it.
type StatusSignal struct {
	State         PaymentSignal
	Code          string
	TransactionID string
}

// NormalizeGatewayState maps a raw gateway poll state to a payment signal.
// Unknown states are treated as still pending so a gateway adding states
// cannot flip an order to FAILED.
func NormalizeGatewayState(state string) PaymentSignal {
	switch state {
	case "COMPLETE", "COMPLETED", "SUCCESS", "PAID":
		return SignalSuccess
	case "FAILED", "DECLINED", "EXPIRED", "CANCELED", "CANCELLED":
		return SignalFailure
	default:
		return SignalStillPending
	}
}

// LineItem is a single purchased position
type LineItem struct {
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// ShippingInfo is contact and delivery record; Email receives the confirmation
type ShippingInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// Order is order entity
type Order struct {
	ID               uint64
	OrderID          string
	UserID           uint64
	Amount           int64
	Items            []LineItem
	Shipping         ShippingInfo
	GatewayHandle    *string
	Status           OrderStatus
	GatewayStateCode *string
	GatewayTxnID     *string
	NotifiedAt       *time.Time
	CreatedAt        time.Time
}
