package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shoply/checkout/internal/gateway"
	"github.com/shoply/checkout/internal/models"
	"github.com/shoply/checkout/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderInput() models.Order {
	return models.Order{
		UserID: 1,
		Amount: 500,
		Items: []models.LineItem{
			{Name: "mug", Quantity: 1, UnitPrice: 300},
			{Name: "sticker", Quantity: 2, UnitPrice: 100},
		},
		Shipping: models.ShippingInfo{
			Name:  "Ada",
			Email: "ada@example.com",
			Phone: "5551234",
		},
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(order *models.Order)
	}{
		{
			name:   "zero_amount",
			mutate: func(order *models.Order) { order.Amount = 0 },
		},
		{
			name:   "negative_amount",
			mutate: func(order *models.Order) { order.Amount = -10 },
		},
		{
			name:   "no_items",
			mutate: func(order *models.Order) { order.Items = nil },
		},
		{
			name:   "no_email",
			mutate: func(order *models.Order) { order.Shipping.Email = "" },
		},
		{
			name:   "no_user",
			mutate: func(order *models.Order) { order.UserID = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// bad input must not reach the store or the gateway
			repoMock := mocks.NewMockOrderRepository(ctrl)
			repoMock.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Times(0)
			gwMock := mocks.NewMockGatewayClient(ctrl)
			gwMock.EXPECT().Initiate(gomock.Any(), gomock.Any()).Times(0)

			svc := NewOrderService(repoMock, gwMock, &fakeNotifier{}, "http://localhost")

			order := newOrderInput()
			tt.mutate(&order)

			_, _, err := svc.CreateOrder(context.Background(), &order)

			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestCreateOrder_InitiatesPayment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newFakeStore()

	gwMock := mocks.NewMockGatewayClient(ctrl)
	var initReq gateway.InitiateRequest
	gwMock.EXPECT().Initiate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req gateway.InitiateRequest) (*gateway.InitiateResult, error) {
			initReq = req
			return &gateway.InitiateResult{
				Handle:      "H1",
				RedirectURL: "https://gateway.example/pay/H1",
			}, nil
		})

	svc := NewOrderService(store, gwMock, &fakeNotifier{}, "http://localhost:8080")

	order := newOrderInput()
	created, redirectURL, err := svc.CreateOrder(context.Background(), &order)

	require.NoError(t, err)
	assert.NotEmpty(t, created.OrderID)
	assert.Equal(t, models.OrderStatusPending, created.Status)
	assert.Equal(t, "https://gateway.example/pay/H1", redirectURL)
	require.NotNil(t, created.GatewayHandle)
	assert.Equal(t, "H1", *created.GatewayHandle)

	assert.Equal(t, created.OrderID, initReq.OrderID)
	assert.Equal(t, int64(500), initReq.Amount)
	assert.Equal(t, "5551234", initReq.Phone)
	assert.Equal(t, "http://localhost:8080/orders/"+created.OrderID, initReq.RedirectURL)
	assert.Equal(t, "http://localhost:8080/api/gateway/callback", initReq.CallbackURL)

	stored, err := store.GetOrderByID(context.Background(), created.OrderID)
	require.NoError(t, err)
	require.NotNil(t, stored.GatewayHandle)
	assert.Equal(t, "H1", *stored.GatewayHandle)
}

func TestCreateOrder_InitiationFailureRetainsOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newFakeStore()

	gwMock := mocks.NewMockGatewayClient(ctrl)
	gwMock.EXPECT().Initiate(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

	svc := NewOrderService(store, gwMock, &fakeNotifier{}, "http://localhost")

	order := newOrderInput()
	created, _, err := svc.CreateOrder(context.Background(), &order)

	assert.ErrorIs(t, err, models.ErrGatewayUnavailable)
	require.NotNil(t, created)

	// the persisted record is kept for later reconciliation
	stored, err := store.GetOrderByID(context.Background(), created.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Nil(t, stored.GatewayHandle)
}

func TestQueryStatus_UnknownOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gwMock := mocks.NewMockGatewayClient(ctrl)
	gwMock.EXPECT().QueryStatus(gomock.Any(), gomock.Any()).Times(0)

	svc := NewOrderService(newFakeStore(), gwMock, &fakeNotifier{}, "http://localhost")

	_, err := svc.QueryStatus(context.Background(), "missing")

	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestQueryStatus_TerminalSkipsGateway(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newFakeStore()
	order := pendingOrder("o1")
	order.Status = models.OrderStatusFailed
	store.put(order)

	gwMock := mocks.NewMockGatewayClient(ctrl)
	gwMock.EXPECT().QueryStatus(gomock.Any(), gomock.Any()).Times(0)

	svc := NewOrderService(store, gwMock, &fakeNotifier{}, "http://localhost")

	got, err := svc.QueryStatus(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, got.Status)
}

func TestQueryStatus_MissingHandle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newFakeStore()
	order := pendingOrder("o1")
	order.GatewayHandle = nil
	store.put(order)

	gwMock := mocks.NewMockGatewayClient(ctrl)
	gwMock.EXPECT().QueryStatus(gomock.Any(), gomock.Any()).Times(0)

	svc := NewOrderService(store, gwMock, &fakeNotifier{}, "http://localhost")

	_, err := svc.QueryStatus(context.Background(), "o1")

	assert.ErrorIs(t, err, models.ErrMissingHandle)

	// a failed initiation never mutates the order
	stored, err := store.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestQueryStatus_GatewayErrorDoesNotMutate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newFakeStore()
	store.put(pendingOrder("o1"))

	gwMock := mocks.NewMockGatewayClient(ctrl)
	gwMock.EXPECT().QueryStatus(gomock.Any(), "H1").Return(nil, assert.AnError)

	notifier := &fakeNotifier{}
	svc := NewOrderService(store, gwMock, notifier, "http://localhost")

	_, err := svc.QueryStatus(context.Background(), "o1")

	assert.ErrorIs(t, err, models.ErrGatewayUnavailable)

	stored, err := store.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Equal(t, 0, notifier.sentCount())
}

func TestQueryStatus_SuccessConverges(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newFakeStore()
	store.put(pendingOrder("o1"))

	gwMock := mocks.NewMockGatewayClient(ctrl)
	gwMock.EXPECT().QueryStatus(gomock.Any(), "H1").Return(&gateway.StatusResult{
		State:         "COMPLETE",
		Code:          "PAYMENT_SUCCESS",
		TransactionID: "T1",
	}, nil)

	notifier := &fakeNotifier{}
	svc := NewOrderService(store, gwMock, notifier, "http://localhost")

	got, err := svc.QueryStatus(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
	require.NotNil(t, got.GatewayTxnID)
	assert.Equal(t, "T1", *got.GatewayTxnID)
	assert.Equal(t, 1, notifier.sentCount())
}

func TestQueryStatus_StillPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := newFakeStore()
	store.put(pendingOrder("o1"))

	gwMock := mocks.NewMockGatewayClient(ctrl)
	gwMock.EXPECT().QueryStatus(gomock.Any(), "H1").Return(&gateway.StatusResult{
		State: "PENDING",
		Code:  "PAYMENT_PENDING",
	}, nil)

	svc := NewOrderService(store, gwMock, &fakeNotifier{}, "http://localhost")

	got, err := svc.QueryStatus(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
}

func TestListUserOrders_Empty(t *testing.T) {
	svc := NewOrderService(newFakeStore(), nil, &fakeNotifier{}, "http://localhost")

	_, err := svc.ListUserOrders(context.Background(), 1)

	assert.ErrorIs(t, err, models.ErrDataNotFound)
}
