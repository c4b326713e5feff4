package service

import (
	"net/http"
	"testing"

	"decantifume-api/internal/dto"
	"decantifume-api/internal/event"
	"decantifume-api/internal/mocks"
	"decantifume-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderService(f *fixture, pub *mocks.MockPublisher) OrderService {
	return NewOrderService(f.db, f.users, f.products, f.orders, pub)
}

func (f *fixture) countOrders(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&count).Error)
	return count
}

func (f *fixture) stockOf(t *testing.T, productID string) (size, total int) {
	t.Helper()
	product, err := f.products.FindByID(t.Context(), productID)
	require.NoError(t, err)
	return product.FindSize(model.Size10ml).Stock, product.TotalStock
}

func TestOrderService_Create(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "buyer@example.com", model.RoleUser)
	product := f.createProduct(t, "Tobacco Vanille", 5)

	pub := &mocks.MockPublisher{}
	pub.On("Publish", mock.Anything, event.OrderCreated, mock.AnythingOfType("event.OrderEvent")).Return(nil).Once()
	svc := newOrderService(f, pub)

	order, err := svc.Create(t.Context(), user.ID, orderRequest(orderLine(product, 2)))
	require.NoError(t, err)
	pub.AssertExpectations(t)

	assert.Regexp(t, `^ORD-\d+-[A-Z0-9]{6}$`, order.OrderNumber)
	assert.Equal(t, model.OrderStatusPending, order.OrderStatus)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(55)))
	require.Len(t, order.Items, 1)
	require.NotNil(t, order.User)
	assert.Equal(t, user.Email, order.User.Email)

	sizeStock, totalStock := f.stockOf(t, product.ID)
	assert.Equal(t, 3, sizeStock)
	assert.Equal(t, 3, totalStock)
}

func TestOrderService_CreateRejected(t *testing.T) {
	tests := []struct {
		name    string
		stock   int
		request func(p *model.Product) *dto.CreateOrderRequest
		status  int
		message string
	}{
		{
			name:  "insufficient stock",
			stock: 2,
			request: func(p *model.Product) *dto.CreateOrderRequest {
				return orderRequest(orderLine(p, 3))
			},
			status:  http.StatusBadRequest,
			message: "Insufficient stock for Oud Wood (10ml)",
		},
		{
			name:  "lines exceed stock together",
			stock: 3,
			request: func(p *model.Product) *dto.CreateOrderRequest {
				return orderRequest(orderLine(p, 2), orderLine(p, 2))
			},
			status:  http.StatusBadRequest,
			message: "Insufficient stock for Oud Wood (10ml)",
		},
		{
			name:  "price mismatch",
			stock: 5,
			request: func(p *model.Product) *dto.CreateOrderRequest {
				line := orderLine(p, 1)
				line.Price = decimal.NewFromInt(20)
				line.TotalPrice = decimal.NewFromInt(20)
				return orderRequest(line)
			},
			status:  http.StatusBadRequest,
			message: "Price mismatch for Oud Wood",
		},
		{
			name:  "line total mismatch",
			stock: 5,
			request: func(p *model.Product) *dto.CreateOrderRequest {
				line := orderLine(p, 2)
				line.TotalPrice = decimal.NewFromInt(25)
				return orderRequest(line)
			},
			status:  http.StatusBadRequest,
			message: "Total price calculation error for Oud Wood",
		},
		{
			name:  "unknown size",
			stock: 5,
			request: func(p *model.Product) *dto.CreateOrderRequest {
				line := orderLine(p, 1)
				line.DecantSize = model.Size30ml
				return orderRequest(line)
			},
			status:  http.StatusBadRequest,
			message: "Decant size 30ml not available for Oud Wood",
		},
		{
			name:  "unknown product",
			stock: 5,
			request: func(p *model.Product) *dto.CreateOrderRequest {
				line := orderLine(p, 1)
				line.Product = "0b6f1c55-8f0e-4c1e-9a3d-5f8e1d2c3b4a"
				return orderRequest(orderLine(p, 1), line)
			},
			status:  http.StatusBadRequest,
			message: "One or more products not found",
		},
		{
			name:  "order total mismatch",
			stock: 5,
			request: func(p *model.Product) *dto.CreateOrderRequest {
				req := orderRequest(orderLine(p, 1))
				req.TotalAmount = decimal.NewFromInt(100)
				return req
			},
			status:  http.StatusBadRequest,
			message: "Total amount calculation is incorrect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			user := f.createUser(t, "buyer@example.com", model.RoleUser)
			product := f.createProduct(t, "Oud Wood", tt.stock)
			pub := &mocks.MockPublisher{}
			svc := newOrderService(f, pub)

			_, err := svc.Create(t.Context(), user.ID, tt.request(product))
			assertAppError(t, err, tt.status, tt.message)

			assert.Equal(t, int64(0), f.countOrders(t))
			sizeStock, totalStock := f.stockOf(t, product.ID)
			assert.Equal(t, tt.stock, sizeStock)
			assert.Equal(t, tt.stock, totalStock)
			pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_CreateUnknownUser(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Neroli Portofino", 5)
	svc := newOrderService(f, &mocks.MockPublisher{})

	_, err := svc.Create(t.Context(), "2d7c9a51-3e0b-4f6a-8c1d-9b4e7f2a6c30", orderRequest(orderLine(product, 1)))
	assertAppError(t, err, http.StatusNotFound, "User not found")
}

func TestOrderService_Access(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner@example.com", model.RoleUser)
	other := f.createUser(t, "other@example.com", model.RoleUser)
	admin := f.createUser(t, "admin@example.com", model.RoleAdmin)
	product := f.createProduct(t, "Lost Cherry", 5)

	pub := &mocks.MockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := newOrderService(f, pub)
	ctx := t.Context()

	order, err := svc.Create(ctx, owner.ID, orderRequest(orderLine(product, 1)))
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, order.ID, Caller{UserID: owner.ID, Role: model.RoleUser})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, order.ID, Caller{UserID: admin.ID, Role: model.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, order.ID, Caller{UserID: other.ID, Role: model.RoleUser})
	assertAppError(t, err, http.StatusForbidden, "Access denied")

	_, err = svc.GetByNumber(ctx, order.OrderNumber, Caller{UserID: other.ID, Role: model.RoleUser})
	assertAppError(t, err, http.StatusForbidden, "Access denied")

	_, err = svc.GetByID(ctx, "0b6f1c55-8f0e-4c1e-9a3d-5f8e1d2c3b4a", Caller{UserID: admin.ID, Role: model.RoleAdmin})
	assertAppError(t, err, http.StatusNotFound, "Order not found")

	mine, err := svc.ListMine(ctx, other.ID, &dto.OrderQuery{})
	require.NoError(t, err)
	assert.Empty(t, mine.Items)

	all, err := svc.ListAll(ctx, &dto.OrderQuery{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 1)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "buyer@example.com", model.RoleUser)
	product := f.createProduct(t, "Baccarat Rouge", 5)

	pub := &mocks.MockPublisher{}
	pub.On("Publish", mock.Anything, event.OrderCreated, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, event.OrderStatusChanged, mock.MatchedBy(func(e event.OrderEvent) bool {
		return e.PreviousStatus == "pending" && e.OrderStatus == "confirmed"
	})).Return(nil).Once()
	pub.On("Publish", mock.Anything, event.OrderStatusChanged, mock.Anything).Return(nil)
	svc := newOrderService(f, pub)
	ctx := t.Context()

	order, err := svc.Create(ctx, user.ID, orderRequest(orderLine(product, 1)))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, model.OrderStatusShipped)
	assertAppError(t, err, http.StatusBadRequest, "Cannot change order status from pending to shipped")

	updated, err := svc.UpdateStatus(ctx, order.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, updated.OrderStatus)

	cancelled := model.OrderStatusCancelled
	updated, err = svc.Update(ctx, order.ID, &dto.UpdateOrderRequest{OrderStatus: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, updated.OrderStatus)

	_, err = svc.UpdateStatus(ctx, order.ID, model.OrderStatusProcessing)
	assertAppError(t, err, http.StatusBadRequest, "Cannot change order status from cancelled to processing")
	pub.AssertExpectations(t)
}

func TestOrderService_Stats(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", model.RoleUser)
	bob := f.createUser(t, "bob@example.com", model.RoleUser)
	product := f.createProduct(t, "Santal 33", 10)

	pub := &mocks.MockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := newOrderService(f, pub)
	ctx := t.Context()

	_, err := svc.Create(ctx, alice.ID, orderRequest(orderLine(product, 1)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, orderRequest(orderLine(product, 2)))
	require.NoError(t, err)

	global, err := svc.Stats(ctx, Caller{UserID: "admin", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, int64(2), global.TotalOrders)
	assert.Equal(t, int64(2), global.PendingOrders)

	own, err := svc.Stats(ctx, Caller{UserID: alice.ID, Role: model.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, int64(1), own.TotalOrders)
}
