package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateAndClearCart(ctx context.Context, order *models.Order, sessionID string) error {
	return m.Called(ctx, order, sessionID).Error(0)
}

func (m *MockOrderRepository) GetByInvoice(ctx context.Context, invoice, customerID string) (*models.Order, error) {
	args := m.Called(ctx, invoice, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, invoice, customerID string, expected, next models.OrderStatus) error {
	return m.Called(ctx, invoice, customerID, expected, next).Error(0)
}

type orderFixture struct {
	svc       *services.OrderService
	carts     *repositories.MockCartRepository
	orders    *repositories.MockOrderRepository
	users     *MockUserRepository
	publisher *MockPublisher
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	carts := repositories.NewMockCartRepository()
	orders := repositories.NewMockOrderRepository(carts)
	users := new(MockUserRepository)
	publisher := new(MockPublisher)
	svc := services.NewOrderService(orders, users, pricing.NewEngine(pricing.DefaultTaxRate), publisher, zap.NewNop())
	return orderFixture{svc: svc, carts: carts, orders: orders, users: users, publisher: publisher}
}

func phoneLine(qty int) models.LineItem {
	return models.LineItem{ProductID: "p1", Name: "Phone", Price: decimal.NewFromInt(100), Discount: 10, Quantity: qty, Color: "black", Image: "phone.jpg"}
}

func fillCart(t *testing.T, carts *repositories.MockCartRepository, sessionID string, items ...models.LineItem) *models.Cart {
	t.Helper()
	cart := models.NewCart(items...)
	require.NoError(t, carts.Save(context.Background(), sessionID, cart))
	return cart
}

func TestOrderService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	cart := fillCart(t, f.carts, "s1", phoneLine(2))

	var published services.OrderEvent
	f.publisher.On("Publish", services.OrderExchange, services.EventOrderPlaced, mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, json.Unmarshal(args.Get(2).([]byte), &published))
		}).
		Return(nil).Once()

	order, err := f.svc.PlaceOrder(ctx, "cust-1", "s1", cart.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{24}$`), order.Invoice)
	require.Len(t, order.Items, 1)
	assert.Empty(t, order.Items[0].Image, "display fields are not persisted")

	left, err := f.carts.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, left.IsEmpty(), "checkout clears the cart")

	stored, err := f.svc.GetOrder(ctx, order.Invoice, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "190.80", f.svc.Totals(stored).GrandTotal.StringFixed(2))

	assert.Equal(t, order.Invoice, published.Invoice)
	assert.Equal(t, "Pending", published.Status)
	assert.True(t, decimal.RequireFromString("190.80").Equal(published.GrandTotal))
	f.publisher.AssertExpectations(t)
}

func TestOrderService_PlaceOrderEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	_, err := f.svc.PlaceOrder(ctx, "cust-1", "s1", nil)
	assert.ErrorIs(t, err, services.ErrEmptyCart)

	orders, err := f.svc.ListOrders(ctx, "cust-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrderPersistenceFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	carts := repositories.NewMockCartRepository()
	cart := fillCart(t, carts, "s1", phoneLine(1))

	orders := new(MockOrderRepository)
	orders.On("CreateAndClearCart", ctx, mock.AnythingOfType("*models.Order"), "s1").Return(errors.New("database is locked")).Once()
	publisher := new(MockPublisher)
	svc := services.NewOrderService(orders, new(MockUserRepository), pricing.NewEngine(pricing.DefaultTaxRate), publisher, zap.NewNop())

	_, err := svc.PlaceOrder(ctx, "cust-1", "s1", cart.Snapshot())
	assert.ErrorIs(t, err, services.ErrPersistence)
	assert.Contains(t, err.Error(), "database is locked")

	left, err := carts.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, left.Len())
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	orders.AssertExpectations(t)
}

func TestOrderService_InvoicesAreUnique(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		fillCart(t, f.carts, "s1", phoneLine(1))
		order, err := f.svc.PlaceOrder(ctx, "cust-1", "s1", []models.LineItem{phoneLine(1)})
		require.NoError(t, err)
		require.False(t, seen[order.Invoice])
		seen[order.Invoice] = true
	}
}

func TestOrderService_MarkPaid(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.publisher.On("Publish", services.OrderExchange, services.EventOrderPlaced, mock.Anything).Return(nil).Once()
	f.publisher.On("Publish", services.OrderExchange, services.EventOrderPaid, mock.Anything).Return(errors.New("broker down")).Once()
	fillCart(t, f.carts, "s1", phoneLine(1))

	order, err := f.svc.PlaceOrder(ctx, "cust-1", "s1", []models.LineItem{phoneLine(1)})
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkPaid(ctx, order.Invoice, "cust-1"), "a broker failure does not fail the transition")

	err = f.svc.MarkPaid(ctx, order.Invoice, "cust-1")
	assert.ErrorIs(t, err, services.ErrAlreadyPaid)

	err = f.svc.MarkPaid(ctx, "unknown", "cust-1")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)

	err = f.svc.MarkPaid(ctx, order.Invoice, "cust-2")
	assert.ErrorIs(t, err, services.ErrOrderNotFound, "another customer's invoice is not found")

	stored, err := f.svc.GetOrder(ctx, order.Invoice, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
	assert.Len(t, stored.Items, 1, "items never change after placement")
	f.publisher.AssertExpectations(t)
}

func TestOrderService_Detail(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetByID", ctx, "cust-1").Return(&models.User{ID: "cust-1", Name: "Ada"}, nil)
	fillCart(t, f.carts, "s1", phoneLine(2))

	order, err := f.svc.PlaceOrder(ctx, "cust-1", "s1", []models.LineItem{phoneLine(2)})
	require.NoError(t, err)

	detail, err := f.svc.Detail(ctx, order.Invoice, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", detail.Customer.Name)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, "20", detail.Lines[0].Discount.String())
	assert.Equal(t, "10.80", detail.Totals.Tax.StringFixed(2))

	_, err = f.svc.Detail(ctx, "missing", "cust-1")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestOrderService_NilPublisher(t *testing.T) {
	carts := repositories.NewMockCartRepository()
	svc := services.NewOrderService(repositories.NewMockOrderRepository(carts), new(MockUserRepository), pricing.NewEngine(pricing.DefaultTaxRate), nil, zap.NewNop())
	fillCart(t, carts, "s1", phoneLine(1))

	order, err := svc.PlaceOrder(context.Background(), "cust-1", "s1", []models.LineItem{phoneLine(1)})
	require.NoError(t, err)
	assert.NoError(t, svc.MarkPaid(context.Background(), order.Invoice, "cust-1"))
}

func TestOrderService_CheckoutTwiceFromOneCart(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	f.publisher.On("Publish", services.OrderExchange, services.EventOrderPlaced, mock.Anything).Return(nil).Once()
	fillCart(t, f.carts, "s1", phoneLine(2))

	// both requests read the cart before either checks out
	first, err := f.carts.Load(ctx, "s1")
	require.NoError(t, err)
	second, err := f.carts.Load(ctx, "s1")
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, "cust-1", "s1", first.Snapshot())
	require.NoError(t, err)
	_, err = f.svc.PlaceOrder(ctx, "cust-1", "s1", second.Snapshot())
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.NotErrorIs(t, err, services.ErrPersistence)

	orders, err := f.svc.ListOrders(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	f.publisher.AssertExpectations(t)
}
