// internal/services/order_service_test.go
package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/models"
	"github.com/shopverse/storefront-backend/internal/utils"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OrderService
	user    *models.User
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewOrderService(s.db, newTestConfig())
	s.user = createTestUser(s.T(), s.db, "buyer@example.com", models.UserRoleCustomer)
}

func (s *OrderServiceTestSuite) TestCreateComputesTotalsWithFlatShipping() {
	product := createTestProduct(s.T(), s.db, "Mouse", 20, 10)

	order, err := s.service.Create(s.user.ID, &CreateOrderRequest{
		Items:           []OrderLineRequest{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   models.PaymentMethodStripe,
	})
	require.NoError(s.T(), err)

	// Subtotal 40 is under the free-shipping threshold.
	assert.InDelta(s.T(), 4.0, order.TaxPrice, 0.001)
	assert.InDelta(s.T(), 10.0, order.ShippingPrice, 0.001)
	assert.InDelta(s.T(), 54.0, order.TotalPrice, 0.001)
	assert.Equal(s.T(), models.OrderStatusPending, order.Status)
	assert.Equal(s.T(), models.RefundStatusNone, order.RefundStatus)
}

func (s *OrderServiceTestSuite) TestCreateFreeShippingAboveThreshold() {
	product := createTestProduct(s.T(), s.db, "Monitor", 150, 5)

	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	assert.InDelta(s.T(), 15.0, order.TaxPrice, 0.001)
	assert.Zero(s.T(), order.ShippingPrice)
	assert.InDelta(s.T(), 165.0, order.TotalPrice, 0.001)
}

func (s *OrderServiceTestSuite) TestCreateSnapshotsDiscountedPrice() {
	product := createTestProduct(s.T(), s.db, "Keyboard", 100, 5)
	require.NoError(s.T(), s.db.Model(product).UpdateColumn("discount", 25).Error)

	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	require.Len(s.T(), order.Items, 1)
	assert.InDelta(s.T(), 75.0, order.Items[0].UnitPrice, 0.001)

	// Raising the catalog price later must not touch the frozen line price.
	require.NoError(s.T(), s.db.Model(product).UpdateColumn("price", 500).Error)
	var item models.OrderItem
	require.NoError(s.T(), s.db.First(&item, "order_id = ?", order.ID).Error)
	assert.InDelta(s.T(), 75.0, item.UnitPrice, 0.001)
}

func (s *OrderServiceTestSuite) TestCreateDecrementsStock() {
	product := createTestProduct(s.T(), s.db, "Cable", 5, 8)

	createTestOrder(s.T(), s.service, s.user.ID, product.ID, 3)

	var reloaded models.Product
	require.NoError(s.T(), s.db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(s.T(), 5, reloaded.Stock)
}

func (s *OrderServiceTestSuite) TestCreateInsufficientStockRollsBackEverything() {
	plenty := createTestProduct(s.T(), s.db, "Plenty", 10, 50)
	scarce := createTestProduct(s.T(), s.db, "Scarce", 10, 1)

	_, err := s.service.Create(s.user.ID, &CreateOrderRequest{
		Items: []OrderLineRequest{
			{ProductID: plenty.ID, Quantity: 5},
			{ProductID: scarce.ID, Quantity: 2},
		},
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   models.PaymentMethodStripe,
	})
	require.ErrorIs(s.T(), err, ErrInsufficientStock)

	// The passing line's decrement must not survive the failed transaction.
	var reloaded models.Product
	require.NoError(s.T(), s.db.First(&reloaded, "id = ?", plenty.ID).Error)
	assert.Equal(s.T(), 50, reloaded.Stock)

	var count int64
	s.db.Model(&models.Order{}).Count(&count)
	assert.Zero(s.T(), count)
}

func (s *OrderServiceTestSuite) TestCreateUnknownProduct() {
	missing := createTestProduct(s.T(), s.db, "Ghost", 10, 1)
	require.NoError(s.T(), s.db.Unscoped().Delete(missing).Error)

	_, err := s.service.Create(s.user.ID, &CreateOrderRequest{
		Items:           []OrderLineRequest{{ProductID: missing.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   models.PaymentMethodStripe,
	})
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *OrderServiceTestSuite) TestOrderNumberFormat() {
	product := createTestProduct(s.T(), s.db, "Widget", 10, 5)
	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	assert.Regexp(s.T(), regexp.MustCompile(`^ORD-\d{6}-[A-Z0-9]{6}$`), order.OrderNumber)
}

func (s *OrderServiceTestSuite) TestOrderNumberCollisionRetriesInsert() {
	product := createTestProduct(s.T(), s.db, "Gadget", 10, 5)
	existing := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	orig := generateOrderNumber
	defer func() { generateOrderNumber = orig }()

	// First draw collides with the existing order's number; the insert must
	// be retried with a fresh one instead of failing the whole order.
	calls := 0
	generateOrderNumber = func() (string, error) {
		calls++
		if calls == 1 {
			return existing.OrderNumber, nil
		}
		return orig()
	}

	order, err := s.service.Create(s.user.ID, &CreateOrderRequest{
		Items:           []OrderLineRequest{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   models.PaymentMethodStripe,
	})
	require.NoError(s.T(), err)
	assert.NotEqual(s.T(), existing.OrderNumber, order.OrderNumber)
	assert.GreaterOrEqual(s.T(), calls, 2)
}

func (s *OrderServiceTestSuite) TestMarkPaidReturnsReloadedOrder() {
	product := createTestProduct(s.T(), s.db, "Speaker", 25, 5)
	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 2)

	paid, err := s.service.MarkPaid(order.ID, s.user.ID, false, models.PaymentResult{
		TransactionID: "pi_reload",
		Status:        "succeeded",
	})
	require.NoError(s.T(), err)
	assert.True(s.T(), paid.IsPaid)
	require.Len(s.T(), paid.Items, 1)
	assert.Equal(s.T(), "Speaker", paid.Items[0].Name)
}

func (s *OrderServiceTestSuite) TestGetByIDEnforcesOwnership() {
	product := createTestProduct(s.T(), s.db, "Lamp", 30, 5)
	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	stranger := createTestUser(s.T(), s.db, "other@example.com", models.UserRoleCustomer)

	_, err := s.service.GetByID(order.ID, stranger.ID, false)
	assert.ErrorIs(s.T(), err, ErrNotAuthorized)

	// Admins can read any order.
	got, err := s.service.GetByID(order.ID, stranger.ID, true)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), order.OrderNumber, got.OrderNumber)
}

func (s *OrderServiceTestSuite) TestTransitionStatusHappyPath() {
	product := createTestProduct(s.T(), s.db, "Desk", 80, 5)
	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	for _, status := range []models.OrderStatus{
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		updated, err := s.service.TransitionStatus(order.ID, status)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), status, updated.Status)
	}

	var reloaded models.Order
	require.NoError(s.T(), s.db.First(&reloaded, "id = ?", order.ID).Error)
	assert.True(s.T(), reloaded.IsDelivered)
	assert.NotNil(s.T(), reloaded.DeliveredAt)
}

func (s *OrderServiceTestSuite) TestTransitionStatusRejectsIllegalMoves() {
	product := createTestProduct(s.T(), s.db, "Chair", 60, 5)
	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	// pending -> delivered skips shipped.
	_, err := s.service.TransitionStatus(order.ID, models.OrderStatusDelivered)
	assert.ErrorIs(s.T(), err, ErrInvalidTransition)

	// Terminal states accept nothing.
	_, err = s.service.TransitionStatus(order.ID, models.OrderStatusCancelled)
	require.NoError(s.T(), err)
	_, err = s.service.TransitionStatus(order.ID, models.OrderStatusProcessing)
	assert.ErrorIs(s.T(), err, ErrInvalidTransition)
	_, err = s.service.TransitionStatus(order.ID, models.OrderStatusRefunded)
	assert.ErrorIs(s.T(), err, ErrInvalidTransition)
}

func (s *OrderServiceTestSuite) TestCancelRestoresStock() {
	product := createTestProduct(s.T(), s.db, "Router", 40, 10)
	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 4)

	var afterOrder models.Product
	require.NoError(s.T(), s.db.First(&afterOrder, "id = ?", product.ID).Error)
	require.Equal(s.T(), 6, afterOrder.Stock)

	_, err := s.service.TransitionStatus(order.ID, models.OrderStatusCancelled)
	require.NoError(s.T(), err)

	var afterCancel models.Product
	require.NoError(s.T(), s.db.First(&afterCancel, "id = ?", product.ID).Error)
	assert.Equal(s.T(), 10, afterCancel.Stock)
}

func (s *OrderServiceTestSuite) TestRefundedTransitionRestoresStockAndApproves() {
	product := createTestProduct(s.T(), s.db, "Tablet", 200, 3)
	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 2)

	updated, err := s.service.TransitionStatus(order.ID, models.OrderStatusRefunded)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.RefundStatusApproved, updated.RefundStatus)

	var reloaded models.Product
	require.NoError(s.T(), s.db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(s.T(), 3, reloaded.Stock)
}

func (s *OrderServiceTestSuite) TestRequestRefundEligibility() {
	product := createTestProduct(s.T(), s.db, "Phone", 300, 5)
	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	// Not delivered yet.
	_, err := s.service.RequestRefund(order.ID, s.user.ID, "arrived broken, want my money back")
	assert.ErrorIs(s.T(), err, ErrNotEligible)

	for _, status := range []models.OrderStatus{
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		_, err = s.service.TransitionStatus(order.ID, status)
		require.NoError(s.T(), err)
	}

	// Wrong owner.
	stranger := createTestUser(s.T(), s.db, "nosy@example.com", models.UserRoleCustomer)
	_, err = s.service.RequestRefund(order.ID, stranger.ID, "arrived broken, want my money back")
	assert.ErrorIs(s.T(), err, ErrNotAuthorized)

	updated, err := s.service.RequestRefund(order.ID, s.user.ID, "arrived broken, want my money back")
	require.NoError(s.T(), err)
	assert.True(s.T(), updated.RefundRequested)
	assert.Equal(s.T(), models.RefundStatusPending, updated.RefundStatus)
	assert.Equal(s.T(), models.OrderStatusDelivered, updated.Status)

	// Only once.
	_, err = s.service.RequestRefund(order.ID, s.user.ID, "asking again for good measure")
	assert.ErrorIs(s.T(), err, ErrAlreadyRequested)
}

func (s *OrderServiceTestSuite) TestMarkPaidIfUnpaidIsIdempotent() {
	product := createTestProduct(s.T(), s.db, "Speaker", 50, 5)
	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	first := models.PaymentResult{TransactionID: "pi_first", Status: "succeeded"}
	require.NoError(s.T(), s.service.markPaidIfUnpaid(order.ID, first))

	var paid models.Order
	require.NoError(s.T(), s.db.First(&paid, "id = ?", order.ID).Error)
	require.True(s.T(), paid.IsPaid)
	firstPaidAt := paid.PaidAt

	// A duplicate delivery must not overwrite the original snapshot.
	second := models.PaymentResult{TransactionID: "pi_second", Status: "succeeded"}
	require.NoError(s.T(), s.service.markPaidIfUnpaid(order.ID, second))

	var reloaded models.Order
	require.NoError(s.T(), s.db.First(&reloaded, "id = ?", order.ID).Error)
	assert.Equal(s.T(), "pi_first", reloaded.PaymentResult.TransactionID)
	assert.Equal(s.T(), firstPaidAt.Unix(), reloaded.PaidAt.Unix())
}

func (s *OrderServiceTestSuite) TestGetMineReturnsOnlyOwnOrders() {
	product := createTestProduct(s.T(), s.db, "Charger", 15, 20)
	createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	other := createTestUser(s.T(), s.db, "second@example.com", models.UserRoleCustomer)
	createTestOrder(s.T(), s.service, other.ID, product.ID, 1)

	orders, err := s.service.GetMine(s.user.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), orders, 1)
	assert.Equal(s.T(), s.user.ID, orders[0].UserID)
}

func (s *OrderServiceTestSuite) TestListAllFiltersByStatus() {
	product := createTestProduct(s.T(), s.db, "Dock", 45, 20)
	order := createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)
	createTestOrder(s.T(), s.service, s.user.ID, product.ID, 1)

	_, err := s.service.TransitionStatus(order.ID, models.OrderStatusProcessing)
	require.NoError(s.T(), err)

	processing := models.OrderStatusProcessing
	orders, total, err := s.service.ListAll(OrderListFilter{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"},
		Status:           &processing,
	})
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 1, total)
	require.Len(s.T(), orders, 1)
	assert.Equal(s.T(), order.ID, orders[0].ID)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
