//go:build e2e

package order_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"commerce-server/internal/handler/dto/request"
	"commerce-server/internal/handler/dto/response"
	"commerce-server/tests/common/dbtest"
	"commerce-server/tests/common/httptest"
	"commerce-server/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	ordersURL     = "/api/orders"
	payURL        = "/api/orders/%d/pay"
	balanceURL    = "/api/balance/%d"
	productURL    = "/api/products/%d"
	userOrdersURL = "/api/users/%d/orders"
	issueURL      = "/api/coupons/%d/issue"
)

type OrderSuite struct {
	e2e.SharedSuite
}

func (s *OrderSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestOrderSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(OrderSuite))
}

func (s *OrderSuite) createOrder(t *testing.T, userID, productID int64, quantity int) response.OrderResponse {
	t.Helper()

	reqBody := request.CreateOrderRequest{
		UserID: userID,
		Items:  []request.OrderItemRequest{{ProductID: productID, Quantity: quantity}},
	}
	w := httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL, reqBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created response.OrderResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &created))
	httptest.AssertHeaders(t, w, map[string]string{"Location": fmt.Sprintf("%s/%d", ordersURL, created.ID)})
	return created
}

// =============================================================================
// TestOrderFlow - create, pay and read back through the cache
// =============================================================================

func (s *OrderSuite) TestOrderFlow() {
	s.Run("Normal case: order is created, paid and visible everywhere", func() {
		t := s.T()

		userID := dbtest.CreateTestUserWithBalance(t, s.DB, "alice", 50000)
		productID := dbtest.CreateTestProduct(t, s.DB, "Mechanical Keyboard", 12000, 10)

		// prime the product cache so the reservation has to evict it
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(productURL, productID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		created := s.createOrder(t, userID, productID, 2)

		expected := &response.OrderResponse{
			UserID:         userID,
			Items:          []response.OrderItemResponse{{ProductID: productID, Quantity: 2, UnitPrice: "12000"}},
			TotalAmount:    "24000",
			DiscountAmount: "0",
			FinalAmount:    "24000",
			Status:         "PENDING",
		}
		opts := []cmp.Option{
			cmpopts.IgnoreFields(response.OrderResponse{}, "ID", "CreatedAt", "UpdatedAt"),
		}
		if diff := cmp.Diff(expected, &created, opts...); diff != "" {
			t.Errorf("order response mismatch (-want +got):\n%s", diff)
		}

		var product response.ProductResponse
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(productURL, productID), nil)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &product)
		assert.Equal(t, 8, product.Stock)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(payURL, created.ID), request.PayOrderRequest{UserID: userID})
		var paid response.PayOrderResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &paid)
		assert.Equal(t, "COMPLETED", paid.Order.Status)
		assert.Equal(t, "24000", paid.Payment.Amount)
		assert.Equal(t, "26000", paid.Balance.Amount)

		var balance response.BalanceResponse
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(balanceURL, userID), nil)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &balance)
		assert.Equal(t, "26000", balance.Amount)

		var orders []response.OrderResponse
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(userOrdersURL, userID), nil)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &orders)
		require.Len(t, orders, 1)
		assert.Equal(t, "COMPLETED", orders[0].Status)

		assert.Equal(t, 1, dbtest.CountRows(t, s.DB, "payments", "order_id = $1", created.ID))
	})

	s.Run("Normal case: issued coupon discounts the payment", func() {
		t := s.T()

		userID := dbtest.CreateTestUserWithBalance(t, s.DB, "bob", 50000)
		productID := dbtest.CreateTestProduct(t, s.DB, "Mouse", 10000, 5)
		couponID := dbtest.CreateTestCoupon(t, s.DB, "Welcome 3000", 3000, 10)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(issueURL, couponID), request.IssueCouponRequest{UserID: userID})
		var issued response.CouponIssueResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &issued)

		created := s.createOrder(t, userID, productID, 1)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(payURL, created.ID),
			request.PayOrderRequest{UserID: userID, CouponHistoryID: &issued.HistoryID})
		var paid response.PayOrderResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &paid)
		assert.Equal(t, "3000", paid.Order.DiscountAmount)
		assert.Equal(t, "7000", paid.Order.FinalAmount)
		assert.Equal(t, "43000", paid.Balance.Amount)
	})

	s.Run("Error case: insufficient balance keeps the order pending", func() {
		t := s.T()

		userID := dbtest.CreateTestUserWithBalance(t, s.DB, "carol", 100)
		productID := dbtest.CreateTestProduct(t, s.DB, "Monitor", 200000, 1)
		created := s.createOrder(t, userID, productID, 1)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(payURL, created.ID), request.PayOrderRequest{UserID: userID})
		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "insufficient balance")

		assert.Equal(t, 0, dbtest.CountRows(t, s.DB, "payments", ""))
		assert.Equal(t, 1, dbtest.CountRows(t, s.DB, "orders", "status = 'PENDING'"))
	})

	s.Run("Error case: ordering more than the stock fails", func() {
		t := s.T()

		userID := dbtest.CreateTestUser(t, s.DB, "dave")
		productID := dbtest.CreateTestProduct(t, s.DB, "Limited", 1000, 1)

		reqBody := request.CreateOrderRequest{
			UserID: userID,
			Items:  []request.OrderItemRequest{{ProductID: productID, Quantity: 2}},
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, ordersURL, reqBody)
		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "insufficient stock")
		assert.Equal(t, 0, dbtest.CountRows(t, s.DB, "orders", ""))
	})
}

// =============================================================================
// TestConcurrentPayment - one order, many payers
// =============================================================================

func (s *OrderSuite) TestConcurrentPayment() {
	s.Run("Concurrency: an order is paid exactly once", func() {
		t := s.T()

		userID := dbtest.CreateTestUserWithBalance(t, s.DB, "erin", 100000)
		productID := dbtest.CreateTestProduct(t, s.DB, "Pen", 1000, 10)
		created := s.createOrder(t, userID, productID, 1)

		const payers = 8
		codes := make([]int, payers)
		var wg sync.WaitGroup
		for i := range payers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := e2e.PerformWithRetry(t, s.Router, http.MethodPost, fmt.Sprintf(payURL, created.ID), request.PayOrderRequest{UserID: userID})
				codes[i] = w.Code
			}()
		}
		wg.Wait()

		var ok, rejected int
		for _, code := range codes {
			switch code {
			case http.StatusOK:
				ok++
			case http.StatusUnprocessableEntity:
				rejected++
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, payers-1, rejected)
		assert.Equal(t, 1, dbtest.CountRows(t, s.DB, "payments", ""))
		assert.Equal(t, 1, dbtest.CountRows(t, s.DB, "balances", "user_id = $1 AND amount = 99000", userID))
	})
}
