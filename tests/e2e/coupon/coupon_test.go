//go:build e2e

package coupon_test

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	issueURL       = "/api/coupons/%d/issue"
	userCouponsURL = "/api/users/%d/coupons"
)

type CouponSuite struct {
	e2e.SharedSuite
}

func (s *CouponSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestCouponSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(CouponSuite))
}

func (s *CouponSuite) TestIssueCoupon() {
	s.Run("Normal case: issued coupon shows up in the user's list", func() {
		t := s.T()

		userID := dbtest.CreateTestUser(t, s.DB, "alice")
		couponID := dbtest.CreateTestCoupon(t, s.DB, "Welcome 1000", 1000, 5)

		// prime the list cache with the empty list
		var before []response.CouponHistoryResponse
		w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(userCouponsURL, userID), nil)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &before)
		require.Empty(t, before)

		var issued response.CouponIssueResponse
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(issueURL, couponID), request.IssueCouponRequest{UserID: userID})
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &issued)
		assert.Equal(t, 4, issued.RemainingQuantity)

		var after []response.CouponHistoryResponse
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf(userCouponsURL, userID), nil)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &after)
		require.Len(t, after, 1)
		assert.Equal(t, "Welcome 1000", after[0].CouponName)
		assert.Equal(t, "ISSUED", after[0].Status)
	})

	s.Run("Error case: second issue to the same user conflicts", func() {
		t := s.T()

		userID := dbtest.CreateTestUser(t, s.DB, "bob")
		couponID := dbtest.CreateTestCoupon(t, s.DB, "Welcome 1000", 1000, 5)
		reqBody := request.IssueCouponRequest{UserID: userID}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(issueURL, couponID), reqBody)
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, fmt.Sprintf(issueURL, couponID), reqBody)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "coupon already issued to user")
		assert.Equal(t, 1, dbtest.CountRows(t, s.DB, "coupon_histories", "user_id = $1", userID))
	})
}

func (s *CouponSuite) TestConcurrentIssue() {
	s.Run("Concurrency: limited coupon is never over-issued", func() {
		t := s.T()

		const stock, users = 5, 20
		couponID := dbtest.CreateTestCoupon(t, s.DB, "First come", 500, stock)
		userIDs := make([]int64, users)
		for i := range userIDs {
			userIDs[i] = dbtest.CreateTestUser(t, s.DB, fmt.Sprintf("racer-%d", i))
		}

		codes := make([]int, users)
		var wg sync.WaitGroup
		for i, userID := range userIDs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := e2e.PerformWithRetry(t, s.Router, http.MethodPost, fmt.Sprintf(issueURL, couponID), request.IssueCouponRequest{UserID: userID})
				codes[i] = w.Code
			}()
		}
		wg.Wait()

		var issued, soldOut int
		for _, code := range codes {
			switch code {
			case http.StatusCreated:
				issued++
			case http.StatusUnprocessableEntity:
				soldOut++
			}
		}
		assert.Equal(t, stock, issued)
		assert.Equal(t, users-stock, soldOut)
		assert.Equal(t, stock, dbtest.CountRows(t, s.DB, "coupon_histories", "coupon_id = $1", couponID))
		assert.Equal(t, 1, dbtest.CountRows(t, s.DB, "coupons", "id = $1 AND remaining_quantity = 0", couponID))
	})
}
