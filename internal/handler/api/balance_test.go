//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"commerce-server/internal/handler/api"
	resdto "commerce-server/internal/handler/dto/response"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/tests/common/httptest"
	commandsmock "commerce-server/tests/mock/commands"
	queriesmock "commerce-server/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BalanceHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBalanceCommands
	mockQueries  *queriesmock.MockBalanceQueries
}

func (s *BalanceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBalanceCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBalanceQueries(s.mockCtrl)
	h := api.NewBalanceHandler(s.mockCommands, s.mockQueries)

	s.router.POST("/api/balance/charge", h.Charge)
	s.router.POST("/api/balance/deduct", h.Deduct)
	s.router.GET("/api/balance/:userId", h.Get)
}

func (s *BalanceHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBalanceHandlerSuite(t *testing.T) {
	suite.Run(t, new(BalanceHandlerTestSuite))
}

func balanceRM(userID int64, amount int64) *readmodel.BalanceRM {
	return &readmodel.BalanceRM{
		UserID:    userID,
		Amount:    decimal.NewFromInt(amount),
		UpdatedAt: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *BalanceHandlerTestSuite) TestCharge() {
	url := "/api/balance/charge"

	s.Run("success: returns the new balance", func() {
		s.mockCommands.EXPECT().Charge(gomock.Any(), int64(1), decimal.NewFromInt(1000)).
			Return(balanceRM(1, 1500), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"userId": 1, "amount": 1000})

		var body resdto.BalanceResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(int64(1), body.UserID)
		s.Equal("1500.00", body.Amount)
	})

	s.Run("success: accepts a decimal string amount", func() {
		s.mockCommands.EXPECT().Charge(gomock.Any(), int64(1), gomock.Any()).
			DoAndReturn(func(_ any, _ int64, amount decimal.Decimal) (*readmodel.BalanceRM, error) {
				s.True(amount.Equal(decimal.RequireFromString("10.50")))
				return balanceRM(1, 10), nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"userId": 1, "amount": "10.50"})
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 when userId is missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"amount": 1000})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})

	s.Run("error: 400 when the use case rejects the amount", func() {
		s.mockCommands.EXPECT().Charge(gomock.Any(), int64(1), gomock.Any()).
			Return(nil, errs.Wrapf(errs.ErrInvalidAmount, "amount %s", "0")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"userId": 1, "amount": 0})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "amount must be greater than zero")
	})

	s.Run("error: 409 while another balance change holds the lock", func() {
		s.mockCommands.EXPECT().Charge(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.ErrLockNotAcquired).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"userId": 1, "amount": 1})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "lock is held by another request")
	})
}

func (s *BalanceHandlerTestSuite) TestDeduct() {
	url := "/api/balance/deduct"

	s.Run("success: returns the remaining balance", func() {
		s.mockCommands.EXPECT().Deduct(gomock.Any(), int64(2), decimal.NewFromInt(30)).
			Return(balanceRM(2, 20), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"userId": 2, "amount": 30})

		var body resdto.BalanceResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("20.00", body.Amount)
	})

	s.Run("error: 422 on insufficient balance", func() {
		s.mockCommands.EXPECT().Deduct(gomock.Any(), int64(2), decimal.NewFromInt(100)).
			Return(nil, errs.Wrapf(errs.ErrInsufficientBalance, "balance 50, requested 100")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"userId": 2, "amount": 100})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "insufficient balance")
	})

	s.Run("error: 404 for an unknown user", func() {
		s.mockCommands.EXPECT().Deduct(gomock.Any(), int64(99), gomock.Any()).
			Return(nil, errs.ErrUserNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"userId": 99, "amount": 1})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "user not found")
	})
}

func (s *BalanceHandlerTestSuite) TestGet() {
	s.Run("success: returns the balance", func() {
		s.mockQueries.EXPECT().Get(gomock.Any(), int64(3)).Return(balanceRM(3, 0), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/balance/3", nil)

		var body resdto.BalanceResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("0.00", body.Amount)
	})

	s.Run("error: 400 on a non-numeric id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/balance/me", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid userId")
	})
}
