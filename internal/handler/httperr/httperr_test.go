//go:build unit

package httperr_test

import (
	"errors"
	"net/http"
	"testing"

	"commerce-server/internal/handler/httperr"
	"commerce-server/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid amount", errs.Wrapf(errs.ErrInvalidAmount, "amount %s", "0"), http.StatusBadRequest},
		{"unknown user", errs.Wrapf(errs.ErrUserNotFound, "user %d", 9), http.StatusNotFound},
		{"lock held", errs.Wrapf(errs.ErrLockNotAcquired, "lock %s", "balance-1"), http.StatusConflict},
		{"already issued", errs.Wrapf(errs.ErrAlreadyIssued, "user %d coupon %d", 1, 2), http.StatusConflict},
		{"sold out", errs.Wrapf(errs.ErrSoldOut, "coupon %d", 2), http.StatusUnprocessableEntity},
		{"insufficient balance", errs.Wrap(errs.ErrInsufficientBalance, "balance 0"), http.StatusUnprocessableEntity},
		{"coupon expired", errs.ErrCouponExpired, http.StatusUnprocessableEntity},
		{"stock short", errs.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{"product in use", errs.ErrProductInUse, http.StatusUnprocessableEntity},
		{"unknown failure", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httperr.StatusOf(tt.err))
		})
	}
}
