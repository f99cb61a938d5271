package errs

// Categories. Every concrete error below belongs to exactly one of them; use
// Category or HasCategory to branch on the category without listing errors.
var (
	ErrValidation          = New("validation error")
	ErrNotFound            = New("not found")
	ErrConcurrencyConflict = New("concurrency conflict")
	ErrBusinessRule        = New("business rule violation")
)

// Validation errors
var (
	ErrInvalidAmount   = New("amount must be greater than zero")
	ErrInvalidID       = New("invalid identifier")
	ErrInvalidQuantity = New("quantity must be greater than zero")
	ErrInvalidPeriod   = New("invalid ranking period")
	ErrEmptyOrderItems = New("order must contain at least one item")
	ErrInvalidProduct  = New("invalid product")
)

// Not found errors
var (
	ErrUserNotFound    = New("user not found")
	ErrBalanceNotFound = New("balance not found")
	ErrCouponNotFound  = New("coupon not found")
	ErrProductNotFound = New("product not found")
	ErrOrderNotFound   = New("order not found")
)

// Concurrency errors
var (
	ErrLockNotAcquired = New("lock is held by another request")
)

// Business rule errors
var (
	ErrInsufficientBalance = New("insufficient balance")
	ErrSoldOut             = New("coupon sold out")
	ErrAlreadyIssued       = New("coupon already issued to user")
	ErrCouponExpired       = New("coupon has expired")
	ErrCouponNotYetValid   = New("coupon is not yet valid")
	ErrCouponInactive      = New("coupon is not active")
	ErrCouponNotUsable     = New("coupon cannot be used")
	ErrInsufficientStock   = New("insufficient stock")
	ErrInvalidOrderStatus  = New("order is not payable")
	ErrOrderNotOwned       = New("order belongs to another user")
	ErrProductInUse        = New("product is referenced by orders")
)

var categories = []struct {
	category error
	members  []error
}{
	{ErrValidation, []error{ErrInvalidAmount, ErrInvalidID, ErrInvalidQuantity, ErrInvalidPeriod, ErrEmptyOrderItems, ErrInvalidProduct}},
	{ErrNotFound, []error{ErrUserNotFound, ErrBalanceNotFound, ErrCouponNotFound, ErrProductNotFound, ErrOrderNotFound}},
	{ErrConcurrencyConflict, []error{ErrLockNotAcquired}},
	{ErrBusinessRule, []error{
		ErrInsufficientBalance, ErrSoldOut, ErrAlreadyIssued, ErrCouponExpired, ErrCouponNotYetValid,
		ErrCouponInactive, ErrCouponNotUsable, ErrInsufficientStock, ErrInvalidOrderStatus, ErrOrderNotOwned, ErrProductInUse,
	}},
}

// Category returns the category err belongs to, or nil when it has none.
// An error wrapping a category sentinel directly belongs to that category.
func Category(err error) error {
	if err == nil {
		return nil
	}
	for _, c := range categories {
		if Is(err, c.category) {
			return c.category
		}
		for _, m := range c.members {
			if Is(err, m) {
				return c.category
			}
		}
	}
	return nil
}

func HasCategory(err, category error) bool {
	c := Category(err)
	return c != nil && c == category
}
