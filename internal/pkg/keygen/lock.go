package keygen

// Lock keys identify the resource a critical section serializes. They are not
// cache keys and never take part in pattern eviction.

func BalanceLock(userID int64) string {
	return "balance-" + id(userID)
}

func CouponLock(couponID int64) string {
	return "coupon-" + id(couponID)
}

func PaymentLock(orderID int64) string {
	return "payment-" + id(orderID)
}

func OrderCreationLock(userID int64) string {
	return "order-creation-" + id(userID)
}
