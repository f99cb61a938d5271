package keygen

import (
	"fmt"
	"strconv"
	"time"
)

var (
	BalanceInfo    = NewFamily("balance", "info", 60*time.Second)
	ProductDetail  = NewFamily("product", "info", time.Hour)
	ProductList    = NewFamily("product", "list", time.Hour)
	ProductRanking = NewFamily("product", "ranking", 10*time.Minute)
	ProductPopular = NewFamily("product", "popular", 5*time.Minute)
	OrderDetail    = NewFamily("order", "info", 10*time.Minute)
	OrderList      = NewFamily("order", "list", 5*time.Minute)
	CouponList     = NewFamily("coupon", "list", 5*time.Minute)
)

// Families lists every cache family, used for pattern coverage checks.
func Families() []Family {
	return []Family{
		BalanceInfo, ProductDetail, ProductList, ProductRanking,
		ProductPopular, OrderDetail, OrderList, CouponList,
	}
}

func BalanceKey(userID int64) string {
	return BalanceInfo.Key(userPart(userID))
}

func ProductKey(productID int64) string {
	return ProductDetail.Key("product_" + id(productID))
}

func ProductListKey(limit, offset int) string {
	return ProductList.Key(pagePart(limit, offset))
}

func OrderKey(orderID int64) string {
	return OrderDetail.Key("order_" + id(orderID))
}

func OrderListKey(userID int64, limit, offset int) string {
	return OrderList.Key(userPart(userID), pagePart(limit, offset))
}

// OrderListPattern covers every page of one user's order list.
func OrderListPattern(userID int64) string {
	return OrderList.PatternFor(userPart(userID))
}

func CouponListKey(userID int64, limit, offset int) string {
	return CouponList.Key(userPart(userID), pagePart(limit, offset))
}

func CouponListPattern(userID int64) string {
	return CouponList.PatternFor(userPart(userID))
}

func PopularKey(days, limit int) string {
	return ProductPopular.Key(fmt.Sprintf("days_%d_limit_%d", days, limit))
}

// PopularTTL shortens the TTL of short windows, which change faster.
func PopularTTL(days int) time.Duration {
	switch {
	case days <= 1:
		return 5 * time.Minute
	case days <= 3:
		return 10 * time.Minute
	case days <= 7:
		return 30 * time.Minute
	case days <= 30:
		return time.Hour
	default:
		return 2 * time.Hour
	}
}

func userPart(userID int64) string {
	return "user_" + id(userID)
}

func pagePart(limit, offset int) string {
	return fmt.Sprintf("limit_%d_offset_%d", limit, offset)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}
