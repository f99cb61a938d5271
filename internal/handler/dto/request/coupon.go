package request

type IssueCouponRequest struct {
	UserID int64 `json:"userId" binding:"required,gt=0"`
}
