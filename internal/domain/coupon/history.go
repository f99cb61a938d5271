package coupon

import (
	"time"

	"commerce-server/internal/pkg/errs"
)

type HistoryStatus string

const (
	HistoryIssued  HistoryStatus = "ISSUED"
	HistoryUsed    HistoryStatus = "USED"
	HistoryExpired HistoryStatus = "EXPIRED"
)

// History records that a user holds a coupon. There is at most one per
// (user, coupon) pair.
type History struct {
	id       int64
	userID   int64
	couponID int64
	status   HistoryStatus
	issuedAt time.Time
	usedAt   *time.Time
}

func NewHistory(userID, couponID int64, now time.Time) *History {
	return &History{userID: userID, couponID: couponID, status: HistoryIssued, issuedAt: now}
}

func ReconstructHistory(id, userID, couponID int64, status HistoryStatus, issuedAt time.Time, usedAt *time.Time) *History {
	return &History{id: id, userID: userID, couponID: couponID, status: status, issuedAt: issuedAt, usedAt: usedAt}
}

func (h *History) Use(now time.Time) error {
	if h.status != HistoryIssued {
		return errs.Wrapf(errs.ErrCouponNotUsable, "coupon history %d is %s", h.id, h.status)
	}
	h.status = HistoryUsed
	h.usedAt = &now
	return nil
}

// Expire retires an unused history. Used histories keep their status.
func (h *History) Expire() error {
	if h.status != HistoryIssued {
		return errs.Wrapf(errs.ErrCouponNotUsable, "coupon history %d is %s", h.id, h.status)
	}
	h.status = HistoryExpired
	return nil
}

func (h *History) ID() int64             { return h.id }
func (h *History) UserID() int64         { return h.userID }
func (h *History) CouponID() int64       { return h.couponID }
func (h *History) Status() HistoryStatus { return h.status }
func (h *History) IssuedAt() time.Time   { return h.issuedAt }
func (h *History) UsedAt() *time.Time    { return h.usedAt }

func (h *History) AssignID(id int64) { h.id = id }
