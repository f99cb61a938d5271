package memstore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"commerce-server/internal/domain/balance"
	"commerce-server/internal/domain/coupon"
	"commerce-server/internal/domain/order"
	"commerce-server/internal/domain/product"
	"commerce-server/internal/domain/user"
	"commerce-server/internal/pkg/errs"
)

// Entities are stored by value so callers never alias committed state.

type userRepo struct{ tx *memTx }

func (r userRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := r.tx.t.users[id]
	if !ok {
		return nil, errs.Wrapf(errs.ErrUserNotFound, "user %d", id)
	}
	return &u, nil
}

func (r userRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := r.tx.t.users[id]
	return ok, nil
}

func (r userRepo) Create(_ context.Context, u *user.User) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	r.tx.t.seq.user++
	u.AssignID(r.tx.t.seq.user)
	r.tx.t.users[u.ID()] = *u
	return nil
}

type balanceRepo struct{ tx *memTx }

func (r balanceRepo) FindByUserID(_ context.Context, userID int64) (*balance.Balance, error) {
	b, ok := r.tx.t.balances[userID]
	if !ok {
		return nil, errs.Wrapf(errs.ErrBalanceNotFound, "user %d", userID)
	}
	return &b, nil
}

// Write transactions are serialized, so reads already see a stable row.
func (r balanceRepo) FindByUserIDForUpdate(ctx context.Context, userID int64) (*balance.Balance, error) {
	return r.FindByUserID(ctx, userID)
}

func (r balanceRepo) Save(_ context.Context, b *balance.Balance) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.t.users[b.UserID()]; !ok {
		return errs.Wrapf(errs.ErrUserNotFound, "user %d", b.UserID())
	}
	r.tx.t.balances[b.UserID()] = *b
	return nil
}

type couponRepo struct{ tx *memTx }

func (r couponRepo) FindByID(_ context.Context, id int64) (*coupon.Coupon, error) {
	c, ok := r.tx.t.coupons[id]
	if !ok {
		return nil, errs.Wrapf(errs.ErrCouponNotFound, "coupon %d", id)
	}
	return &c, nil
}

func (r couponRepo) FindByIDForUpdate(ctx context.Context, id int64) (*coupon.Coupon, error) {
	return r.FindByID(ctx, id)
}

func (r couponRepo) FindExpirable(_ context.Context, now time.Time) ([]*coupon.Coupon, error) {
	var out []*coupon.Coupon
	for _, c := range r.tx.t.coupons {
		if c.Status() == coupon.StatusActive && c.ValidUntil() != nil && c.ValidUntil().Before(now) {
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *coupon.Coupon) int { return cmp.Compare(a.ID(), b.ID()) })
	return out, nil
}

func (r couponRepo) Save(_ context.Context, c *coupon.Coupon) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if c.ID() == 0 {
		r.tx.t.seq.coupon++
		c.AssignID(r.tx.t.seq.coupon)
	} else if _, ok := r.tx.t.coupons[c.ID()]; !ok {
		return errs.Wrapf(errs.ErrCouponNotFound, "coupon %d", c.ID())
	}
	r.tx.t.coupons[c.ID()] = *c
	return nil
}

type historyRepo struct{ tx *memTx }

func (r historyRepo) FindByID(_ context.Context, id int64) (*coupon.History, error) {
	h, ok := r.tx.t.histories[id]
	if !ok {
		return nil, errs.Wrapf(errs.ErrCouponNotFound, "coupon history %d", id)
	}
	return &h, nil
}

func (r historyRepo) ExistsByUserAndCoupon(_ context.Context, userID, couponID int64) (bool, error) {
	for _, h := range r.tx.t.histories {
		if h.UserID() == userID && h.CouponID() == couponID {
			return true, nil
		}
	}
	return false, nil
}

func (r historyRepo) FindByUserID(_ context.Context, userID int64, limit, offset int) ([]*coupon.History, error) {
	var out []*coupon.History
	for _, h := range r.tx.t.histories {
		if h.UserID() == userID {
			out = append(out, &h)
		}
	}
	slices.SortFunc(out, func(a, b *coupon.History) int {
		if c := b.IssuedAt().Compare(a.IssuedAt()); c != 0 {
			return c
		}
		return cmp.Compare(b.ID(), a.ID())
	})
	return page(out, limit, offset), nil
}

func (r historyRepo) ExpireIssued(_ context.Context, couponID int64) (int, error) {
	if err := r.tx.checkWritable(); err != nil {
		return 0, err
	}
	n := 0
	for id, h := range r.tx.t.histories {
		if h.CouponID() != couponID || h.Expire() != nil {
			continue
		}
		r.tx.t.histories[id] = h
		n++
	}
	return n, nil
}

func (r historyRepo) Save(ctx context.Context, h *coupon.History) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if h.ID() == 0 {
		exists, _ := r.ExistsByUserAndCoupon(ctx, h.UserID(), h.CouponID())
		if exists {
			return errs.Wrapf(errs.ErrAlreadyIssued, "user %d coupon %d", h.UserID(), h.CouponID())
		}
		r.tx.t.seq.history++
		h.AssignID(r.tx.t.seq.history)
	}
	r.tx.t.histories[h.ID()] = *h
	return nil
}

type productRepo struct{ tx *memTx }

func (r productRepo) FindByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := r.tx.t.products[id]
	if !ok {
		return nil, errs.Wrapf(errs.ErrProductNotFound, "product %d", id)
	}
	return &p, nil
}

func (r productRepo) FindByIDForUpdate(ctx context.Context, id int64) (*product.Product, error) {
	return r.FindByID(ctx, id)
}

func (r productRepo) FindAll(_ context.Context) ([]*product.Product, error) {
	return r.sorted(), nil
}

func (r productRepo) FindPage(_ context.Context, limit, offset int) ([]*product.Product, error) {
	return page(r.sorted(), limit, offset), nil
}

func (r productRepo) sorted() []*product.Product {
	out := make([]*product.Product, 0, len(r.tx.t.products))
	for _, p := range r.tx.t.products {
		out = append(out, &p)
	}
	slices.SortFunc(out, func(a, b *product.Product) int { return cmp.Compare(a.ID(), b.ID()) })
	return out
}

func (r productRepo) FindTopSelling(_ context.Context, since, until time.Time, limit int) ([]product.Sales, error) {
	sold := make(map[int64]int)
	for _, o := range r.tx.t.orders {
		if o.Status() != order.StatusCompleted || o.UpdatedAt().Before(since) || !o.UpdatedAt().Before(until) {
			continue
		}
		for _, it := range o.Items() {
			sold[it.ProductID] += it.Quantity
		}
	}

	out := make([]product.Sales, 0, len(sold))
	for id, qty := range sold {
		p, ok := r.tx.t.products[id]
		if !ok {
			continue
		}
		out = append(out, product.Sales{Product: &p, SoldQuantity: qty})
	}
	slices.SortFunc(out, func(a, b product.Sales) int {
		if a.SoldQuantity != b.SoldQuantity {
			return cmp.Compare(b.SoldQuantity, a.SoldQuantity)
		}
		return cmp.Compare(a.Product.ID(), b.Product.ID())
	})
	return page(out, limit, 0), nil
}

func (r productRepo) ReserveStock(_ context.Context, id int64, quantity int) (*product.Product, error) {
	if err := r.tx.checkWritable(); err != nil {
		return nil, err
	}
	p, ok := r.tx.t.products[id]
	if !ok {
		return nil, errs.Wrapf(errs.ErrProductNotFound, "product %d", id)
	}
	if err := p.DecreaseStock(quantity); err != nil {
		return nil, err
	}
	r.tx.t.products[id] = p
	return &p, nil
}

func (r productRepo) Save(_ context.Context, p *product.Product) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if p.ID() == 0 {
		r.tx.t.seq.product++
		p.AssignID(r.tx.t.seq.product)
	} else if _, ok := r.tx.t.products[p.ID()]; !ok {
		return errs.Wrapf(errs.ErrProductNotFound, "product %d", p.ID())
	}
	r.tx.t.products[p.ID()] = *p
	return nil
}

func (r productRepo) Delete(_ context.Context, id int64) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.t.products[id]; !ok {
		return errs.Wrapf(errs.ErrProductNotFound, "product %d", id)
	}
	for _, o := range r.tx.t.orders {
		for _, it := range o.Items() {
			if it.ProductID == id {
				return errs.Wrapf(errs.ErrProductInUse, "product %d", id)
			}
		}
	}
	delete(r.tx.t.products, id)
	return nil
}

type orderRepo struct{ tx *memTx }

func (r orderRepo) FindByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := r.tx.t.orders[id]
	if !ok {
		return nil, errs.Wrapf(errs.ErrOrderNotFound, "order %d", id)
	}
	return &o, nil
}

func (r orderRepo) FindByUserID(_ context.Context, userID int64, limit, offset int) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range r.tx.t.orders {
		if o.UserID() == userID {
			out = append(out, &o)
		}
	}
	slices.SortFunc(out, func(a, b *order.Order) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return cmp.Compare(b.ID(), a.ID())
	})
	return page(out, limit, offset), nil
}

func (r orderRepo) Save(_ context.Context, o *order.Order) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if o.ID() == 0 {
		if _, ok := r.tx.t.users[o.UserID()]; !ok {
			return errs.Wrapf(errs.ErrUserNotFound, "user %d", o.UserID())
		}
		r.tx.t.seq.order++
		o.AssignID(r.tx.t.seq.order)
	} else if _, ok := r.tx.t.orders[o.ID()]; !ok {
		return errs.Wrapf(errs.ErrOrderNotFound, "order %d", o.ID())
	}
	r.tx.t.orders[o.ID()] = *o
	return nil
}

type paymentRepo struct{ tx *memTx }

func (r paymentRepo) FindByOrderID(_ context.Context, orderID int64) (*order.Payment, error) {
	p, ok := r.tx.t.payments[orderID]
	if !ok {
		return nil, errs.Wrapf(errs.ErrOrderNotFound, "payment for order %d", orderID)
	}
	return &p, nil
}

func (r paymentRepo) Save(_ context.Context, p *order.Payment) error {
	if err := r.tx.checkWritable(); err != nil {
		return err
	}
	if _, ok := r.tx.t.payments[p.OrderID()]; ok {
		return errs.Wrapf(errs.ErrInvalidOrderStatus, "order %d already paid", p.OrderID())
	}
	r.tx.t.seq.payment++
	p.AssignID(r.tx.t.seq.payment)
	r.tx.t.payments[p.OrderID()] = *p
	return nil
}
