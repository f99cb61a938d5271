package commands

//go:generate mockgen -source=product.go -destination=../../../tests/mock/commands/product_mock.go -package=commandsmock

import (
	"context"
	"log/slog"

	"commerce-server/internal/domain/product"
	"commerce-server/internal/pkg/clock"
	"commerce-server/internal/pkg/errs"
	"commerce-server/internal/pkg/keygen"
	"commerce-server/internal/usecase/readmodel"
	"commerce-server/internal/usecase/shared"

	"github.com/shopspring/decimal"
)

type ProductCommands interface {
	Create(ctx context.Context, in CreateProductInput) (*readmodel.ProductRM, error)
	Update(ctx context.Context, productID int64, in UpdateProductInput) (*readmodel.ProductRM, error)
	Delete(ctx context.Context, productID int64) error
}

type CreateProductInput struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// UpdateProductInput changes only the fields that are set.
type UpdateProductInput struct {
	Name  *string
	Price *decimal.Decimal
	Stock *int
}

func (in UpdateProductInput) empty() bool {
	return in.Name == nil && in.Price == nil && in.Stock == nil
}

type productCommandsImpl struct {
	uow    shared.UnitOfWork
	cache  *shared.CacheAside
	clock  clock.Clock
	logger *slog.Logger
}

func NewProductCommands(uow shared.UnitOfWork, cache *shared.CacheAside, clk clock.Clock, logger *slog.Logger) ProductCommands {
	return &productCommandsImpl{uow: uow, cache: cache, clock: clk, logger: logger}
}

func (uc *productCommandsImpl) Create(ctx context.Context, in CreateProductInput) (*readmodel.ProductRM, error) {
	p, err := product.NewProduct(in.Name, in.Price, in.Stock, uc.clock.Now())
	if err != nil {
		return nil, invalidProduct(err)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Products().Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	created := readmodel.FromProduct(p)
	uc.cache.Refresh(ctx, keygen.ProductKey(p.ID()), created, keygen.ProductDetail.TTL())
	uc.cache.Invalidate(ctx, nil, keygen.ProductList.Pattern())
	uc.logger.Info("product created", slog.Int64("productId", p.ID()))
	return &created, nil
}

// Update locks the product row, so stock reservations of concurrent orders
// are applied either before or after it, never lost.
func (uc *productCommandsImpl) Update(ctx context.Context, productID int64, in UpdateProductInput) (*readmodel.ProductRM, error) {
	if err := validateID(productID, "product"); err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, errs.Wrap(errs.ErrInvalidProduct, "no fields to update")
	}

	var updated readmodel.ProductRM
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Products().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if err := p.Update(in.Name, in.Price, in.Stock); err != nil {
			return invalidProduct(errs.Wrapf(err, "product %d", productID))
		}
		if err := tx.Products().Save(ctx, p); err != nil {
			return err
		}
		updated = readmodel.FromProduct(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Refresh(ctx, keygen.ProductKey(productID), updated, keygen.ProductDetail.TTL())
	uc.cache.Invalidate(ctx, nil, productViewPatterns()...)
	return &updated, nil
}

// Delete refuses products that orders still reference.
func (uc *productCommandsImpl) Delete(ctx context.Context, productID int64) error {
	if err := validateID(productID, "product"); err != nil {
		return err
	}

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Products().Delete(ctx, productID)
	})
	if err != nil {
		return err
	}

	uc.cache.Invalidate(ctx, []string{keygen.ProductKey(productID)}, productViewPatterns()...)
	uc.logger.Info("product deleted", slog.Int64("productId", productID))
	return nil
}

// invalidProduct tags a domain validation error so it maps to a bad request
// while keeping its own message.
func invalidProduct(err error) error {
	return errs.Mark(err, errs.ErrInvalidProduct)
}

// productViewPatterns covers every cached view that embeds product fields.
func productViewPatterns() []string {
	return []string{
		keygen.ProductList.Pattern(),
		keygen.ProductRanking.Pattern(),
		keygen.ProductPopular.Pattern(),
	}
}
