package components

import (
	"commerce-server/internal/handler"
	"commerce-server/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBalanceHandler,
		api.NewCouponHandler,
		api.NewProductHandler,
		api.NewOrderHandler,
		api.NewHealthHandler,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

type handlerParams struct {
	fx.In

	Balance *api.BalanceHandler
	Coupon  *api.CouponHandler
	Product *api.ProductHandler
	Order   *api.OrderHandler
	Health  *api.HealthHandler
}

func NewHandlers(p handlerParams) handler.Handlers {
	return handler.Handlers{
		Balance: p.Balance,
		Coupon:  p.Coupon,
		Product: p.Product,
		Order:   p.Order,
		Health:  p.Health,
	}
}
