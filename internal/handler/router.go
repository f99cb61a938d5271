package handler

import (
	"net/http"

	"commerce-server/internal/handler/api"
	"commerce-server/internal/handler/middleware"
	"commerce-server/internal/infra/metrics"
	"commerce-server/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Balance *api.BalanceHandler
	Coupon  *api.CouponHandler
	Product *api.ProductHandler
	Order   *api.OrderHandler
	Health  *api.HealthHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *middleware.Logger) {
	setupMiddleware(engine, cfg, m, logger)
	setupRoutes(engine, h, gatherer)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, m *metrics.Metrics, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.MetricsMiddleware(m))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, gatherer prometheus.Gatherer) {
	engine.GET("/health", h.Health.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	apiGroup := engine.Group("/api")
	{
		addRoutes(apiGroup.Group("/balance"), []route{
			{Method: http.MethodPost, Path: "/charge", Handler: h.Balance.Charge},
			{Method: http.MethodPost, Path: "/deduct", Handler: h.Balance.Deduct},
			{Method: http.MethodGet, Path: "/:userId", Handler: h.Balance.Get},
		})

		addRoutes(apiGroup.Group("/coupons"), []route{
			{Method: http.MethodPost, Path: "/:couponId/issue", Handler: h.Coupon.Issue},
		})

		addRoutes(apiGroup.Group("/products"), []route{
			{Method: http.MethodGet, Path: "", Handler: h.Product.List},
			{Method: http.MethodGet, Path: "/popular", Handler: h.Product.Popular},
			{Method: http.MethodGet, Path: "/ranking/:period", Handler: h.Product.Ranking},
			{Method: http.MethodGet, Path: "/:productId", Handler: h.Product.Get},
			{Method: http.MethodPost, Path: "", Handler: h.Product.Create},
			{Method: http.MethodPut, Path: "/:productId", Handler: h.Product.Update},
			{Method: http.MethodDelete, Path: "/:productId", Handler: h.Product.Delete},
		})

		addRoutes(apiGroup.Group("/orders"), []route{
			{Method: http.MethodPost, Path: "", Handler: h.Order.Create},
			{Method: http.MethodPost, Path: "/:orderId/pay", Handler: h.Order.Pay},
			{Method: http.MethodGet, Path: "/:orderId", Handler: h.Order.Get},
		})

		addRoutes(apiGroup.Group("/users/:userId"), []route{
			{Method: http.MethodGet, Path: "/coupons", Handler: h.Coupon.ListByUser},
			{Method: http.MethodGet, Path: "/orders", Handler: h.Order.ListByUser},
		})
	}
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
