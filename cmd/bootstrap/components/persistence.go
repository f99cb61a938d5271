package components

import (
	"log/slog"

	"commerce-server/internal/infra/memstore"
	"commerce-server/internal/infra/uow"
	"commerce-server/internal/pkg/config"
	"commerce-server/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewUnitOfWork,
	),
)

func NewUnitOfWork(cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) shared.UnitOfWork {
	if cfg.Store.Backend == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		return memstore.New()
	}
	return uow.NewPostgresUoW(pool, logger)
}
