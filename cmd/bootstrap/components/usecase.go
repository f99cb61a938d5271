package components

import (
	"commerce-server/internal/usecase/commands"
	"commerce-server/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	commandsModule,
	queriesModule,
)

var commandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBalanceCommands,
		commands.NewCouponCommands,
		commands.NewOrderCommands,
		commands.NewProductCommands,
	),
)

var queriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBalanceQueries,
		queries.NewCouponQueries,
		queries.NewOrderQueries,
		queries.NewProductQueries,
	),
)
