package components

import (
	"upi-checkout/internal/infra/db"
	"upi-checkout/internal/infra/notify"
	"upi-checkout/internal/infra/readstore"
	"upi-checkout/internal/infra/uow"
	"upi-checkout/internal/infra/writerepo"
	"upi-checkout/internal/usecase/queries"
	"upi-checkout/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewLockReadStore,
			fx.As(new(queries.LockReadStore)),
		),
		fx.Annotate(
			readstore.NewJournalReadStore,
			fx.As(new(queries.JournalReadStore)),
		),
	),
)

var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		uow.NewPostgresUoW,
		fx.Annotate(
			writerepo.NewLockRepository,
			fx.As(new(shared.LockRepository)),
		),
		fx.Annotate(
			writerepo.NewJournalRepository,
			fx.As(new(shared.JournalRepository)),
		),
		notify.NewSlogNotifier,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
