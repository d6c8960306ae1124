package components

import (
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra/notify"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra/repository"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/config"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/usecase/commands"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		NewRepositoryDB,
		fx.Annotate(
			repository.NewPurchaseRepository,
			fx.As(new(commands.PurchaseRepository)),
		),
		fx.Annotate(
			repository.NewPromoCodeRepository,
			fx.As(new(commands.PromoCodeRepository)),
		),
		fx.Annotate(
			repository.NewProgramRepository,
			fx.As(new(commands.ProgramRepository)),
		),
		fx.Annotate(
			NewSystemConfigRepository,
			fx.As(new(commands.SystemConfigReader)),
		),
		fx.Annotate(
			repository.NewNotificationRepository,
			fx.As(new(notify.Store)),
		),
		fx.Annotate(
			repository.NewAuditRepository,
			fx.As(new(commands.AuditRecorder)),
		),
	),
)

func NewRepositoryDB(pool *pgxpool.Pool) repository.DB {
	return pool
}

func NewSystemConfigRepository(db repository.DB, cfg config.Config) *repository.SystemConfigRepository {
	return repository.NewSystemConfigRepository(db, cfg.Bundle)
}
