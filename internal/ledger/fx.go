package ledger

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/fareway/internal/ledger/repository"
	"github.com/smallbiznis/fareway/internal/ledger/service"
)

var Module = fx.Module("ledger.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
