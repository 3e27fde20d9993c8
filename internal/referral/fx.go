package referral

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/fareway/internal/referral/repository"
	"github.com/smallbiznis/fareway/internal/referral/service"
)

var Module = fx.Module("referral.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
