package approval

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/fareway/internal/approval/repository"
	"github.com/smallbiznis/fareway/internal/approval/service"
)

var Module = fx.Module("approval.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
