package routing

import (
	"go.uber.org/fx"

	"github.com/smallbiznis/fareway/internal/routing/repository"
	"github.com/smallbiznis/fareway/internal/routing/service"
)

var Module = fx.Module("routing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
