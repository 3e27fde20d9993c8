package snapshot

import (
	"context"

	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.snapshot",
	fx.Provide(NewHolder),
	fx.Provide(NewWorker),
	fx.Provide(func(h *Holder) catalogdomain.SnapshotProvider { return h }),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, worker *Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
