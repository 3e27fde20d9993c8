package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/fareway/internal/clock"
	"github.com/smallbiznis/fareway/internal/config"
	"github.com/smallbiznis/fareway/internal/migration"
	"github.com/smallbiznis/fareway/internal/observability"
	"github.com/smallbiznis/fareway/internal/server"
	"github.com/smallbiznis/fareway/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
