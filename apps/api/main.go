package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/fareway/internal/clock"
	"github.com/smallbiznis/fareway/internal/config"
	"github.com/smallbiznis/fareway/internal/observability"
	"github.com/smallbiznis/fareway/internal/server"
	"github.com/smallbiznis/fareway/pkg/db"
)

// API-only composition. Schema migrations and seeding stay with
// cmd/fareway; this binary assumes a migrated database.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}
