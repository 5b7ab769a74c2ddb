package main

import (
	"context"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VishnuMohan31/Worky-sub005/modules"
	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/infrastructure/persistence"
	"github.com/VishnuMohan31/Worky-sub005/pkg/application"
	"github.com/VishnuMohan31/Worky-sub005/pkg/configuration"
	"github.com/VishnuMohan31/Worky-sub005/pkg/constants"
	"github.com/VishnuMohan31/Worky-sub005/pkg/eventbus"
	"github.com/VishnuMohan31/Worky-sub005/pkg/middleware"
	"github.com/VishnuMohan31/Worky-sub005/pkg/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}

	if err := persistence.ApplySchema(ctx, pool); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	app.RegisterMiddleware(
		middleware.WithLogger(logger, conf.RequestIDHeader),
		middleware.WithPool(pool),
		middleware.Provide(constants.AppKey, app),
	)

	serverInstance := server.NewHTTPServer(app)
	log.Printf("Listening on: %s\n", conf.SocketAddress)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
