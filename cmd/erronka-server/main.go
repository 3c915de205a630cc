package main

import (
	"os"

	"github.com/Jaime-2616/ErronkaFinala/internal/arena"
	"github.com/Jaime-2616/ErronkaFinala/internal/config"
	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
	"github.com/Jaime-2616/ErronkaFinala/internal/httpapi"
	"github.com/Jaime-2616/ErronkaFinala/internal/logging"
	"github.com/Jaime-2616/ErronkaFinala/internal/relay"
	"github.com/Jaime-2616/ErronkaFinala/internal/server"
	"github.com/Jaime-2616/ErronkaFinala/internal/service"
	"github.com/Jaime-2616/ErronkaFinala/internal/storage"
)

func main() {
	// Config file is optional: ERRONKA_CONFIG points at a JSON file,
	// otherwise every setting takes its default.
	cfg, err := config.LoadConfig(os.Getenv(constants.EnvConfigPath))
	if err != nil {
		logging.Fatal("Missing or invalid configuration", err, logging.Fields{
			"config_path": os.Getenv(constants.EnvConfigPath),
		})
	}

	db, err := storage.OpenAndMigrate(cfg.DatabasePath, cfg.PokedexPath, cfg.MovesPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"db_path": cfg.DatabasePath})
	}
	repo := storage.NewSQLiteRepository(db)

	registry := relay.NewRegistry(cfg.ChatRate, cfg.ChatBurst)
	presence := relay.NewPresence()
	broker := arena.NewBroker(registry, &service.Settlement{Repo: repo}, cfg.BattleLevel)
	srv := server.New(cfg, repo, registry, presence, broker)

	// HTTP status surface and websocket gateway run beside the TCP relay.
	handler := httpapi.NewHandler(repo, registry, presence, srv, broker)
	router := handler.NewRouter()
	go func() {
		logging.Info("http server listening", logging.Fields{constants.LogFieldAddr: cfg.HTTPAddress})
		if err := router.Run(cfg.HTTPAddress); err != nil {
			logging.Fatal("Failed to start http server", err, nil)
		}
	}()

	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to start tcp server", err, nil)
	}
}
