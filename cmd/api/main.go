package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/apexsim/apexsim-golang/internal/ai"
	"github.com/apexsim/apexsim-golang/internal/config"
	"github.com/apexsim/apexsim-golang/internal/database"
	"github.com/apexsim/apexsim-golang/internal/handlers"
	"github.com/apexsim/apexsim-golang/internal/logger"
	"github.com/apexsim/apexsim-golang/internal/routes"
	"github.com/apexsim/apexsim-golang/internal/wpimport"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.Env)
	log := logger.Log
	defer log.Sync()

	db, err := database.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal("failed to connect to catalog database", zap.Error(err))
	}
	defer db.Close()

	// AI inference is optional for imports triggered through the admin API;
	// without a key the transformer runs on heuristics only.
	var inferrer wpimport.Inferrer
	if cfg.GeminiAPIKey != "" {
		svc, err := ai.NewService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			log.Warn("ai service unavailable, imports will use heuristics only", zap.Error(err))
		} else {
			defer svc.Close()
			inferrer = svc
		}
	}

	app := &handlers.Handlers{
		DB:          db,
		Transformer: wpimport.New(inferrer, cfg.Bundle, log),
		Log:         log,
	}

	router := routes.SetupRouter(app)

	log.Info("starting catalog API server", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
