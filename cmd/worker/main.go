package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"lodge/config"
	"lodge/di"
	"lodge/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := di.InitializeWorker()
	worker.Run(ctx)

	log.Info().Msg("Worker exited.")
}
