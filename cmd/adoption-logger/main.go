// Command adoption-logger consumes adoption events from RabbitMQ and
// appends them to a log file.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/config"
	"github.com/orablu/space-adoption/internal/logger"
	"github.com/orablu/space-adoption/internal/queue"
)

func main() {
	_ = godotenv.Load()
	if err := logger.Initialize(logger.Config{Debug: os.Getenv("LOG_DEBUG") == "true"}); err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	url := config.RabbitURL()
	path := os.Getenv("ADOPTION_LOG_PATH")
	if path == "" {
		path = "logs/adoptions.log"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("adoption-logger started", zap.String("log_path", path))
	c := &queue.Consumer{URL: url, LogPath: path}
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(err, zap.String("op", "consume"))
	}
}
