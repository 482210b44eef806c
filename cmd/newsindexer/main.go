package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"NewsIndexer/internal/app"
	"NewsIndexer/internal/config"
	"NewsIndexer/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	mode := flag.String("mode", "serve", "serve | notify | sitemap")
	slug := flag.String("slug", "", "article slug for -mode=notify")
	engineName := flag.String("engine", "", "restrict -mode=notify to one primary engine")
	out := flag.String("out", "public", "output directory for -mode=sitemap")
	flag.Parse()

	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logging.NewWithFormat(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.Warn("could not load .env file", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("close application", "error", err)
		}
	}()

	switch *mode {
	case "serve":
		err = application.Serve(ctx)
	case "notify":
		if *slug == "" {
			logger.Error("-slug is required for -mode=notify")
			return 2
		}
		report, nErr := application.NotifySlug(ctx, *slug, *engineName)
		if nErr == nil {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(report)
		}
		err = nErr
	case "sitemap":
		err = application.WriteDocuments(ctx, *out)
	default:
		logger.Error("unknown mode", "mode", *mode)
		return 2
	}

	if err != nil {
		logger.Error("application stopped", "mode", *mode, "error", err)
		return 1
	}
	return 0
}
