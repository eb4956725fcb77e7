package main

import (
	"callnotes/internal/config"
	"callnotes/internal/session"
	"callnotes/internal/summarizer"
	"callnotes/internal/web"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()

	bootLog := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		bootLog.Error("Failed to load .env file",
			"error", err)

		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog.Error("Failed to load config",
			"error", err)

		return 1
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum := initSummarizer(ctx, cfg, log)
	sess := session.New(sum, log)

	srv, err := web.New(web.Options{
		Addr:        cfg.HTTPAddr,
		Development: cfg.IsDevelopment(),
	}, sess, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize web server",
			"error", err)

		return 1
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.ListenAndServe)

	g.Go(func() error {
		<-gctx.Done()
		log.InfoContext(ctx, "Shutting down...",
			"uptimeSeconds", time.Since(start).Seconds())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		drained := make(chan struct{})
		go func() {
			sess.Wait()
			close(drained)
		}()

		select {
		case <-drained:
		case <-shutdownCtx.Done():
			log.WarnContext(ctx, "Summary request is still running at shutdown",
				"timeout", cfg.ShutdownTimeout.String())
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		log.ErrorContext(ctx, "Server stopped with error",
			"error", err,
			"addr", cfg.HTTPAddr)

		return 1
	}

	log.InfoContext(ctx, "Server is stopped",
		"uptimeSeconds", time.Since(start).Seconds())

	return 0
}

func initSummarizer(ctx context.Context, cfg config.Config, log *slog.Logger) summarizer.Summarizer {
	if cfg.APIKey == "" {
		log.WarnContext(ctx, "GEMINI_API_KEY is missing so every summary request will fail",
			"envVar", "GEMINI_API_KEY")
	}

	s := summarizer.NewOpenAISummarizer(summarizer.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
	})

	log.InfoContext(ctx, "Summarizer is initialized",
		"model", cfg.LLMModel,
		"baseURL", cfg.LLMBaseURL)

	return s
}
