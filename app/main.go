package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rssriver/app/api"
	"rssriver/app/cfg"
	"rssriver/app/content"
	"rssriver/app/feed"
	"rssriver/app/store"
	"rssriver/app/summarizer"
	"rssriver/app/tasks"
)

func main() {
	// Load configuration from environment variables and command-line flags
	c, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if c == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if c.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting rssriver server", "version", c.Version)

	ctx := context.Background()

	// Storage connection
	st, err := store.New(ctx, c.RedisAddr, c.KVPrefix)
	if err != nil {
		slog.Error("Failed to connect to storage", "addr", c.RedisAddr, "error", err)
		os.Exit(1)
	}
	defer st.Close()
	slog.Info("Connected to storage", "addr", c.RedisAddr, "prefix", c.KVPrefix)

	// Seed subscriptions on first run
	if c.SeedFile != "" {
		if err := seedFeeds(ctx, st, c.SeedFile); err != nil {
			slog.Error("Failed to seed subscriptions", "file", c.SeedFile, "error", err)
			os.Exit(1)
		}
	}

	// Initialize core components
	httpClient := &http.Client{}
	fetchTimeout := time.Duration(c.FetchTimeout) * time.Second

	parser := feed.NewParser()
	fetcher := feed.NewFetcher(httpClient, parser, c.UserAgent, fetchTimeout)
	aggregator := feed.NewAggregator(fetcher)

	sanitizer := content.NewSanitizer()
	extractor := content.NewExtractor(httpClient, c.UserAgent, fetchTimeout)
	resolver := content.NewResolver(fetcher, extractor, sanitizer)

	var s summarizer.Summarizer
	if c.OpenAIAPIKey != "" {
		s = summarizer.NewCached(summarizer.NewOpenAISummarizer(c.OpenAIAPIKey), st)
		slog.Info("Summarization enabled")
	} else {
		slog.Info("Summarization disabled (OPENAI_API_KEY not set)")
	}

	// Initialize and start the background refresh scheduler
	scheduler := tasks.NewScheduler(st, aggregator)
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize HTTP server
	apiHandler := api.NewHandler(st, aggregator, fetcher, resolver, s)
	server := api.NewServer(apiHandler, c.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown
	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// seedFeeds imports subscriptions from the seed file, skipping already
// known URLs so restarts are idempotent.
func seedFeeds(ctx context.Context, st *store.Store, path string) error {
	seeds, err := store.LoadSeed(path)
	if err != nil {
		return err
	}

	imported, err := st.ImportSeed(ctx, seeds)
	if err != nil {
		return err
	}

	slog.Info("Seed subscriptions imported", "file", path, "imported", imported, "total", len(seeds))

	return nil
}
