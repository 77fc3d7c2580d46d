package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/logging"
	"github.com/mmcdole/marquee/internal/mockserver"
)

func main() {
	config.LoadDotenvIfPresent("")

	addr := flag.String("addr", getenv("MARQUEE_MOCK_ADDR", ":3000"), "listen address")
	seedPath := flag.String("seed", os.Getenv("MARQUEE_MOCK_SEED"), "TOML seed file (default: built-in sample catalog)")
	token := flag.String("token", os.Getenv("MARQUEE_MOCK_TOKEN"), "required bearer token (empty disables auth)")
	latency := flag.Duration("latency", 0, "artificial delay added to every API response")
	logLevel := flag.String("log-level", getenv("MARQUEE_MOCK_LOG_LEVEL", "info"), "debug, info, warn or error")
	flag.Parse()

	logger := logging.New(os.Stderr, config.LoggingConfig{Level: *logLevel, Format: "json"})
	slog.SetDefault(logger)

	if err := run(*addr, *seedPath, *token, *latency, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(addr, seedPath, token string, latency time.Duration, logger *slog.Logger) error {
	seed, err := loadSeed(seedPath)
	if err != nil {
		return err
	}

	srv := mockserver.New(seed, mockserver.Options{
		Token:   token,
		Latency: latency,
		Logger:  logger,
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(middleware.RequestID, middleware.Recoverer, requestLogger(logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("marquee-mock listening", "addr", addr, "titles", len(seed.Titles), "auth", token != "")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func loadSeed(path string) (mockserver.Seed, error) {
	if path == "" {
		return mockserver.DefaultSeed()
	}
	return mockserver.LoadSeed(path)
}

// requestLogger logs one line per request
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"requestID", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
