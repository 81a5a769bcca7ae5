package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vinipx/quantaf/internal/calendar"
	"github.com/vinipx/quantaf/internal/config"
	"github.com/vinipx/quantaf/internal/correlator"
	"github.com/vinipx/quantaf/internal/generator"
	"github.com/vinipx/quantaf/internal/handler"
	"github.com/vinipx/quantaf/internal/interceptor"
	"github.com/vinipx/quantaf/internal/ledger"
	"github.com/vinipx/quantaf/internal/message"
	"github.com/vinipx/quantaf/internal/scenario"
	"github.com/vinipx/quantaf/internal/stub"
	"github.com/vinipx/quantaf/internal/transport"

	"github.com/shopspring/decimal"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cal, err := calendarForPreset(cfg.CalendarPreset)
	if err != nil {
		logger.Error("failed to build calendar", slog.String("error", err.Error()))
		os.Exit(1)
	}
	gen := generator.New(cal)

	tolerance, err := decimal.NewFromString(cfg.LedgerTolerance)
	if err != nil {
		logger.Error("invalid ledger tolerance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	registry := stub.New(logger)
	led := ledger.New(
		ledger.WithPrecision(int32(cfg.LedgerPrecision)),
		ledger.WithTolerance(tolerance),
		ledger.WithLogger(logger),
	)

	// Two loopback channel pairs stand in for a real FIX session: one
	// carries requests from the correlator out to the venue-side
	// interceptor, the other carries synthesized responses back.
	toVenue, atVenue := transport.NewLoopback(64)
	fromVenue, atCorrelator := transport.NewLoopback(64)

	correlationTags := make([]message.Tag, len(cfg.CorrelationTags))
	for i, t := range cfg.CorrelationTags {
		correlationTags[i] = message.Tag(t)
	}
	venueInterceptor := interceptor.New(registry, fromVenue,
		interceptor.WithCorrelationTags(correlationTags),
		interceptor.WithLogger(logger),
	)

	corr := correlator.New(func(m *message.Message) (string, bool) {
		v, err := m.GetString(message.TagClOrdID)
		return v, err == nil
	}, toVenue, logger)
	corr.BindSession(transport.Session{LocalID: "QUANTAF", RemoteID: "VENUE"})

	runID := gen.OrderID()
	logger.Info("quantaf harness starting", slog.String("run_id", runID), slog.String("calendar", cal.Name()))

	agent := scenario.NewAgent(transport.NoLLMProvider{}, false)

	router := handler.NewRouter(registry, led, corr, agent, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Every request the correlator forwards through toVenue arrives here,
	// is matched against the stub registry, and — on a match — a response
	// goes out through fromVenue.
	atVenue.Start(ctx, func(m *message.Message) {
		if _, err := venueInterceptor.Handle(ctx, m, "VENUE", "QUANTAF"); err != nil {
			logger.Warn("interceptor failed to handle inbound message", slog.String("error", err.Error()))
		}
	})

	// Every response the interceptor produced completes the correlator's
	// matching slot for that correlation key.
	atCorrelator.Start(ctx, func(m *message.Message) {
		corr.Deliver(m)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}

// calendarForPreset resolves a named business calendar preset to a
// concrete *calendar.Calendar.
func calendarForPreset(name string) (*calendar.Calendar, error) {
	switch name {
	case "NYSE":
		return calendar.NYSE(), nil
	case "LSE":
		return calendar.LSE(), nil
	case "TSE":
		return calendar.TSE(), nil
	default:
		return nil, fmt.Errorf("unrecognized calendar preset %q", name)
	}
}
