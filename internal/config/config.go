// Package config loads runtime configuration for the quantaf harness
// engine and its cmd/quantaf introspection server from environment
// variables, in the same getStr/getInt/getDuration helper shape the
// teacher's config package uses.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the harness engine.
type Config struct {
	Port            int
	LogLevel        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// LedgerPrecision is the number of significant figures numeric fields
	// are rounded to before tolerance comparison (spec.md §4.6).
	LedgerPrecision int
	// LedgerTolerance is the default absolute numeric tolerance, kept as a
	// string so this package stays free of the decimal library; callers
	// parse it with decimal.NewFromString.
	LedgerTolerance string
	// CorrelatorTimeout is loaded and validated here, but cmd/quantaf does
	// not pass it to the correlator; a SendAndAwait call with a
	// non-positive timeout uses correlator.DefaultTimeout.
	CorrelatorTimeout time.Duration
	// CalendarPreset names the business calendar the generator's
	// SettlementDate uses: NYSE, LSE, or TSE (spec.md §4.1).
	CalendarPreset string
	// CorrelationTags lists the body tags the interceptor copies from
	// request to response during correlation propagation (spec.md §4.4).
	CorrelationTags []int
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	ledgerPrecision, err := getInt("LEDGER_PRECISION", 8)
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_PRECISION: %w", err)
	}
	if ledgerPrecision <= 0 {
		return nil, fmt.Errorf("invalid LEDGER_PRECISION: must be positive, got %d", ledgerPrecision)
	}

	ledgerTolerance := getStr("LEDGER_TOLERANCE", "0.0001")

	correlatorTimeout, err := getDuration("CORRELATOR_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid CORRELATOR_TIMEOUT: %w", err)
	}

	calendarPreset := getStr("CALENDAR_PRESET", "NYSE")
	if !isValidCalendarPreset(calendarPreset) {
		return nil, fmt.Errorf("invalid CALENDAR_PRESET: %q, must be one of: NYSE, LSE, TSE", calendarPreset)
	}

	correlationTags, err := getIntList("CORRELATION_TAGS", []int{11})
	if err != nil {
		return nil, fmt.Errorf("invalid CORRELATION_TAGS: %w", err)
	}

	return &Config{
		Port:              port,
		LogLevel:          logLevel,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ShutdownTimeout:   shutdownTimeout,
		LedgerPrecision:   ledgerPrecision,
		LedgerTolerance:   ledgerTolerance,
		CorrelatorTimeout: correlatorTimeout,
		CalendarPreset:    calendarPreset,
		CorrelationTags:   correlationTags,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

// getIntList parses a comma-separated list of integers, returning
// defaultVal if the env var is unset or empty after trimming.
func getIntList(key string, defaultVal []int) ([]int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	parts := strings.Split(v, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer: %w", p, err)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return defaultVal, nil
	}
	return out, nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func isValidCalendarPreset(name string) bool {
	switch name {
	case "NYSE", "LSE", "TSE":
		return true
	}
	return false
}
