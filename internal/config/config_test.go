package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT",
		"SHUTDOWN_TIMEOUT", "LEDGER_PRECISION", "LEDGER_TOLERANCE",
		"CORRELATOR_TIMEOUT", "CALENDAR_PRESET", "CORRELATION_TAGS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", cfg.IdleTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
	if cfg.LedgerPrecision != 8 {
		t.Errorf("LedgerPrecision = %d, want 8", cfg.LedgerPrecision)
	}
	if cfg.LedgerTolerance != "0.0001" {
		t.Errorf("LedgerTolerance = %q, want %q", cfg.LedgerTolerance, "0.0001")
	}
	if cfg.CorrelatorTimeout != 30*time.Second {
		t.Errorf("CorrelatorTimeout = %v, want 30s", cfg.CorrelatorTimeout)
	}
	if cfg.CalendarPreset != "NYSE" {
		t.Errorf("CalendarPreset = %q, want NYSE", cfg.CalendarPreset)
	}
	if len(cfg.CorrelationTags) != 1 || cfg.CorrelationTags[0] != 11 {
		t.Errorf("CorrelationTags = %v, want [11]", cfg.CorrelationTags)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("WRITE_TIMEOUT", "5s")
	t.Setenv("IDLE_TIMEOUT", "30s")
	t.Setenv("SHUTDOWN_TIMEOUT", "15s")
	t.Setenv("LEDGER_PRECISION", "10")
	t.Setenv("LEDGER_TOLERANCE", "0.001")
	t.Setenv("CORRELATOR_TIMEOUT", "45s")
	t.Setenv("CALENDAR_PRESET", "LSE")
	t.Setenv("CORRELATION_TAGS", "11, 37, 55")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LedgerPrecision != 10 {
		t.Errorf("LedgerPrecision = %d, want 10", cfg.LedgerPrecision)
	}
	if cfg.LedgerTolerance != "0.001" {
		t.Errorf("LedgerTolerance = %q, want %q", cfg.LedgerTolerance, "0.001")
	}
	if cfg.CorrelatorTimeout != 45*time.Second {
		t.Errorf("CorrelatorTimeout = %v, want 45s", cfg.CorrelatorTimeout)
	}
	if cfg.CalendarPreset != "LSE" {
		t.Errorf("CalendarPreset = %q, want LSE", cfg.CalendarPreset)
	}
	want := []int{11, 37, 55}
	if len(cfg.CorrelationTags) != len(want) {
		t.Fatalf("CorrelationTags = %v, want %v", cfg.CorrelationTags, want)
	}
	for i, tag := range want {
		if cfg.CorrelationTags[i] != tag {
			t.Errorf("CorrelationTags[%d] = %d, want %d", i, cfg.CorrelationTags[i], tag)
		}
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}

func TestLoad_InvalidCalendarPreset(t *testing.T) {
	clearEnv(t)
	t.Setenv("CALENDAR_PRESET", "ASX")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid CALENDAR_PRESET")
	}
}

func TestLoad_InvalidLedgerPrecision(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_PRECISION", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for non-positive LEDGER_PRECISION")
	}
}

func TestLoad_InvalidCorrelationTags(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORRELATION_TAGS", "11,not-a-number")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for malformed CORRELATION_TAGS")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)

	keys := []string{
		"READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT",
		"CORRELATOR_TIMEOUT",
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, "not-a-duration")

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for invalid %s", key)
			}
		})
	}
}
