package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrWong99/sophont/internal/config"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const sampleYAML = `
server:
  log_level: debug

catalog:
  path: catalogs/core.yaml

scenario:
  path: scenarios/frontier.yaml
  workers: 8
  strict_expression: true

telemetry:
  service_name: sophont-test
  trace_exporter: otlp
  otlp_endpoint: http://localhost:4318
  dump_metrics: true
`

// ── YAML loading ──────────────────────────────────────────────────────────────

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("server.log_level: got %q, want %q", cfg.Server.LogLevel, config.LogDebug)
	}
	if cfg.Catalog.Path != "catalogs/core.yaml" {
		t.Errorf("catalog.path: got %q", cfg.Catalog.Path)
	}
	if cfg.Scenario.WorkerCount() != 8 || !cfg.Scenario.StrictExpression {
		t.Errorf("scenario: got %+v", cfg.Scenario)
	}
	if cfg.Telemetry.TraceExporter != config.TraceOTLP || !cfg.Telemetry.DumpMetrics {
		t.Errorf("telemetry: got %+v", cfg.Telemetry)
	}
}

func TestLoadFromReader_EmptyIsValid(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"{}", ""} {
		cfg, err := config.LoadFromReader(strings.NewReader(input))
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if cfg.Scenario.WorkerCount() != config.DefaultWorkers {
			t.Errorf("WorkerCount() = %d, want %d", cfg.Scenario.WorkerCount(), config.DefaultWorkers)
		}
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("scenario:\n  wrokers: 2\n"))
	if err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

// ── Validation ────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr []string
	}{
		{
			name:    "invalid log level",
			yaml:    "server:\n  log_level: verbose\n",
			wantErr: []string{"log_level"},
		},
		{
			name:    "negative workers",
			yaml:    "scenario:\n  workers: -1\n",
			wantErr: []string{"scenario.workers"},
		},
		{
			name:    "invalid trace exporter",
			yaml:    "telemetry:\n  trace_exporter: zipkin\n",
			wantErr: []string{"trace_exporter"},
		},
		{
			name:    "multiple errors",
			yaml:    "server:\n  log_level: loud\nscenario:\n  workers: -3\n",
			wantErr: []string{"log_level", "scenario.workers"},
		},
		{
			name: "endpoint without otlp only warns",
			yaml: "telemetry:\n  trace_exporter: stdout\n  otlp_endpoint: http://x\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tc.yaml))
			if len(tc.wantErr) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			for _, want := range tc.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error should mention %q, got: %v", want, err)
				}
			}
		})
	}
}

func TestLogLevel_Level(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   config.LogLevel
		want slog.Level
	}{
		{config.LogDebug, slog.LevelDebug},
		{config.LogInfo, slog.LevelInfo},
		{config.LogWarn, slog.LevelWarn},
		{config.LogError, slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := tc.in.Level(); got != tc.want {
			t.Errorf("%q.Level() = %v, want %v", tc.in, got, tc.want)
		}
	}
}
