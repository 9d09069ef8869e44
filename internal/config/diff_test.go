package config_test

import (
	"testing"

	"github.com/MrWong99/sophont/internal/config"
)

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Server:   config.ServerConfig{LogLevel: config.LogInfo},
		Scenario: config.ScenarioConfig{Path: "a.yaml", Workers: 2},
	}
	d := config.Diff(cfg, cfg)
	if d.LogLevelChanged || d.CatalogChanged || d.ScenarioChanged || d.TelemetryChanged {
		t.Errorf("expected no changes for identical configs, got %+v", d)
	}
	if d.RequiresRebuild() {
		t.Error("identical configs must not require a rebuild")
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Server: config.ServerConfig{LogLevel: config.LogInfo}}
	new := &config.Config{Server: config.ServerConfig{LogLevel: config.LogDebug}}

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("expected NewLogLevel=debug, got %q", d.NewLogLevel)
	}
	if d.RequiresRebuild() {
		t.Error("a log level change alone must not require a rebuild")
	}
}

func TestDiff_RebuildTriggers(t *testing.T) {
	t.Parallel()
	base := config.Config{
		Catalog:  config.CatalogConfig{Path: "core.yaml"},
		Scenario: config.ScenarioConfig{Path: "a.yaml", Workers: 2},
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		check  func(config.ConfigDiff) bool
	}{
		{
			name:   "catalog path",
			mutate: func(c *config.Config) { c.Catalog.Path = "other.yaml" },
			check:  func(d config.ConfigDiff) bool { return d.CatalogChanged },
		},
		{
			name:   "scenario workers",
			mutate: func(c *config.Config) { c.Scenario.Workers = 16 },
			check:  func(d config.ConfigDiff) bool { return d.ScenarioChanged },
		},
		{
			name:   "strict expression",
			mutate: func(c *config.Config) { c.Scenario.StrictExpression = true },
			check:  func(d config.ConfigDiff) bool { return d.ScenarioChanged },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			old, new := base, base
			tc.mutate(&new)
			d := config.Diff(&old, &new)
			if !tc.check(d) {
				t.Errorf("change not detected: %+v", d)
			}
			if !d.RequiresRebuild() {
				t.Error("expected RequiresRebuild=true")
			}
		})
	}
}

func TestDiff_TelemetryChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{}
	new := &config.Config{Telemetry: config.TelemetryConfig{TraceExporter: config.TraceStdout}}

	d := config.Diff(old, new)
	if !d.TelemetryChanged {
		t.Error("expected TelemetryChanged=true")
	}
	if d.RequiresRebuild() {
		t.Error("telemetry changes must not require a rebuild")
	}
}

func TestConfigDiff_FileChangesRequireRebuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    config.ConfigDiff
		want bool
	}{
		{name: "zero", d: config.ConfigDiff{}, want: false},
		{name: "catalog file", d: config.ConfigDiff{CatalogFileChanged: true}, want: true},
		{name: "scenario file", d: config.ConfigDiff{ScenarioFileChanged: true}, want: true},
		{name: "log level only", d: config.ConfigDiff{LogLevelChanged: true, NewLogLevel: config.LogWarn}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.d.RequiresRebuild(); got != tc.want {
				t.Errorf("RequiresRebuild() = %v, want %v", got, tc.want)
			}
			if got := tc.d.IsZero(); got != (tc.name == "zero") {
				t.Errorf("IsZero() = %v", got)
			}
		})
	}
}
