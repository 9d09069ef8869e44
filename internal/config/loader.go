package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Scenario.Workers < 0 {
		errs = append(errs, fmt.Errorf("scenario.workers %d must not be negative", cfg.Scenario.Workers))
	}

	tel := cfg.Telemetry
	if tel.TraceExporter != "" && !tel.TraceExporter.IsValid() {
		errs = append(errs, fmt.Errorf("telemetry.trace_exporter %q is invalid; valid values: none, stdout, otlp", tel.TraceExporter))
	}
	if tel.OTLPEndpoint != "" && tel.TraceExporter != TraceOTLP {
		slog.Warn("telemetry.otlp_endpoint is set but telemetry.trace_exporter is not otlp; endpoint is ignored",
			"trace_exporter", tel.TraceExporter,
		)
	}
	if tel.TraceExporter == TraceOTLP && tel.OTLPEndpoint == "" {
		slog.Warn("telemetry.trace_exporter is otlp but no otlp_endpoint is set; using the exporter's environment defaults")
	}

	if cfg.Catalog.Path == "" {
		slog.Debug("catalog.path is empty; using the embedded default catalog")
	}

	return errors.Join(errs...)
}
