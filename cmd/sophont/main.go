// Command sophont builds a population of characters from a scenario file and
// prints their collated character sheets.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MrWong99/sophont/internal/app"
	"github.com/MrWong99/sophont/internal/config"
	"github.com/MrWong99/sophont/internal/observe"
	"github.com/MrWong99/sophont/pkg/sophont"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", `path to the YAML configuration file ("" for defaults)`)
	scenarioPath := flag.String("scenario", "", "scenario YAML file; overrides scenario.path")
	asJSON := flag.Bool("json", false, "print character sheets as JSON")
	watch := flag.Bool("watch", false, "rebuild the world whenever the config, catalog or scenario file changes")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "sophont: config file %q not found; copy configs/example.yaml to get started or pass -config \"\"\n", *configPath)
			} else {
				fmt.Fprintf(os.Stderr, "sophont: %v\n", err)
			}
			return 1
		}
	}
	applyFlags(cfg, *scenarioPath)

	// ── Logger ────────────────────────────────────────────────────────────────
	var level slog.LevelVar
	level.Set(cfg.Server.LogLevel.Level())
	slog.SetDefault(newLogger(&level))

	slog.Info("sophont starting",
		"config", *configPath,
		"scenario", cfg.Scenario.Path,
		"log_level", level.Level(),
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	exporter, err := observe.NewTraceExporter(ctx, string(cfg.Telemetry.TraceExporter), cfg.Telemetry.OTLPEndpoint, os.Stderr)
	if err != nil {
		slog.Error("failed to create trace exporter", "err", err)
		return 1
	}
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		TraceExporter:  exporter,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Startup summary ───────────────────────────────────────────────────────
	printStartupSummary(cfg)

	application, err := buildWorld(ctx, cfg, *asJSON)
	if err != nil {
		slog.Error("failed to build world", "err", err)
		return 1
	}

	// ── Watch mode ────────────────────────────────────────────────────────────
	if *watch && *configPath != "" {
		rebuild := make(chan *config.Config, 1)
		onChange := func(old, new *config.Config, d config.ConfigDiff) {
			if d.LogLevelChanged {
				level.Set(d.NewLogLevel.Level())
				slog.Info("log level changed", "level", d.NewLogLevel)
			}
			if d.TelemetryChanged {
				slog.Warn("telemetry settings changed; restart to apply")
			}
			if d.RequiresRebuild() {
				// Keep only the latest pending config.
				select {
				case <-rebuild:
				default:
				}
				rebuild <- new
			}
		}
		w, err := config.NewWatcher(*configPath, onChange, config.WithOverride(func(c *config.Config) {
			applyFlags(c, *scenarioPath)
		}))
		if err != nil {
			slog.Error("failed to watch config", "err", err)
			return 1
		}
		defer w.Stop()

		slog.Info("watching config for changes; press Ctrl+C to stop", "path", *configPath)
	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case next := <-rebuild:
				slog.Info("inputs changed, rebuilding world")
				replacement, err := buildWorld(ctx, next, *asJSON)
				if err != nil {
					slog.Error("rebuild failed; keeping previous world", "err", err)
					continue
				}
				shutdown(application)
				application = replacement
			}
		}
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	if !shutdown(application) {
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// applyFlags lets command-line flags override cfg.
func applyFlags(cfg *config.Config, scenarioPath string) {
	if scenarioPath != "" {
		cfg.Scenario.Path = scenarioPath
	}
}

// buildWorld creates an application for cfg, builds its world and prints the
// resulting sheets to stdout.
func buildWorld(ctx context.Context, cfg *config.Config, asJSON bool) (*app.App, error) {
	application, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	world, err := application.Run(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("world ready", "characters", len(world.Characters), "took", world.Took)

	sheets, err := application.Sheets()
	if err != nil {
		return nil, err
	}
	if asJSON {
		err = writeJSON(os.Stdout, sheets)
	} else {
		err = writeSheets(os.Stdout, sheets)
	}
	if err != nil {
		return nil, fmt.Errorf("write sheets: %w", err)
	}

	if cfg.Telemetry.DumpMetrics {
		if err := observe.WriteText(os.Stderr, nil, "sophont_"); err != nil {
			slog.Warn("failed to dump metrics", "err", err)
		}
	}
	return application, nil
}

func shutdown(a *app.App) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "err", err)
		return false
	}
	return true
}

// ── Output ────────────────────────────────────────────────────────────────────

func writeJSON(w io.Writer, sheets []sophont.Sheet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sheets)
}

func writeSheets(w io.Writer, sheets []sophont.Sheet) error {
	var b strings.Builder
	for _, sh := range sheets {
		fmt.Fprintf(&b, "%s (%s, age %d)\n", sh.Name, sh.Species, sh.Age)
		if sh.Stale {
			b.WriteString("  (stale)\n")
		}
		writeLines(&b, "Characteristics", sh.Characteristics)
		writeLines(&b, "Aptitudes", sh.Aptitudes)
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeLines(b *strings.Builder, title string, lines []sophont.Line) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", title)
	for _, l := range lines {
		if l.TrainingProgress > 0 {
			fmt.Fprintf(b, "    %-20s %3d  (%.0f%% trained)\n", l.Name, l.Level, l.TrainingProgress*100)
			continue
		}
		fmt.Fprintf(b, "    %-20s %3d\n", l.Name, l.Level)
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	catalog := cfg.Catalog.Path
	if catalog == "" {
		catalog = "(embedded)"
	}
	exporter := string(cfg.Telemetry.TraceExporter)
	if exporter == "" {
		exporter = string(config.TraceNone)
	}

	fmt.Fprintln(os.Stderr, "╔═══════════════════════════════════════╗")
	fmt.Fprintln(os.Stderr, "║         Sophont — startup summary     ║")
	fmt.Fprintln(os.Stderr, "╠═══════════════════════════════════════╣")
	printRow("Catalog", catalog)
	printRow("Scenario", cfg.Scenario.Path)
	printRow("Workers", fmt.Sprint(cfg.Scenario.WorkerCount()))
	printRow("Strict expr.", fmt.Sprint(cfg.Scenario.StrictExpression))
	printRow("Traces", exporter)
	fmt.Fprintln(os.Stderr, "╚═══════════════════════════════════════╝")
}

func printRow(label, value string) {
	if value == "" {
		value = "(not configured)"
	}
	if len(value) > 19 {
		value = "…" + value[len(value)-16:]
	}
	fmt.Fprintf(os.Stderr, "║  %-12s    : %-19s ║\n", label, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level slog.Leveler) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
