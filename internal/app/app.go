// Package app wires the Sophont subsystems into a running application.
//
// The App struct owns the full lifecycle: New loads the catalog and scenario
// and builds the shared definition registry, Run generates the world, and
// Shutdown tears everything down in order.
//
// For testing, inject in-memory inputs via functional options (WithCatalog,
// WithScenario, etc.). When an option is not provided, New loads the inputs
// named by the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MrWong99/sophont/internal/catalog"
	"github.com/MrWong99/sophont/internal/config"
	"github.com/MrWong99/sophont/internal/observe"
	"github.com/MrWong99/sophont/internal/worldgen"
	"github.com/MrWong99/sophont/pkg/definition"
	"github.com/MrWong99/sophont/pkg/sophont"
)

// ErrNoScenario is returned by [New] when neither [WithScenario] nor
// scenario.path supplies a scenario.
var ErrNoScenario = errors.New("app: no scenario configured")

// ErrNotBuilt is returned by accessors that need a world before [App.Run]
// has completed.
var ErrNotBuilt = errors.New("app: world not built")

// App owns all subsystem lifetimes and orchestrates world generation.
type App struct {
	cfg     *config.Config
	metrics *observe.Metrics

	// Subsystems, initialised in New.
	catalog  *catalog.File
	table    *catalog.Table
	registry *definition.Registry
	scenario *worldgen.Scenario
	builder  *worldgen.Builder

	mu    sync.RWMutex
	world *worldgen.World

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithCatalog injects a parsed catalog instead of loading catalog.path.
func WithCatalog(f *catalog.File) Option {
	return func(a *App) { a.catalog = f }
}

// WithScenario injects a parsed scenario instead of loading scenario.path.
func WithScenario(sc *worldgen.Scenario) Option {
	return func(a *App) { a.scenario = sc }
}

// WithMetrics injects a metrics sink instead of [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithCloser registers fn to run during Shutdown, after the app's own
// closers.
func WithCloser(fn func() error) Option {
	return func(a *App) { a.closers = append(a.closers, fn) }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New creates an App by wiring all subsystems together. Use Option functions
// to inject test doubles for any input.
//
// New performs all initialisation synchronously: catalog loading, name table
// construction, registry setup and scenario loading. Building the world is
// left to [App.Run].
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}

	// ── 1. Catalog ───────────────────────────────────────────────────────
	if err := a.initCatalog(ctx); err != nil {
		return nil, fmt.Errorf("app: init catalog: %w", err)
	}

	// ── 2. Registry ──────────────────────────────────────────────────────
	a.registry = definition.NewRegistry(
		definition.WithNameTable(a.table),
		definition.WithObserver(a.metrics),
	)

	// ── 3. Scenario ──────────────────────────────────────────────────────
	if err := a.initScenario(); err != nil {
		return nil, fmt.Errorf("app: init scenario: %w", err)
	}

	// ── 4. Builder ───────────────────────────────────────────────────────
	a.builder = worldgen.NewBuilder(a.registry,
		worldgen.WithMetrics(a.metrics),
		worldgen.WithWorkers(cfg.Scenario.WorkerCount()),
		worldgen.WithStrictExpression(cfg.Scenario.StrictExpression),
	)

	return a, nil
}

// ─── Init helpers ────────────────────────────────────────────────────────────

// initCatalog loads the catalog and builds the name table from it.
func (a *App) initCatalog(ctx context.Context) error {
	if a.catalog == nil {
		if path := a.cfg.Catalog.Path; path != "" {
			f, err := catalog.LoadFile(path)
			if err != nil {
				return err
			}
			a.catalog = f
		} else {
			a.catalog = catalog.Default()
		}
	}

	tbl, err := catalog.FromFile(a.catalog)
	if err != nil {
		return err
	}
	a.table = tbl

	observe.Logger(ctx).Info("loaded catalog",
		"name", a.catalog.Catalog.Name,
		"skills", len(a.catalog.Skills),
		"knowledges", len(a.catalog.Knowledges),
		"characteristics", len(a.catalog.Characteristics),
	)
	return nil
}

// initScenario loads the scenario file, or validates the injected one.
func (a *App) initScenario() error {
	if a.scenario != nil {
		return worldgen.Validate(a.scenario)
	}
	path := a.cfg.Scenario.Path
	if path == "" {
		return ErrNoScenario
	}
	sc, err := worldgen.LoadFile(path)
	if err != nil {
		return err
	}
	a.scenario = sc
	slog.Info("loaded scenario", "path", path, "species", len(sc.Species), "characters", len(sc.Characters))
	return nil
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run builds the world from the scenario and keeps it for [App.World] and
// [App.Sheets]. A failed build leaves the previous world in place.
func (a *App) Run(ctx context.Context) (*worldgen.World, error) {
	world, err := a.builder.Build(ctx, a.scenario)
	if err != nil {
		return nil, fmt.Errorf("app: build world: %w", err)
	}

	a.mu.Lock()
	a.world = world
	a.mu.Unlock()
	return world, nil
}

// World returns the last world built by [App.Run], or nil.
func (a *App) World() *worldgen.World {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.world
}

// Registry returns the definition registry shared by all characters.
func (a *App) Registry() *definition.Registry { return a.registry }

// Table returns the catalog name table the registry resolves names through.
func (a *App) Table() *catalog.Table { return a.table }

// Sheets returns a sheet per character of the last built world, in scenario
// order.
func (a *App) Sheets() ([]sophont.Sheet, error) {
	world := a.World()
	if world == nil {
		return nil, ErrNotBuilt
	}
	sheets := make([]sophont.Sheet, len(world.Characters))
	for i, s := range world.Characters {
		sheets[i] = s.Sheet(a.registry)
	}
	return sheets, nil
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown drops the built world and runs the registered closers in order.
// It respects the context deadline: if ctx expires before all closers finish,
// remaining closers are skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))

		a.mu.Lock()
		a.world = nil
		a.mu.Unlock()

		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
