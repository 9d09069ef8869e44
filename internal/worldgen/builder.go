package worldgen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/sophont/internal/observe"
	"github.com/MrWong99/sophont/pkg/definition"
	"github.com/MrWong99/sophont/pkg/genotype"
	"github.com/MrWong99/sophont/pkg/ledger"
	"github.com/MrWong99/sophont/pkg/sophont"
)

// defaultWorkers bounds concurrent character builds when [WithWorkers] is
// not given.
const defaultWorkers = 4

// World is the result of a build.
type World struct {
	// Species in scenario order.
	Species []*genotype.Species

	// Characters in scenario order, copies expanded in place. Every character
	// is collated.
	Characters []*sophont.Sophont

	// Took is the wall time of the build.
	Took time.Duration
}

// Builder turns scenarios into collated characters. A Builder may be reused
// for any number of builds; all builds share its registry.
type Builder struct {
	reg     *definition.Registry
	metrics *observe.Metrics
	workers int
	strict  bool
}

// Option is a functional option for [NewBuilder].
type Option func(*Builder)

// WithMetrics sets the metrics sink. Default: [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

// WithWorkers bounds the number of characters built concurrently. Values
// below one are ignored.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithStrictExpression builds every character with strict expression
// checking, see [sophont.WithStrictExpression].
func WithStrictExpression(strict bool) Option {
	return func(b *Builder) { b.strict = strict }
}

// NewBuilder returns a builder that resolves names through reg. reg must be
// configured with a name table.
func NewBuilder(reg *definition.Registry, opts ...Option) *Builder {
	b := &Builder{reg: reg, workers: defaultWorkers}
	for _, o := range opts {
		o(b)
	}
	if b.metrics == nil {
		b.metrics = observe.DefaultMetrics()
	}
	return b
}

// job is one character to build.
type job struct {
	def  *CharacterDef
	name string
}

// Build resolves the scenario's species, then builds and collates every
// character with at most the configured number of workers. The first error
// cancels the remaining builds and is returned.
func (b *Builder) Build(ctx context.Context, sc *Scenario) (*World, error) {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "worldgen.build", trace.WithAttributes(
		attribute.Int("species", len(sc.Species)),
		attribute.Int("workers", b.workers),
	))
	defer span.End()

	world := &World{Species: make([]*genotype.Species, 0, len(sc.Species))}
	species := make(map[string]*genotype.Species, len(sc.Species))
	for _, def := range sc.Species {
		g, err := genotype.ByCharacteristicNames(b.reg, def.Genes, def.Phenes)
		if err != nil {
			err = fmt.Errorf("worldgen: species %q: %w", def.Name, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "species")
			return nil, err
		}
		sp := genotype.NewSpecies(def.Name, g)
		species[def.Name] = sp
		world.Species = append(world.Species, sp)
	}

	for _, c := range sc.Characters {
		if _, ok := species[c.Species]; !ok {
			err := fmt.Errorf("worldgen: character %q: %w: %q", c.Name, ErrUnknownSpecies, c.Species)
			span.RecordError(err)
			span.SetStatus(codes.Error, "species")
			return nil, err
		}
	}

	jobs := expand(sc.Characters)
	span.SetAttributes(attribute.Int("characters", len(jobs)))
	world.Characters = make([]*sophont.Sophont, len(jobs))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.workers)
	for i, j := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			sp := species[j.def.Species]

			b.metrics.ActiveBuilds.Add(egCtx, 1)
			defer b.metrics.ActiveBuilds.Add(egCtx, -1)

			s, err := b.buildCharacter(egCtx, sp, j)
			if err != nil {
				b.metrics.RecordCharacterBuilt(egCtx, sp.Name, "error")
				return fmt.Errorf("worldgen: character %q: %w", j.name, err)
			}
			b.metrics.RecordCharacterBuilt(egCtx, sp.Name, "ok")
			world.Characters[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build")
		return nil, err
	}

	world.Took = time.Since(start)
	observe.Logger(ctx).Info("world built",
		"species", len(world.Species),
		"characters", len(world.Characters),
		"took", world.Took,
	)
	return world, nil
}

func expand(defs []CharacterDef) []job {
	var jobs []job
	for i := range defs {
		def := &defs[i]
		if def.Count <= 1 {
			jobs = append(jobs, job{def: def, name: def.Name})
			continue
		}
		for n := range def.Count {
			jobs = append(jobs, job{def: def, name: fmt.Sprintf("%s #%d", def.Name, n+1)})
		}
	}
	return jobs
}

func (b *Builder) buildCharacter(ctx context.Context, sp *genotype.Species, j job) (*sophont.Sophont, error) {
	opts := []sophont.Option{
		sophont.WithName(j.name),
		sophont.WithAge(j.def.Age),
		sophont.WithObserver(b.metrics),
	}
	if b.strict {
		opts = append(opts, sophont.WithStrictExpression())
	}
	s, err := sophont.New(sp, opts...)
	if err != nil {
		return nil, err
	}

	for i, a := range j.def.Aptitudes {
		apt, err := b.aptitude(a.Kind, a.Name)
		if err != nil {
			return nil, fmt.Errorf("aptitudes[%d]: %w", i, err)
		}
		pkg, err := ledger.NewAptitudePackage(b.reg, apt, a.Level, a.Context)
		if err != nil {
			return nil, fmt.Errorf("aptitudes[%d]: %w", i, err)
		}
		s.Aptitudes.Acquire(pkg, a.Age, a.Memo)
	}

	for i, a := range j.def.Characteristics {
		item, err := b.expressive(a.Kind, a.Name)
		if err != nil {
			return nil, fmt.Errorf("characteristics[%d]: %w", i, err)
		}
		pkg, err := ledger.NewCharacteristicPackage(b.reg, item, a.Level, a.Context)
		if err != nil {
			return nil, fmt.Errorf("characteristics[%d]: %w", i, err)
		}
		if _, err := s.Epigenetics.Acquire(pkg, a.Age, a.Memo); err != nil {
			return nil, fmt.Errorf("characteristics[%d]: %w", i, err)
		}
	}

	s.Collate(ctx)

	for i, tr := range j.def.Training {
		apt, err := b.aptitude(tr.Kind, tr.Name)
		if err != nil {
			return nil, fmt.Errorf("training[%d]: %w", i, err)
		}
		if err := s.Aptitudes.Train(apt, tr.Progress); err != nil {
			return nil, fmt.Errorf("training[%d] %s %q: %w", i, tr.Kind, tr.Name, err)
		}
	}

	observe.Logger(ctx).Debug("character built",
		slog.String("name", s.Name),
		slog.String("species", sp.Name),
		slog.Int("aptitudes", len(s.Aptitudes.Collation())),
		slog.Int("characteristics", len(s.Epigenetics.Collation())),
	)
	return s, nil
}

func (b *Builder) aptitude(kind definition.Kind, name string) (definition.Aptitude, error) {
	d, err := b.reg.LookupByName(kind, name)
	if err != nil {
		return nil, err
	}
	apt, ok := d.(definition.Aptitude)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q is not an aptitude", definition.ErrKeyType, kind, name)
	}
	return apt, nil
}

func (b *Builder) expressive(kind definition.Kind, name string) (definition.Expressive, error) {
	d, err := b.reg.LookupByName(kind, name)
	if err != nil {
		return nil, err
	}
	e, ok := d.(definition.Expressive)
	if !ok {
		return nil, fmt.Errorf("%w: %s %q does not express a characteristic", definition.ErrKeyType, kind, name)
	}
	return e, nil
}
