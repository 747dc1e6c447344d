package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	internalLoader "github.com/goliatone/go-xlsform/internal/workbook/loader"
	"github.com/goliatone/go-xlsform/pkg/chunk"
	"github.com/goliatone/go-xlsform/pkg/external"
	"github.com/goliatone/go-xlsform/pkg/form"
	"github.com/goliatone/go-xlsform/pkg/report"
	"github.com/goliatone/go-xlsform/pkg/rules"
	"github.com/goliatone/go-xlsform/pkg/workbook"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom workbook loader.
func WithLoader(loader workbook.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithEngine injects a configured rule engine.
func WithEngine(engine *rules.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = engine
	}
}

// WithExternal enables the external validator for file sources. Without it
// reports carry a disabled external result.
func WithExternal(v *external.Validator) Option {
	return func(o *Orchestrator) {
		o.external = v
	}
}

// WithChunkSize validates forms larger than n survey rows in concurrent
// chunks. Zero disables chunking.
func WithChunkSize(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.chunkSize = n
		}
	}
}

// WithLogger sets the logger used for pipeline events.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from workbook to report. Missing
// dependencies are initialised with the built-in implementations.
type Orchestrator struct {
	loader    workbook.Loader
	engine    *rules.Engine
	external  *external.Validator
	chunkSize int
	logger    *zap.Logger
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one validation run.
type Request struct {
	// Source identifies the workbook to validate.
	Source workbook.Source

	// SkipExternal disables the external validator for this run only.
	SkipExternal bool
}

// Load reads and parses the workbook at src.
func (o *Orchestrator) Load(ctx context.Context, src workbook.Source) (*form.Form, error) {
	if src == nil {
		return nil, errors.New("orchestrator: source is required")
	}
	wb, err := o.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load workbook: %w", err)
	}
	f, err := form.Load(wb)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load form: %w", err)
	}
	return f, nil
}

// Validate loads the workbook, runs the rules and, for file sources, the
// external validator. A workbook that cannot be loaded yields a fatal report;
// the returned error is reserved for cancellation and invalid requests.
func (o *Orchestrator) Validate(ctx context.Context, req Request) (*report.Report, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Source == nil {
		return nil, errors.New("orchestrator: source is required")
	}
	location := req.Source.Location()

	f, err := o.Load(ctx, req.Source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		o.logger.Warn("workbook could not be loaded", zap.String("file", location), zap.Error(err))
		return report.Fatal(location, err), nil
	}

	findings, err := o.check(ctx, f)
	if err != nil {
		return nil, err
	}

	res := external.Disabled()
	if o.external != nil && !req.SkipExternal && req.Source.Kind() == workbook.SourceKindFile {
		res = o.external.Validate(ctx, location)
	}

	rep := report.Build(location, findings, report.WithExternal(res))
	o.logResult(rep)
	return rep, nil
}

// Merge validates several workbooks as chunks of one form. Cross-chunk rules
// such as duplicate names run once over the merged form.
func (o *Orchestrator) Merge(ctx context.Context, sources ...workbook.Source) (*report.Report, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if len(sources) == 0 {
		return nil, errors.New("orchestrator: at least one source is required")
	}

	locations := make([]string, 0, len(sources))
	for _, src := range sources {
		if src == nil {
			return nil, errors.New("orchestrator: source is required")
		}
		locations = append(locations, src.Location())
	}
	label := strings.Join(locations, "+")

	forms := make([]*form.Form, 0, len(sources))
	for _, src := range sources {
		f, err := o.Load(ctx, src)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			o.logger.Warn("workbook could not be loaded", zap.String("file", src.Location()), zap.Error(err))
			return report.Fatal(label, err), nil
		}
		forms = append(forms, f)
	}

	findings, err := chunk.ValidateAll(ctx, o.engine, forms)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: validate chunks: %w", err)
	}
	rep := report.Build(label, findings, report.WithExternal(external.Disabled()))
	o.logResult(rep)
	return rep, nil
}

func (o *Orchestrator) check(ctx context.Context, f *form.Form) ([]rules.Finding, error) {
	if o.chunkSize <= 0 || len(f.Survey) <= o.chunkSize {
		return o.engine.Check(f), nil
	}
	chunks := chunk.Split(f, o.chunkSize)
	o.logger.Debug("validating in chunks",
		zap.String("file", f.Source),
		zap.Int("chunks", len(chunks)),
		zap.Int("chunk_size", o.chunkSize),
	)
	findings, err := chunk.ValidateAll(ctx, o.engine, chunks)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: validate chunks: %w", err)
	}
	return findings, nil
}

func (o *Orchestrator) logResult(rep *report.Report) {
	o.logger.Info("validation finished",
		zap.String("file", rep.File),
		zap.Bool("valid", rep.Valid),
		zap.Int("errors", rep.Summary.Errors),
		zap.Int("warnings", rep.Summary.Warnings),
		zap.Int("suggestions", rep.Summary.Suggestions),
	)
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalLoader.New(workbook.NewLoaderOptions())
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.engine == nil {
		o.engine = rules.NewEngine(rules.WithLogger(o.logger))
	}
}
