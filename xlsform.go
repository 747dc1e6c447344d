package xlsform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-xlsform/pkg/orchestrator"
	"github.com/goliatone/go-xlsform/pkg/report"
	"github.com/goliatone/go-xlsform/pkg/workbook"
)

// Report aliases report.Report for callers that only import the root package.
type Report = report.Report

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// ValidateFile loads the workbook at path, runs every rule and returns the
// report. It is the simplest entry point for callers that just want a verdict.
func ValidateFile(ctx context.Context, path string, options ...orchestrator.Option) (*Report, error) {
	return orchestrator.New(options...).Validate(ctx, orchestrator.Request{
		Source: workbook.SourceFromFile(path),
	})
}

// ValidateFS validates a workbook stored inside fsys. The external validator
// never runs for these sources.
func ValidateFS(ctx context.Context, fsys fs.FS, name string, options ...orchestrator.Option) (*Report, error) {
	opts := append([]orchestrator.Option{
		orchestrator.WithLoader(NewLoader(workbook.WithFileSystem(fsys))),
	}, options...)
	return orchestrator.New(opts...).Validate(ctx, orchestrator.Request{
		Source: workbook.SourceFromFS(name),
	})
}

// MergeFiles validates several workbooks as chunks of one form.
func MergeFiles(ctx context.Context, paths []string, options ...orchestrator.Option) (*Report, error) {
	sources := make([]workbook.Source, 0, len(paths))
	for _, path := range paths {
		sources = append(sources, workbook.SourceFromFile(path))
	}
	return orchestrator.New(options...).Merge(ctx, sources...)
}
