package workbook

import (
	"context"
	"io/fs"
)

// Loader reads workbooks from different sources (filesystem, fs.FS).
// Implementations live under internal/workbook but satisfy this contract.
type Loader interface {
	Load(ctx context.Context, src Source) (*Workbook, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem enables loading from an abstract filesystem; SourceKindFS
	// sources fail when it is nil.
	FileSystem fs.FS

	// MaxRows caps how many rows are read per sheet. Zero means unlimited.
	MaxRows int

	// FormulaSheets names the sheets whose formulas are captured alongside
	// cell values. Defaults to the settings sheet.
	FormulaSheets []string
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for SourceFromFS lookups.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithMaxRows limits the number of rows read from each sheet.
func WithMaxRows(n int) LoaderOption {
	return func(opts *LoaderOptions) {
		if n > 0 {
			opts.MaxRows = n
		}
	}
}

// WithFormulaSheets replaces the list of sheets whose formulas are read.
func WithFormulaSheets(names ...string) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FormulaSheets = append([]string(nil), names...)
	}
}

// NewLoaderOptions applies a set of LoaderOption values and returns the
// resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{
		FormulaSheets: []string{SheetSettings},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// Construction helpers live in the top-level xlsform package to prevent import cycles.
