package xlsform

import (
	internalLoader "github.com/goliatone/go-xlsform/internal/workbook/loader"
	"github.com/goliatone/go-xlsform/pkg/workbook"
)

// NewLoader constructs a workbook loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...workbook.LoaderOption) workbook.Loader {
	cfg := workbook.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}
