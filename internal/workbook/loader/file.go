package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

func openFile(ctx context.Context, path string) (*excelize.File, error) {
	if path == "" {
		return nil, errors.New("workbook loader: file path is required")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("workbook loader: open %s: %w", path, err)
	}
	return file, nil
}
