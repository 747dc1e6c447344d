package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/xuri/excelize/v2"
)

func openFromFS(ctx context.Context, filesystem fs.FS, name string) (*excelize.File, error) {
	if filesystem == nil {
		return nil, errors.New("workbook loader: filesystem is not configured")
	}
	if name == "" {
		return nil, errors.New("workbook loader: fs path is required")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	handle, err := filesystem.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = handle.Close()
	}()

	file, err := excelize.OpenReader(handle)
	if err != nil {
		return nil, fmt.Errorf("workbook loader: open %s: %w", name, err)
	}
	return file, nil
}
