package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-xlsform/pkg/workbook"
)

// Loader implements workbook.Loader by delegating to file or fs.FS strategies
// and reading the spreadsheet with excelize. Construction helpers live in the
// top-level xlsform package.
type Loader struct {
	fs            fs.FS
	maxRows       int
	formulaSheets map[string]struct{}
}

// Ensure the implementation satisfies the public interface.
var _ workbook.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options workbook.LoaderOptions) workbook.Loader {
	formulaSheets := make(map[string]struct{}, len(options.FormulaSheets))
	for _, name := range options.FormulaSheets {
		formulaSheets[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return &Loader{
		fs:            options.FileSystem,
		maxRows:       options.MaxRows,
		formulaSheets: formulaSheets,
	}
}

// Load reads every sheet of the workbook identified by src.
func (l *Loader) Load(ctx context.Context, src workbook.Source) (*workbook.Workbook, error) {
	if src == nil {
		return nil, errors.New("workbook loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		file *excelize.File
		err  error
	)

	switch src.Kind() {
	case workbook.SourceKindFile:
		file, err = openFile(ctx, src.Location())
	case workbook.SourceKindFS:
		file, err = openFromFS(ctx, l.fs, src.Location())
	default:
		err = fmt.Errorf("workbook loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	sheets, err := l.readSheets(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("workbook loader: read %s: %w", src.Location(), err)
	}
	return workbook.New(src, sheets...)
}

func (l *Loader) readSheets(ctx context.Context, file *excelize.File) ([]*workbook.Sheet, error) {
	names := file.GetSheetList()
	sheets := make([]*workbook.Sheet, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		if l.maxRows > 0 && len(rows) > l.maxRows {
			rows = rows[:l.maxRows]
		}

		sheet := &workbook.Sheet{Name: name, Rows: rows}
		if _, ok := l.formulaSheets[strings.ToLower(strings.TrimSpace(name))]; ok {
			formulas, err := readFormulas(file, name, rows)
			if err != nil {
				return nil, fmt.Errorf("sheet %q: %w", name, err)
			}
			sheet.Formulas = formulas
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// readFormulas scans the header width of every row because formula cells
// without a cached value come back empty from GetRows and may be trimmed.
func readFormulas(file *excelize.File, sheet string, rows [][]string) (map[string]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	width := len(rows[0])
	var formulas map[string]string
	for r := range rows {
		cols := width
		if len(rows[r]) > cols {
			cols = len(rows[r])
		}
		for c := 0; c < cols; c++ {
			cell := workbook.CellName(r, c)
			formula, err := file.GetCellFormula(sheet, cell)
			if err != nil {
				return nil, err
			}
			formula = strings.TrimPrefix(strings.TrimSpace(formula), "=")
			if formula == "" {
				continue
			}
			if formulas == nil {
				formulas = make(map[string]string)
			}
			formulas[cell] = formula
		}
	}
	return formulas, nil
}
