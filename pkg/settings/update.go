package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-xlsform/pkg/form"
	"github.com/goliatone/go-xlsform/pkg/rules"
	"github.com/goliatone/go-xlsform/pkg/workbook"
)

var (
	// ErrNothingToUpdate is returned when no value was given and the version
	// formula was not requested.
	ErrNothingToUpdate = errors.New("settings: provide a title, id or version (or ensure the version formula)")
	// ErrPathRequired is returned when Update is called without a file.
	ErrPathRequired = errors.New("settings: workbook path is required")
)

const valueRow = 2

var updateColumns = []string{rules.SettingFormTitle, rules.SettingFormID, rules.SettingVersion}

// IsEmpty reports whether no field is set.
func (v Values) IsEmpty() bool {
	return v.Title == "" && v.ID == "" && v.Version == ""
}

// Update writes values into the settings sheet of the workbook at path,
// creating the sheet and any missing columns. Version is always written: the
// given value, or VersionFormula when it is empty. ensureFormula allows an
// update that only enforces the formula.
func Update(ctx context.Context, path string, values Values, ensureFormula bool) error {
	if strings.TrimSpace(path) == "" {
		return ErrPathRequired
	}
	if values.IsEmpty() && !ensureFormula {
		return ErrNothingToUpdate
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("settings: open %s: %w", path, err)
	}
	defer file.Close()

	sheet, err := settingsSheet(file)
	if err != nil {
		return err
	}
	columns, err := ensureColumns(file, sheet)
	if err != nil {
		return err
	}

	if values.Title != "" {
		if err := file.SetCellStr(sheet, cellName(columns[rules.SettingFormTitle]), values.Title); err != nil {
			return fmt.Errorf("settings: write form_title: %w", err)
		}
	}
	if values.ID != "" {
		if err := file.SetCellStr(sheet, cellName(columns[rules.SettingFormID]), values.ID); err != nil {
			return fmt.Errorf("settings: write form_id: %w", err)
		}
	}
	if err := writeVersion(file, sheet, cellName(columns[rules.SettingVersion]), values.Version); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := file.Save(); err != nil {
		return fmt.Errorf("settings: save %s: %w", path, err)
	}
	return nil
}

func writeVersion(file *excelize.File, sheet, cell, version string) error {
	version = strings.TrimSpace(version)
	if version == "" {
		version = VersionFormula
	}
	var err error
	if strings.HasPrefix(version, "=") {
		err = file.SetCellFormula(sheet, cell, strings.TrimPrefix(version, "="))
	} else {
		err = file.SetCellStr(sheet, cell, version)
	}
	if err != nil {
		return fmt.Errorf("settings: write version: %w", err)
	}
	return nil
}

// settingsSheet returns the existing settings sheet name (matched
// case-insensitively) or creates one.
func settingsSheet(file *excelize.File) (string, error) {
	for _, name := range file.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(name), workbook.SheetSettings) {
			return name, nil
		}
	}
	if _, err := file.NewSheet(workbook.SheetSettings); err != nil {
		return "", fmt.Errorf("settings: create sheet: %w", err)
	}
	return workbook.SheetSettings, nil
}

// ensureColumns maps each written key to its zero-based column, appending
// headers after the existing ones when absent.
func ensureColumns(file *excelize.File, sheet string) (map[string]int, error) {
	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("settings: read sheet %s: %w", sheet, err)
	}
	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}

	columns := make(map[string]int, len(updateColumns))
	for idx, cell := range header {
		key := form.NormalizeHeader(cell)
		if key == "" {
			continue
		}
		if _, seen := columns[key]; !seen {
			columns[key] = idx
		}
	}

	next := len(header)
	for _, key := range updateColumns {
		if _, ok := columns[key]; ok {
			continue
		}
		name, err := excelize.CoordinatesToCellName(next+1, 1)
		if err != nil {
			return nil, fmt.Errorf("settings: header cell: %w", err)
		}
		if err := file.SetCellStr(sheet, name, key); err != nil {
			return nil, fmt.Errorf("settings: write header %s: %w", key, err)
		}
		columns[key] = next
		next++
	}
	return columns, nil
}

func cellName(col int) string {
	return workbook.CellName(valueRow-1, col)
}
