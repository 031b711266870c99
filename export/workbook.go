package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/agriclimate/engine"
)

// ============================================================================
// XLSX EXPORT — One sheet per view
// ============================================================================
// Columns: Country, <key label>, <value label>. Countries run Global first
// then alphabetically; keys within a country follow the view's series order.
// ============================================================================

// ErrNoDataset reports an export requested before any dataset was loaded.
var ErrNoDataset = errors.New("no dataset loaded")

const defaultSheet = "Sheet1"

// NewWorkbook builds the workbook for ds. The caller must Close it.
func NewWorkbook(ds *engine.Dataset) (*excelize.File, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}

	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("workbook style: %w", err)
	}

	for i, view := range engine.Views() {
		sheet := string(view)
		if i == 0 {
			err = f.SetSheetName(defaultSheet, sheet)
		} else {
			_, err = f.NewSheet(sheet)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("workbook sheet %s: %w", sheet, err)
		}

		agg, err := ds.Aggregate(view)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := writeSheet(f, sheet, view, agg, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("workbook sheet %s: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, view engine.View, agg *engine.Aggregate, headerStyle int) error {
	headers := []interface{}{"Country", view.KeyLabel(), view.ValueLabel()}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "C1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "B", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "C", "C", 32); err != nil {
		return err
	}

	row := 2
	for _, country := range agg.Countries() {
		values, ok := agg.Select(country)
		if !ok {
			continue
		}
		for _, p := range engine.SeriesFor(view, values) {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			line := []interface{}{country, p.Label, p.Value}
			if err := f.SetSheetRow(sheet, cell, &line); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

// WriteWorkbook streams the workbook for ds to w.
func WriteWorkbook(w io.Writer, ds *engine.Dataset) error {
	f, err := NewWorkbook(ds)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the workbook for ds to path.
func SaveWorkbook(path string, ds *engine.Dataset) error {
	f, err := NewWorkbook(ds)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
