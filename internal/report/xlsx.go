package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Writer writes tables into workbooks under Dir.
type Writer struct {
	Dir string
}

// Path returns where file is written, adding the .xlsx extension if missing.
func (w *Writer) Path(file string) string {
	if !strings.EqualFold(filepath.Ext(file), ".xlsx") {
		file += ".xlsx"
	}
	return filepath.Join(w.Dir, file)
}

// Write puts header and rows on sheet, with the header's top-left cell at the
// 0-based (startRow, startCol). An existing workbook keeps its other sheets;
// an existing sheet of the same name is replaced. It returns the file path.
func (w *Writer) Write(file, sheet string, startRow, startCol int, header []string, rows [][]any) (string, error) {
	if startRow < 0 || startCol < 0 {
		return "", fmt.Errorf("invalid start cell (%d, %d)", startRow, startCol)
	}
	path := w.Path(file)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	f, created, err := openWorkbook(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	idx, err := replaceSheet(f, sheet)
	if err != nil {
		return "", err
	}
	if created && sheet != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return "", fmt.Errorf("drop default sheet: %w", err)
		}
		if idx, err = f.GetSheetIndex(sheet); err != nil {
			return "", err
		}
	}
	f.SetActiveSheet(idx)

	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := setRow(f, sheet, startRow, startCol, hdr); err != nil {
		return "", err
	}
	if err := boldHeader(f, sheet, startRow, startCol, len(header)); err != nil {
		return "", err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, startRow+1+i, startCol, row); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func openWorkbook(path string) (*excelize.File, bool, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("open %s: %w", path, err)
		}
		return f, false, nil
	}
	return excelize.NewFile(), true, nil
}

// replaceSheet creates sheet, discarding any previous sheet with that name.
func replaceSheet(f *excelize.File, sheet string) (int, error) {
	if idx, err := f.GetSheetIndex(sheet); err == nil && idx != -1 {
		stale := sheet + "~"
		if err := f.SetSheetName(sheet, stale); err != nil {
			return 0, fmt.Errorf("rename sheet %s: %w", sheet, err)
		}
		if _, err := f.NewSheet(sheet); err != nil {
			return 0, fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := f.DeleteSheet(stale); err != nil {
			return 0, fmt.Errorf("drop sheet %s: %w", stale, err)
		}
		return f.GetSheetIndex(sheet)
	}
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return 0, fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return idx, nil
}

func setRow(f *excelize.File, sheet string, row, col int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row+1, err)
	}
	return nil
}

func boldHeader(f *excelize.File, sheet string, row, col, width int) error {
	if width == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(col+width, row+1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}
