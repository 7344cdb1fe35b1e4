package report

import (
	"time"

	"koken-report/internal/logger"

	"github.com/xuri/excelize/v2"
)

// mergeRect is a merged range in 1-based coordinates
type mergeRect struct {
	startCol, startRow int
	endCol, endRow     int
}

// sheetWriter writes values into one sheet and refuses cells that cannot hold
// a value on their own: every member of a merged range except its top-left anchor.
type sheetWriter struct {
	file   *excelize.File
	sheet  string
	merges []mergeRect
}

func newSheetWriter(f *excelize.File, sheet string) *sheetWriter {
	w := &sheetWriter{file: f, sheet: sheet}

	mergedCells, err := f.GetMergeCells(sheet)
	if err != nil {
		logger.LogSkip(sheet, "cannot read merged ranges: %v", err)
		return w
	}
	for _, mc := range mergedCells {
		c1, r1, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			continue
		}
		c2, r2, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			continue
		}
		w.merges = append(w.merges, mergeRect{startCol: c1, startRow: r1, endCol: c2, endRow: r2})
	}
	return w
}

// Writable reports whether the cell at (col, row) can independently hold a value
func (w *sheetWriter) Writable(col, row int) bool {
	if col < 1 || row < 1 || col > excelize.MaxColumns || row > excelize.TotalRows {
		return false
	}
	for _, m := range w.merges {
		if col < m.startCol || col > m.endCol || row < m.startRow || row > m.endRow {
			continue
		}
		return col == m.startCol && row == m.startRow
	}
	return true
}

// Set writes value into the named cell. An empty name means the field is not
// part of this template layout. Returns false when the write was skipped.
func (w *sheetWriter) Set(cell string, value interface{}) bool {
	if cell == "" {
		return false
	}
	col, row, err := excelize.CellNameToCoordinates(cell)
	if err != nil {
		logger.LogSkip(w.sheet, "invalid cell %q: %v", cell, err)
		return false
	}
	return w.SetAt(col, row, value)
}

// SetAt writes value at 1-based (col, row)
func (w *sheetWriter) SetAt(col, row int, value interface{}) bool {
	if !w.Writable(col, row) {
		logger.LogSkip(w.sheet, "cell (col %d, row %d) is inside a merged range", col, row)
		return false
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	if t, ok := value.(time.Time); ok {
		err = w.setDate(cell, t)
	} else {
		err = w.file.SetCellValue(w.sheet, cell, value)
	}
	if err != nil {
		logger.LogSkip(w.sheet, "write %s: %v", cell, err)
		return false
	}
	return true
}

// dateNumFmt is applied to date cells whose template style carries no number format
var dateNumFmt = "yyyy/m/d"

// setDate writes t as a date serial. excelize replaces the cell's number format
// with one it picks from the value (mmm-yy for the first of a month); the
// template's own format is put back, or yyyy/m/d when it had none.
func (w *sheetWriter) setDate(cell string, t time.Time) error {
	orig, err := w.file.GetCellStyle(w.sheet, cell)
	if err != nil {
		return err
	}
	if err := w.file.SetCellValue(w.sheet, cell, t); err != nil {
		return err
	}

	style := &excelize.Style{}
	if orig != 0 {
		s, err := w.file.GetStyle(orig)
		if err != nil {
			return err
		}
		if s.NumFmt != 0 || s.CustomNumFmt != nil {
			return w.file.SetCellStyle(w.sheet, cell, cell, orig)
		}
		style = s
	}
	style.CustomNumFmt = &dateNumFmt
	id, err := w.file.NewStyle(style)
	if err != nil {
		return err
	}
	return w.file.SetCellStyle(w.sheet, cell, cell, id)
}

// ClearRange blanks every writable cell in the rectangle, keeping styles and merges.
// Returns the number of cells cleared.
func (w *sheetWriter) ClearRange(startRow, endRow, startCol, endCol int) int {
	cleared := 0
	for row := startRow; row <= endRow; row++ {
		for col := startCol; col <= endCol; col++ {
			if !w.Writable(col, row) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				continue
			}
			if err := w.file.SetCellValue(w.sheet, cell, nil); err != nil {
				continue
			}
			cleared++
		}
	}
	return cleared
}
