// Package workbook reads and writes the tracking spreadsheet with excelize.
package workbook

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// File is an opened workbook. Rows returns cells as their displayed text,
// RawRows as their stored values.
type File struct {
	f *excelize.File
}

// Open opens the workbook at path.
func Open(path string) (*File, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("workbook: open %s: %w", path, err)
	}
	return &File{f: f}, nil
}

// OpenReader reads a workbook from r.
func OpenReader(r io.Reader) (*File, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("workbook: read: %w", err)
	}
	return &File{f: f}, nil
}

// OpenBytes reads a workbook held in memory.
func OpenBytes(data []byte) (*File, error) {
	return OpenReader(bytes.NewReader(data))
}

// SheetNames lists the sheets in workbook order.
func (w *File) SheetNames() []string {
	return w.f.GetSheetList()
}

// Rows returns every row of sheet. Trailing empty cells of a row are
// dropped, so callers must bounds-check column indexes.
func (w *File) Rows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("workbook: read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// RawRows is Rows with number formats ignored: a cell showing "1,200" or
// "15%" comes back as "1200" or "0.15". Dates come back as serial numbers.
func (w *File) RawRows(sheet string) ([][]string, error) {
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("workbook: read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// Close releases temporary files held by excelize.
func (w *File) Close() error {
	return w.f.Close()
}

// Sheet is one sheet to write: a name and its rows, header rows included.
type Sheet struct {
	Name string
	Rows [][]any
}

// Write encodes sheets as an xlsx workbook. The default "Sheet1" is replaced
// by the first sheet.
func Write(w io.Writer, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return fmt.Errorf("workbook: name sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("workbook: add sheet %q: %w", s.Name, err)
		}
		for r, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return fmt.Errorf("workbook: sheet %q row %d: %w", s.Name, r+1, err)
			}
			if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
				return fmt.Errorf("workbook: sheet %q row %d: %w", s.Name, r+1, err)
			}
		}
	}
	if len(sheets) > 0 {
		f.SetActiveSheet(0)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("workbook: write: %w", err)
	}
	return nil
}

// Bytes is Write into a buffer.
func Bytes(sheets []Sheet) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, sheets); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
