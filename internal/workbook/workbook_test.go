package workbook

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteThenRead(t *testing.T) {
	data, err := Bytes([]Sheet{
		{Name: "NQ can xu ly", Rows: [][]any{
			{"STT", "Tên gọi văn bản", "Cơ quan soạn thảo"},
			{"", "", ""},
			{1, "Doc A", "Sở Y tế"},
			{2, "Doc B"},
		}},
		{Name: "QD CT.UBND", Rows: [][]any{{"STT"}}},
	})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	wb, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer wb.Close()

	names := wb.SheetNames()
	if len(names) != 2 || names[0] != "NQ can xu ly" || names[1] != "QD CT.UBND" {
		t.Fatalf("SheetNames() = %v", names)
	}

	rows, err := wb.Rows("NQ can xu ly")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	if rows[2][0] != "1" || rows[2][1] != "Doc A" || rows[2][2] != "Sở Y tế" {
		t.Errorf("row 3 = %v", rows[2])
	}
	if rows[3][1] != "Doc B" {
		t.Errorf("row 4 = %v", rows[3])
	}
}

func TestRawRows_IgnoresNumberFormat(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", 1200); err != nil {
		t.Fatalf("SetCellValue: %v", err)
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	if err := f.SetCellStyle("Sheet1", "A1", "A1", style); err != nil {
		t.Fatalf("SetCellStyle: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	f.Close()

	wb, err := OpenBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer wb.Close()

	display, err := wb.Rows("Sheet1")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if display[0][0] != "1,200" {
		t.Errorf("Rows A1 = %q, want %q", display[0][0], "1,200")
	}
	raw, err := wb.RawRows("Sheet1")
	if err != nil {
		t.Fatalf("RawRows: %v", err)
	}
	if raw[0][0] != "1200" {
		t.Errorf("RawRows A1 = %q, want %q", raw[0][0], "1200")
	}
}

func TestRows_UnknownSheet(t *testing.T) {
	data, err := Bytes([]Sheet{{Name: "Only", Rows: [][]any{{"x"}}}})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	wb, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer wb.Close()

	if _, err := wb.Rows("Missing"); err == nil {
		t.Fatal("expected error for unknown sheet")
	}
}

func TestOpenBytes_Garbage(t *testing.T) {
	_, err := OpenBytes([]byte("not a spreadsheet"))
	if err == nil {
		t.Fatal("expected error for non-xlsx input")
	}
	if !strings.Contains(err.Error(), "workbook: read") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "workbook: read")
	}
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracking.xlsx")
	data, err := Bytes([]Sheet{{Name: "QD UBND da xu ly", Rows: [][]any{{"STT", "Tên gọi"}}}})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	wb, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer wb.Close()
	if got := wb.SheetNames(); len(got) != 1 || got[0] != "QD UBND da xu ly" {
		t.Errorf("SheetNames() = %v", got)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open("/nonexistent/tracking.xlsx")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "workbook: open") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "workbook: open")
	}
}
