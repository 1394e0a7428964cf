package importer

import (
	"fmt"
	"math"
	"strings"

	"github.com/sotuphap-angiang/vbtrack/internal/config"
)

// HeaderRows is the number of header rows above the data of every sheet.
const HeaderRows = 2

// minSheetRows is the smallest row count that can hold a data row.
const minSheetRows = HeaderRows + 1

// Violation lists the duplicate sequence numbers found in one sheet, in the
// order they were first detected.
type Violation struct {
	Sheet      string
	Duplicates []int
}

func (v Violation) String() string {
	nums := make([]string, len(v.Duplicates))
	for i, n := range v.Duplicates {
		nums[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("[%s]: duplicate STT: %s", v.Sheet, strings.Join(nums, ", "))
}

// Validate checks every configured sheet present in wb for duplicate
// sequence numbers. It reads only and never touches the store; any returned
// violation means the import must not proceed.
func Validate(wb Workbook, sheets []config.SheetConfig) ([]Violation, error) {
	present := sheetSet(wb)
	var violations []Violation
	for _, sc := range sheets {
		if !present[sc.Name] {
			continue
		}
		rows, err := readSheet(wb, sc.Name)
		if err != nil {
			return nil, fmt.Errorf("importer: validate %s: %w", sc.Name, err)
		}
		if len(rows) < minSheetRows {
			continue
		}
		cols := ResolveColumns(rows[0], Fields)

		seen := make(map[int]bool)
		flagged := make(map[int]bool)
		var dups []int
		walkRows(rows, cols, func(_ []string, _ string, stt int) {
			if !seen[stt] {
				seen[stt] = true
				return
			}
			if !flagged[stt] {
				flagged[stt] = true
				dups = append(dups, stt)
			}
		})
		if len(dups) > 0 {
			violations = append(violations, Violation{Sheet: sc.Name, Duplicates: dups})
		}
	}
	return violations, nil
}

// walkRows calls fn for every data row with a name, passing the sequence
// number it is filed under: the row's own STT cell when that is a positive
// number, otherwise a running count of named rows. It returns the number of
// named rows. Validation and ingestion both number rows through here.
func walkRows(rows [][]string, cols ColumnMap, fn func(row []string, name string, stt int)) int {
	nameCol := cols.Index(FieldName)
	sttCol := cols.Index(FieldSTT)
	counter := 0
	if len(rows) <= HeaderRows {
		return 0
	}
	for _, row := range rows[HeaderRows:] {
		name := text(row, nameCol)
		if name == "" {
			continue
		}
		counter++
		stt := counter
		if n, ok := parseNumber(cell(row, sttCol)); ok && n > 0 {
			stt = int(math.Round(n))
		}
		fn(row, name, stt)
	}
	return counter
}

// readSheet returns the rows of sheet as displayed text, except for the STT
// and outcome-count columns, which carry the stored value when wb can
// provide it. A count formatted "#,##0" then reads 1200, not "1,200".
func readSheet(wb Workbook, sheet string) ([][]string, error) {
	rows, err := wb.Rows(sheet)
	if err != nil {
		return nil, err
	}
	raw, ok := wb.(RawWorkbook)
	if !ok || len(rows) == 0 {
		return rows, nil
	}
	values, err := raw.RawRows(sheet)
	if err != nil {
		return nil, err
	}

	cols := ResolveColumns(rows[0], Fields)
	numeric := []int{cols.Index(FieldSTT)}
	for i := 0; i < 4; i++ {
		numeric = append(numeric, cols.CountBase()+i)
	}
	for r := HeaderRows; r < len(rows) && r < len(values); r++ {
		for _, c := range numeric {
			if c < 0 || c >= len(values[r]) {
				continue
			}
			for len(rows[r]) <= c {
				rows[r] = append(rows[r], "")
			}
			rows[r][c] = values[r][c]
		}
	}
	return rows, nil
}

func sheetSet(wb Workbook) map[string]bool {
	set := make(map[string]bool)
	for _, name := range wb.SheetNames() {
		set[name] = true
	}
	return set
}
