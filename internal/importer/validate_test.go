package importer

import (
	"errors"
	"testing"

	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_NoDuplicates(t *testing.T) {
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows(
		[]string{"", "Doc A"},
		[]string{"", "Doc B"},
		[]string{"", "Doc C"},
	))
	violations, err := Validate(wb, config.DefaultSheets())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidate_ExplicitDuplicate(t *testing.T) {
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows(
		[]string{"1", "Doc A"},
		[]string{"1", "Doc B"},
	))
	violations, err := Validate(wb, config.DefaultSheets())
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "NQ can xu ly", violations[0].Sheet)
	assert.Equal(t, []int{1}, violations[0].Duplicates)
	assert.Equal(t, "[NQ can xu ly]: duplicate STT: 1", violations[0].String())
}

func TestValidate_CounterCollidesWithExplicit(t *testing.T) {
	// Row 1 has no STT and takes counter 1; row 2 claims 1 explicitly.
	wb := newFakeWorkbook().add("QD CT.UBND", sheetRows(
		[]string{"", "Doc A"},
		[]string{"1", "Doc B"},
	))
	violations, err := Validate(wb, config.DefaultSheets())
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, []int{1}, violations[0].Duplicates)
}

func TestValidate_DuplicatesInDetectionOrderAcrossSheets(t *testing.T) {
	wb := newFakeWorkbook().
		add("QD UBND da xu ly", sheetRows(
			[]string{"5", "a"}, []string{"2", "b"}, []string{"5", "c"}, []string{"2", "d"}, []string{"5", "e"},
		)).
		add("NQ can xu ly", sheetRows(
			[]string{"2.6", "a"}, []string{"3", "b"},
		))
	violations, err := Validate(wb, config.DefaultSheets())
	require.NoError(t, err)
	require.Len(t, violations, 2)
	// Sheets are reported in configured order, not workbook order.
	assert.Equal(t, "NQ can xu ly", violations[0].Sheet)
	assert.Equal(t, []int{3}, violations[0].Duplicates)
	assert.Equal(t, "QD UBND da xu ly", violations[1].Sheet)
	assert.Equal(t, []int{5, 2}, violations[1].Duplicates)
}

func TestValidate_SkipsBlankNames(t *testing.T) {
	// Blank-name rows consume no number, so the counter never reaches 2
	// twice.
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows(
		[]string{"", "Doc A"},
		[]string{"", "  "},
		[]string{"", "none"},
		[]string{"2", "Doc B"},
	))
	violations, err := Validate(wb, config.DefaultSheets())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidate_NonPositiveSTTFallsBackToCounter(t *testing.T) {
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows(
		[]string{"0", "Doc A"},
		[]string{"-3", "Doc B"},
		[]string{"x", "Doc C"},
	))
	violations, err := Validate(wb, config.DefaultSheets())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidate_IgnoresShortAndUnmappedSheets(t *testing.T) {
	wb := newFakeWorkbook().
		add("NQ can xu ly", [][]string{testHeader, testSubHeader}).
		add("Tong hop", sheetRows([]string{"1", "x"}, []string{"1", "y"}))
	violations, err := Validate(wb, config.DefaultSheets())
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidate_Idempotent(t *testing.T) {
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows(
		[]string{"4", "a"}, []string{"4", "b"}, []string{"", "c"}, []string{"7", "d"}, []string{"7", "e"},
	))
	first, err := Validate(wb, config.DefaultSheets())
	require.NoError(t, err)
	second, err := Validate(wb, config.DefaultSheets())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Equal(t, []int{4, 7}, first[0].Duplicates)
}

func TestValidate_ReadError(t *testing.T) {
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows([]string{"1", "a"}))
	wb.readErr["NQ can xu ly"] = errors.New("corrupt sheet")
	_, err := Validate(wb, config.DefaultSheets())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "importer: validate NQ can xu ly")
}

func TestWalkRows_Numbering(t *testing.T) {
	rows := sheetRows(
		[]string{"", "a"},
		[]string{},
		[]string{"10", "b"},
		[]string{"", "c"},
	)
	var got []int
	var names []string
	n := walkRows(rows, ResolveColumns(rows[0], Fields), func(_ []string, name string, stt int) {
		names = append(names, name)
		got = append(got, stt)
	})
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"a", "b", "c"}, names)
	assert.Equal(t, []int{1, 10, 3}, got)
}
