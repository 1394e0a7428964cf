package importer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NotFound is the column index of a field no header matched.
const NotFound = -1

// DefaultCountBase is where the outcome-count block starts when the sheet has
// no processing-form header.
const DefaultCountBase = 3

// Field names a canonical column of the tracking sheets.
type Field string

const (
	FieldSTT            Field = "stt"
	FieldName           Field = "name"
	FieldAgency         Field = "agency"
	FieldHandler        Field = "handler"
	FieldProcessingForm Field = "htxl"
	FieldRegAgency      Field = "reg_agency"
	FieldRegReply       Field = "reg_reply"
	FieldRegUBND        Field = "reg_ubnd"
	FieldApprovalHDND   Field = "approval_hdnd"
	FieldExpected       Field = "expected"
	FieldFeedbackSent   Field = "feedback_sent"
	FieldAppraisal      Field = "appraisal"
	FieldSubmittedUBND  Field = "sub_ubnd"
	FieldSubmittedHDND  Field = "sub_hdnd"
	FieldIssuance       Field = "issuance"
	FieldProcessingTime Field = "proc_time"
	FieldNotes          Field = "notes"
)

// FieldSpec is a field and the header keywords that identify it. A header
// matches when it contains any keyword, ignoring case.
type FieldSpec struct {
	Field    Field
	Keywords []string
}

// Fields is the header vocabulary of the tracking workbook in resolution
// order.
var Fields = []FieldSpec{
	{FieldSTT, []string{"STT"}},
	{FieldName, []string{"Tên gọi văn bản", "Tên gọi", "TÊN GỌI"}},
	{FieldAgency, []string{"Cơ quan soạn thảo", "Cơ quan soạn"}},
	{FieldHandler, []string{"Người xử lý", "Chuyên viên"}},
	{FieldProcessingForm, []string{"Hình thức xử lý"}},
	{FieldRegAgency, []string{"VB đăng ký xây dựng", "đăng ký xây dựng NQ của cơ quan"}},
	{FieldRegReply, []string{"Ngày nhận/Số vb phúc đáp", "phúc đáp"}},
	{FieldRegUBND, []string{"đăng ký xây dựng NQ của UBND", "đăng ký của UBND"}},
	{FieldApprovalHDND, []string{"Ý kiến chấp thuận", "chấp thuận"}},
	{FieldExpected, []string{"dự kiến trình", "Ngày dự kiến", "Thời gian dự kiến"}},
	{FieldFeedbackSent, []string{"lấy ý kiến góp ý", "góp ý"}},
	{FieldAppraisal, []string{"Sở Tư pháp thẩm định", "gửi Sở Tư pháp", "thẩm định"}},
	{FieldSubmittedUBND, []string{"trình UBND tỉnh", "Cơ quan soạn thảo trình UBND"}},
	{FieldSubmittedHDND, []string{"UBND tỉnh trình HĐND", "trình HĐND"}},
	{FieldIssuance, []string{"Số, trích yếu", "Số, ngày", "ban hành VBQPPL", "Số văn bản"}},
	{FieldProcessingTime, []string{"Thời gian xử lý"}},
	{FieldNotes, []string{"Ghi chú"}},
}

// ColumnMap holds the resolved column index of each field.
type ColumnMap map[Field]int

// ResolveColumns maps each field to the first header cell, scanning left to
// right, that contains one of its keywords. Fields resolve independently, so
// two fields may land on the same column.
func ResolveColumns(header []string, fields []FieldSpec) ColumnMap {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = fold(NormalizeText(h))
	}
	cols := make(ColumnMap, len(fields))
	for _, spec := range fields {
		cols[spec.Field] = NotFound
		keywords := make([]string, len(spec.Keywords))
		for i, kw := range spec.Keywords {
			keywords[i] = fold(kw)
		}
	scan:
		for i, h := range folded {
			if h == "" {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(h, kw) {
					cols[spec.Field] = i
					break scan
				}
			}
		}
	}
	return cols
}

// Index returns the column of f, or NotFound.
func (m ColumnMap) Index(f Field) int {
	if i, ok := m[f]; ok {
		return i
	}
	return NotFound
}

// CountBase is the first of the four positional outcome-count columns. The
// block is anchored at the processing-form header, whose merged cell spans
// the four sub-headers of row 2.
func (m ColumnMap) CountBase() int {
	if i := m.Index(FieldProcessingForm); i != NotFound {
		return i
	}
	return DefaultCountBase
}

// fold prepares text for keyword matching: NFC so precomposed and combining
// Vietnamese diacritics compare equal, then lower case.
func fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
