package importer

import (
	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"github.com/sotuphap-angiang/vbtrack/internal/workbook"
)

// Export headers. Each resolves to its own field under ResolveColumns, so an
// exported workbook imports back unchanged.
var (
	exportHeader = []any{
		"STT", "Tên gọi văn bản", "Cơ quan soạn thảo",
		"Hình thức xử lý", "", "", "",
		"Người xử lý",
		"VB đăng ký xây dựng", "Ngày nhận/Số vb phúc đáp", "VB đăng ký của UBND", "Ý kiến chấp thuận",
		"Ngày dự kiến trình", "Ngày gửi lấy ý kiến góp ý", "Ngày gửi Sở Tư pháp thẩm định",
		"Ngày trình UBND tỉnh", "UBND tỉnh trình HĐND", "Số, ngày ban hành",
		"Thời gian xử lý", "Ghi chú",
	}
	exportSubHeader = []any{"", "", "", "Thay thế", "Bãi bỏ", "Ban hành mới", "Chưa xác định"}
)

// ExportSheets lays docs out as tracking-workbook sheets, one per configured
// sheet in order, each with the two header rows. Documents keep the order
// they are given in; callers pass them sorted by STT.
func ExportSheets(docs []models.Document, sheets []config.SheetConfig) []workbook.Sheet {
	index := make(map[[2]string]int, len(sheets))
	out := make([]workbook.Sheet, len(sheets))
	for i, sc := range sheets {
		index[[2]string{sc.DocType, sc.Status}] = i
		out[i] = workbook.Sheet{Name: sc.Name, Rows: [][]any{exportHeader, exportSubHeader}}
	}
	for _, d := range docs {
		i, ok := index[[2]string{d.DocType, d.Status}]
		if !ok {
			continue
		}
		out[i].Rows = append(out[i].Rows, exportRow(d))
	}
	return out
}

func exportRow(d models.Document) []any {
	w := d.Workflow
	return []any{
		d.STT, d.Name, d.AgencyName(),
		d.Legacy.Replaced, d.Legacy.Repealed, d.Legacy.NewlyIssued, d.Legacy.Undetermined,
		d.HandlerName,
		w.RegDocAgency, w.RegDocReply, w.RegDocUBND, w.ApprovalHDND,
		w.ExpectedDate, w.FeedbackSent, w.AppraisalSent,
		w.SubmittedUBND, w.SubmittedHDND, w.IssuanceNumber,
		w.ProcessingTime, w.Notes,
	}
}
