package importer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/sotuphap-angiang/vbtrack/internal/config"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"github.com/sotuphap-angiang/vbtrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport_ScenarioA_MissingSheetWarns(t *testing.T) {
	ctx := context.Background()
	s := newSQLStore(t)
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows(
		[]string{"", "Doc A"},
		[]string{"", "Doc B"},
	))

	res := New(s, Options{}).Run(ctx, wb)

	assert.True(t, res.Success)
	assert.False(t, res.Error)
	assert.Equal(t, StateCompleted, res.State)
	assert.True(t, hasLine(res.Logs, "Missing sheet: QD CT.UBND"), "logs: %v", res.Logs)

	docs, err := s.ListDocuments(ctx, store.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for i, d := range docs {
		assert.Equal(t, models.DocTypeResolution, d.DocType)
		assert.Equal(t, models.StatusPending, d.Status)
		assert.Equal(t, i+1, d.STT)
		assert.Equal(t, DefaultYear, d.Year)
		assert.True(t, d.NeedsReview)
		assert.Empty(t, d.DocCategory)
	}
	assert.Equal(t, "Doc A", docs[0].Name)
	assert.Equal(t, "Doc B", docs[1].Name)
}

func TestImport_ScenarioB_DuplicateAborts(t *testing.T) {
	ctx := context.Background()
	s := newSQLStore(t)
	seeded, err := s.CreateAgency(ctx, "Sở Tư pháp")
	require.NoError(t, err)
	require.NoError(t, s.InsertDocuments(ctx, []models.Document{
		{DocType: models.DocTypeResolution, Status: models.StatusPending, STT: 1, Name: "kept", AgencyID: &seeded.ID},
	}))
	before, err := s.ListDocuments(ctx, store.DocumentFilter{})
	require.NoError(t, err)

	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows(
		[]string{"1", "Doc A", "Sở Y tế"},
		[]string{"1", "Doc B", "Sở Y tế"},
	))
	res := New(s, Options{}).Run(ctx, wb)

	assert.True(t, res.Error)
	assert.False(t, res.Success)
	assert.Equal(t, StateAborted, res.State)
	assert.True(t, hasLine(res.Logs, "[NQ can xu ly]: duplicate STT: 1"), "logs: %v", res.Logs)
	assert.True(t, hasLine(res.Logs, "⛔"))

	after, err := s.ListDocuments(ctx, store.DocumentFilter{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
	agencies, err := s.ListAgencies(ctx)
	require.NoError(t, err)
	require.Len(t, agencies, 1)
	assert.Equal(t, "Sở Tư pháp", agencies[0].Name)
}

func TestImport_AbortMakesNoWrites(t *testing.T) {
	fs := newFakeStore()
	wb := newFakeWorkbook().
		add("NQ can xu ly", sheetRows([]string{"", "ok"})).
		add("QD UBND can xu ly", sheetRows([]string{"3", "a", "Sở Y tế"}, []string{"3", "b"}))

	res := New(fs, Options{}).Run(context.Background(), wb)

	assert.Equal(t, StateAborted, res.State)
	assert.Empty(t, fs.calls, "validation failure must not reach the store")
}

func TestImport_SequenceDensity(t *testing.T) {
	fs := newFakeStore()
	wb := newFakeWorkbook().
		add("NQ can xu ly", sheetRows(
			[]string{"", "a"}, []string{"", ""}, []string{"", "b"}, []string{"", "None"}, []string{"", "c"},
		)).
		add("NQ HDND da xu ly", sheetRows(
			[]string{"7", "x"}, []string{"3", "y"}, []string{"12", "z"},
		))

	res := New(fs, Options{}).Run(context.Background(), wb)
	require.True(t, res.Success, "logs: %v", res.Logs)

	stts := map[string][]int{}
	for _, d := range fs.docs {
		stts[d.Status] = append(stts[d.Status], d.STT)
	}
	assert.Equal(t, []int{1, 2, 3}, stts[models.StatusPending])
	assert.Equal(t, []int{7, 3, 12}, stts[models.StatusCompleted])
	assert.Equal(t, 6, res.Documents)
	assert.Equal(t, 6, res.Inserted)
	assert.Equal(t, 2, res.Sheets)
}

func TestImport_RowSkip(t *testing.T) {
	fs := newFakeStore()
	wb := newFakeWorkbook().add("QD CT.UBND", sheetRows(
		[]string{"", "  "},
		[]string{"", "nOnE"},
		[]string{""},
		[]string{"", "Real"},
	))

	res := New(fs, Options{}).Run(context.Background(), wb)
	require.True(t, res.Success)
	require.Len(t, fs.docs, 1)
	assert.Equal(t, "Real", fs.docs[0].Name)
	assert.Equal(t, 1, fs.docs[0].STT)
	assert.Equal(t, models.DocTypeChairmanDecision, fs.docs[0].DocType)
	assert.True(t, hasLine(res.Logs, "✅ [QD CT.UBND]: 1 document groups"))
}

func TestImport_AgencyDedup(t *testing.T) {
	ctx := context.Background()
	s := newSQLStore(t)
	wb := newFakeWorkbook().
		add("NQ can xu ly", sheetRows(
			[]string{"", "a", "Sở Xây dựng"},
			[]string{"", "b", " Sở Xây dựng "},
			[]string{"", "c", "Sở Công Thương"},
		)).
		add("QD UBND da xu ly", sheetRows(
			[]string{"", "d", "Sở Xây dựng"},
		))

	res := New(s, Options{}).Run(ctx, wb)
	require.True(t, res.Success, "logs: %v", res.Logs)
	assert.Equal(t, 2, res.Agencies)
	assert.True(t, hasLine(res.Logs, "🎉 Done! 4 groups, 2 agencies."), "logs: %v", res.Logs)

	agencies, err := s.ListAgencies(ctx)
	require.NoError(t, err)
	require.Len(t, agencies, 2)

	docs, err := s.ListDocuments(ctx, store.DocumentFilter{})
	require.NoError(t, err)
	ids := map[uint]int{}
	for _, d := range docs {
		require.NotNil(t, d.AgencyID)
		ids[*d.AgencyID]++
	}
	var xd uint
	for _, a := range agencies {
		if a.Name == "Sở Xây dựng" {
			xd = a.ID
		}
	}
	assert.Equal(t, 3, ids[xd])
}

func TestImport_ReplacesEverything(t *testing.T) {
	ctx := context.Background()
	s := newSQLStore(t)
	old, err := s.CreateAgency(ctx, "Thanh tra tỉnh")
	require.NoError(t, err)
	require.NoError(t, s.InsertDocuments(ctx, []models.Document{
		{DocType: models.DocTypeChairmanDecision, Status: models.StatusPending, STT: 1, Name: "stale", AgencyID: &old.ID},
	}))

	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows([]string{"", "fresh"}))
	res := New(s, Options{}).Run(ctx, wb)
	require.True(t, res.Success)

	docs, err := s.ListDocuments(ctx, store.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "fresh", docs[0].Name)
	agencies, err := s.ListAgencies(ctx)
	require.NoError(t, err)
	assert.Empty(t, agencies, "agencies are wiped even when the workbook names none")
}

func TestImport_CountsAndFields(t *testing.T) {
	fs := newFakeStore()
	wb := newFakeWorkbook().add("NQ HDND da xu ly", sheetRows(
		[]string{"1", "Doc A", "Sở Y tế", "2", "-1", "3.6", "abc", "Nhung", "none"},
		[]string{"2", "Doc B", "", "", "", "", "", "", "đã trình"},
	))

	res := New(fs, Options{Year: 2027}).Run(context.Background(), wb)
	require.True(t, res.Success)
	require.Len(t, fs.docs, 2)

	a := fs.docs[0]
	assert.Equal(t, models.LegacyCounts{Replaced: 2, Repealed: 0, NewlyIssued: 4, Undetermined: 0}, a.Legacy)
	assert.Equal(t, models.FormNewlyIssued, a.ProcessingForm)
	assert.Equal(t, "Nhung", a.HandlerName)
	assert.Equal(t, "", a.Workflow.Notes)
	assert.Equal(t, 2027, a.Year)
	assert.NotNil(t, a.AgencyID)
	assert.Equal(t, models.StatusCompleted, a.Status)

	b := fs.docs[1]
	assert.Equal(t, models.LegacyCounts{}, b.Legacy)
	assert.Equal(t, "", b.ProcessingForm)
	assert.Nil(t, b.AgencyID)
	assert.Equal(t, "đã trình", b.Workflow.Notes)
}

func TestImport_CountBlockFollowsProcessingFormHeader(t *testing.T) {
	fs := newFakeStore()
	header := []string{"STT", "Tên gọi", "Cơ quan soạn thảo", "Người xử lý", "Hình thức xử lý", "", "", "", "Ghi chú"}
	wb := newFakeWorkbook().add("NQ can xu ly", [][]string{
		header,
		{},
		{"1", "Doc", "Sở Nội vụ", "Thảo", "0", "0", "0", "5", "n"},
	})

	res := New(fs, Options{}).Run(context.Background(), wb)
	require.True(t, res.Success)
	require.Len(t, fs.docs, 1)
	assert.Equal(t, 5, fs.docs[0].Legacy.Undetermined)
	assert.Equal(t, models.FormUndetermined, fs.docs[0].ProcessingForm)
	assert.Equal(t, "Thảo", fs.docs[0].HandlerName)
}

func TestImport_WorkflowColumns(t *testing.T) {
	fs := newFakeStore()
	header := []string{
		"STT", "Tên gọi văn bản", "Cơ quan soạn thảo", "Hình thức xử lý", "", "", "",
		"VB đăng ký xây dựng", "Ngày nhận/Số vb phúc đáp", "Văn bản đăng ký của UBND", "Ý kiến chấp thuận",
		"Thời gian dự kiến", "Ngày lấy ý kiến góp ý", "Ngày gửi Sở Tư pháp", "Ngày trình UBND tỉnh",
		"UBND tỉnh trình HĐND", "Số, ngày ban hành", "Thời gian xử lý", "Ghi chú",
	}
	row := []string{
		"1", "Doc", "Sở Y tế", "", "", "", "",
		"reg", "reply", "ubnd", "approval", "Quý III", "feedback", "appraisal", "sub-ubnd", "sub-hdnd", "12/2026/NQ-HĐND", "30 ngày", "note",
	}
	wb := newFakeWorkbook().add("NQ can xu ly", [][]string{header, {}, row})

	res := New(fs, Options{}).Run(context.Background(), wb)
	require.True(t, res.Success)
	require.Len(t, fs.docs, 1)
	assert.Equal(t, models.Workflow{
		RegDocAgency:   "reg",
		RegDocReply:    "reply",
		RegDocUBND:     "ubnd",
		ApprovalHDND:   "approval",
		ExpectedDate:   "Quý III",
		FeedbackSent:   "feedback",
		AppraisalSent:  "appraisal",
		SubmittedUBND:  "sub-ubnd",
		SubmittedHDND:  "sub-hdnd",
		IssuanceNumber: "12/2026/NQ-HĐND",
		ProcessingTime: "30 ngày",
		Notes:          "note",
	}, fs.docs[0].Workflow)
}

func TestImport_Batching(t *testing.T) {
	fs := newFakeStore()
	var data [][]string
	for i := 0; i < 5; i++ {
		data = append(data, []string{"", "doc"})
	}
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows(data...))

	res := New(fs, Options{BatchSize: 2}).Run(context.Background(), wb)
	require.True(t, res.Success)
	assert.Equal(t, []string{"delete:documents", "delete:agencies", "insert:2", "insert:2", "insert:1"}, fs.calls)
}

func TestImport_BatchFailureIsNotFatal(t *testing.T) {
	fs := newFakeStore()
	fs.failInserts[1] = true
	var data [][]string
	for i := 0; i < 3; i++ {
		data = append(data, []string{"", "doc"})
	}
	wb := newFakeWorkbook().
		add("NQ can xu ly", sheetRows(data...)).
		add("QD CT.UBND", sheetRows([]string{"", "other"}))

	res := New(fs, Options{BatchSize: 2}).Run(context.Background(), wb)

	assert.True(t, res.Success)
	assert.Equal(t, StateCompleted, res.State)
	assert.True(t, hasLine(res.Logs, "⚠️ Insert failed (NQ can xu ly): insert rejected"), "logs: %v", res.Logs)
	assert.Equal(t, 4, res.Documents)
	assert.Equal(t, 2, res.Inserted)
	assert.Len(t, fs.docs, 2)
}

func TestImport_FinalBatchFailureLabel(t *testing.T) {
	fs := newFakeStore()
	fs.failInserts[1] = true
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows([]string{"", "only"}))

	res := New(fs, Options{}).Run(context.Background(), wb)
	assert.True(t, hasLine(res.Logs, "⚠️ Final insert failed (NQ can xu ly)"), "logs: %v", res.Logs)
}

func TestImport_EmptySheetWarns(t *testing.T) {
	fs := newFakeStore()
	wb := newFakeWorkbook().add("NQ can xu ly", [][]string{testHeader})

	res := New(fs, Options{}).Run(context.Background(), wb)
	assert.True(t, res.Success)
	assert.True(t, hasLine(res.Logs, "⚠️ Sheet NQ can xu ly is empty"))
	assert.Equal(t, 0, res.Sheets)
}

func TestImport_ReadFailureAfterDestroyIsFatal(t *testing.T) {
	fs := newFakeStore()
	wb := newFakeWorkbook().
		add("NQ can xu ly", sheetRows([]string{"", "a"})).
		add("QD UBND can xu ly", sheetRows([]string{"", "b"}))
	calls := 0
	reader := &flakyWorkbook{fakeWorkbook: wb, failSheet: "QD UBND can xu ly", after: 1, calls: &calls}

	res := New(fs, Options{}).Run(context.Background(), reader)

	assert.True(t, res.Error)
	assert.Equal(t, StateFailed, res.State)
	assert.Contains(t, res.Logs[len(res.Logs)-1], "❌ Error: importer: read QD UBND can xu ly")
	assert.Len(t, fs.docs, 1, "rows inserted before the failure stay")
}

// flakyWorkbook fails reads of failSheet after the first `after` reads.
type flakyWorkbook struct {
	*fakeWorkbook
	failSheet string
	after     int
	calls     *int
}

func (w *flakyWorkbook) Rows(sheet string) ([][]string, error) {
	if sheet == w.failSheet {
		*w.calls++
		if *w.calls > w.after {
			return nil, errors.New("zip: checksum error")
		}
	}
	return w.fakeWorkbook.Rows(sheet)
}

func TestImport_CancelledBeforeDestroy(t *testing.T) {
	fs := newFakeStore()
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows([]string{"", "a"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(fs, Options{}).Run(ctx, wb)
	assert.Equal(t, StateFailed, res.State)
	assert.True(t, res.Error)
	assert.False(t, fs.mutated())
}

func TestImport_CustomSheetMap(t *testing.T) {
	fs := newFakeStore()
	sheets := []config.SheetConfig{{Name: "Nghi quyet", DocType: models.DocTypeResolution, Status: models.StatusCompleted}}
	wb := newFakeWorkbook().
		add("Nghi quyet", sheetRows([]string{"", "a"})).
		add("NQ can xu ly", sheetRows([]string{"", "ignored"}))

	res := New(fs, Options{Sheets: sheets}).Run(context.Background(), wb)
	require.True(t, res.Success)
	require.Len(t, fs.docs, 1)
	assert.Equal(t, models.StatusCompleted, fs.docs[0].Status)
	assert.False(t, hasLine(res.Logs, "Missing sheet"))
}

func TestImport_LogOrder(t *testing.T) {
	fs := newFakeStore()
	wb := newFakeWorkbook().add("NQ can xu ly", sheetRows([]string{"", "a"}))
	res := New(fs, Options{Sheets: config.DefaultSheets()[:1]}).Run(context.Background(), wb)

	require.Len(t, res.Logs, 7)
	assert.Equal(t, "📂 Sheets: NQ can xu ly", res.Logs[0])
	assert.Contains(t, res.Logs[1], "🔍")
	assert.Contains(t, res.Logs[2], "✅ Data is valid")
	assert.Contains(t, res.Logs[3], "🗑️")
	assert.Equal(t, "✅ [NQ can xu ly]: 1 document groups", res.Logs[4])
	assert.Equal(t, "", res.Logs[5])
	assert.Equal(t, "🎉 Done! 1 groups, 0 agencies.", res.Logs[6])
}

func TestResult_JSON(t *testing.T) {
	data, err := json.Marshal(Result{Logs: []string{"x"}, Success: true, State: StateCompleted, Documents: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"logs":["x"],"success":true}`, string(data))

	data, err = json.Marshal(Result{Logs: []string{}, Error: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"logs":[],"error":true}`, string(data))
}

func TestProcessingForm(t *testing.T) {
	tests := []struct {
		name   string
		counts models.LegacyCounts
		want   string
	}{
		{"all zero", models.LegacyCounts{}, ""},
		{"single replaced", models.LegacyCounts{Replaced: 1}, models.FormReplaced},
		{"single undetermined", models.LegacyCounts{Undetermined: 9}, models.FormUndetermined},
		{"max wins", models.LegacyCounts{Replaced: 1, Repealed: 4, NewlyIssued: 2}, models.FormRepealed},
		{"tie goes to earlier column", models.LegacyCounts{Repealed: 3, NewlyIssued: 3}, models.FormRepealed},
		{"tie across all", models.LegacyCounts{Replaced: 2, Repealed: 2, NewlyIssued: 2, Undetermined: 2}, models.FormReplaced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProcessingForm(tt.counts))
		})
	}
}

func TestRunLog_MirrorsLinesWithComponent(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	rl := newRunLog(logger)
	entry := rl.entry

	rl.infof("📄 Sheet %s", "NQ can xu ly")
	rl.infof("")
	rl.warnf("⚠️ Skipped")

	assert.Same(t, entry, rl.entry)
	assert.Equal(t, []string{"📄 Sheet NQ can xu ly", "", "⚠️ Skipped"}, rl.lines)
	require.Len(t, hook.AllEntries(), 2)
	for _, e := range hook.AllEntries() {
		assert.Equal(t, "importer", e.Data["component"])
	}
	assert.Equal(t, "⚠️ Skipped", hook.LastEntry().Message)
}
