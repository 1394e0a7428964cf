package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sotuphap-angiang/vbtrack/internal/db"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"github.com/sotuphap-angiang/vbtrack/internal/store"
	"github.com/stretchr/testify/require"
)

// Standard two-row header: counts sit under "Hình thức xử lý" at columns 3-6.
var (
	testHeader    = []string{"STT", "Tên gọi văn bản", "Cơ quan soạn thảo", "Hình thức xử lý", "", "", "", "Người xử lý", "Ghi chú"}
	testSubHeader = []string{"", "", "", "Thay thế", "Bãi bỏ", "Ban hành mới", "Chưa xác định", "", ""}
)

// sheetRows prepends the two header rows to data.
func sheetRows(data ...[]string) [][]string {
	rows := [][]string{testHeader, testSubHeader}
	return append(rows, data...)
}

type fakeWorkbook struct {
	order   []string
	sheets  map[string][][]string
	readErr map[string]error
}

func newFakeWorkbook() *fakeWorkbook {
	return &fakeWorkbook{sheets: map[string][][]string{}, readErr: map[string]error{}}
}

func (w *fakeWorkbook) add(name string, rows [][]string) *fakeWorkbook {
	w.order = append(w.order, name)
	w.sheets[name] = rows
	return w
}

func (w *fakeWorkbook) SheetNames() []string { return w.order }

func (w *fakeWorkbook) Rows(sheet string) ([][]string, error) {
	if err := w.readErr[sheet]; err != nil {
		return nil, err
	}
	rows, ok := w.sheets[sheet]
	if !ok {
		return nil, fmt.Errorf("sheet %s does not exist", sheet)
	}
	return rows, nil
}

// fakeStore is an in-memory Store that records every call.
type fakeStore struct {
	agencies    map[string]uint
	nextID      uint
	docs        []models.Document
	calls       []string
	failCreate  map[string]bool
	failFind    bool
	failInserts map[int]bool // 1-based InsertDocuments call numbers
	inserts     int
	findCalls   int
	createCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		agencies:    map[string]uint{},
		failCreate:  map[string]bool{},
		failInserts: map[int]bool{},
	}
}

func (s *fakeStore) FindAgencyByName(_ context.Context, name string) (*models.Agency, error) {
	s.findCalls++
	s.calls = append(s.calls, "find:"+name)
	if s.failFind {
		return nil, errors.New("lookup unavailable")
	}
	if id, ok := s.agencies[name]; ok {
		return &models.Agency{ID: id, Name: name}, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateAgency(_ context.Context, name string) (*models.Agency, error) {
	s.createCalls++
	s.calls = append(s.calls, "create:"+name)
	if s.failCreate[name] {
		return nil, errors.New("constraint violation")
	}
	s.nextID++
	s.agencies[name] = s.nextID
	return &models.Agency{ID: s.nextID, Name: name}, nil
}

func (s *fakeStore) DeleteAllDocuments(context.Context) (int64, error) {
	s.calls = append(s.calls, "delete:documents")
	n := int64(len(s.docs))
	s.docs = nil
	return n, nil
}

func (s *fakeStore) DeleteAllAgencies(context.Context) (int64, error) {
	s.calls = append(s.calls, "delete:agencies")
	n := int64(len(s.agencies))
	s.agencies = map[string]uint{}
	return n, nil
}

func (s *fakeStore) InsertDocuments(_ context.Context, docs []models.Document) error {
	s.inserts++
	s.calls = append(s.calls, fmt.Sprintf("insert:%d", len(docs)))
	if s.failInserts[s.inserts] {
		return errors.New("insert rejected")
	}
	s.docs = append(s.docs, docs...)
	return nil
}

func (s *fakeStore) mutated() bool {
	for _, c := range s.calls {
		if !strings.HasPrefix(c, "find:") {
			return true
		}
	}
	return false
}

// newSQLStore returns the gorm store over a fresh in-memory database.
func newSQLStore(t *testing.T) *store.Store {
	t.Helper()
	gormDB, err := db.OpenMemory()
	require.NoError(t, err)
	return store.New(gormDB)
}

func hasLine(logs []string, substr string) bool {
	for _, l := range logs {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
