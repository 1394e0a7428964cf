package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document types, one per family of legal instrument.
const (
	DocTypeResolution         = "NQ"
	DocTypeProvincialDecision = "QD_UBND"
	DocTypeChairmanDecision   = "QD_CT_UBND"
)

// Processing statuses. Together with the doc type they partition documents
// into the sheets of the tracking workbook.
const (
	StatusPending   = "can_xu_ly"
	StatusCompleted = "da_xu_ly"
)

// Document categories select which of the two current-schema count groups
// is meaningful for a document.
const (
	CategoryContinuing    = "van_ban_tiep_tuc"
	CategoryNewInstrument = "van_ban_moi"
)

// Processing form labels derived from the legacy counters, in sheet column order.
const (
	FormReplaced     = "thay_the"
	FormRepealed     = "bai_bo"
	FormNewlyIssued  = "ban_hanh_moi"
	FormUndetermined = "chua_xac_dinh"
)

// ValidDocTypes lists every accepted doc type.
var ValidDocTypes = []string{DocTypeResolution, DocTypeProvincialDecision, DocTypeChairmanDecision}

// ValidStatuses lists every accepted status.
var ValidStatuses = []string{StatusPending, StatusCompleted}

// LegacyCounts is the flat outcome schema the spreadsheets still carry.
type LegacyCounts struct {
	Replaced     int `gorm:"column:count_thay_the;default:0" json:"thay_the" validate:"gte=0"`
	Repealed     int `gorm:"column:count_bai_bo;default:0" json:"bai_bo" validate:"gte=0"`
	NewlyIssued  int `gorm:"column:count_ban_hanh_moi;default:0" json:"ban_hanh_moi" validate:"gte=0"`
	Undetermined int `gorm:"column:count_chua_xac_dinh;default:0" json:"chua_xac_dinh" validate:"gte=0"`
}

// Sum returns the total over all legacy counters.
func (c LegacyCounts) Sum() int {
	return c.Replaced + c.Repealed + c.NewlyIssued + c.Undetermined
}

// ContinuingCounts holds outcomes for instruments that remain in force.
type ContinuingCounts struct {
	Replaced     int `gorm:"column:count_tt_thay_the;default:0" json:"thay_the" validate:"gte=0"`
	Repealed     int `gorm:"column:count_tt_bai_bo;default:0" json:"bai_bo" validate:"gte=0"`
	NotProcessed int `gorm:"column:count_tt_khong_xu_ly;default:0" json:"khong_xu_ly" validate:"gte=0"`
	Expired      int `gorm:"column:count_tt_het_hieu_luc;default:0" json:"het_hieu_luc" validate:"gte=0"`
}

// Sum returns the total over the continuing-application counters.
func (c ContinuingCounts) Sum() int {
	return c.Replaced + c.Repealed + c.NotProcessed + c.Expired
}

// NewInstrumentCounts holds outcomes for newly drafted instruments.
type NewInstrumentCounts struct {
	NewlyIssued int `gorm:"column:count_vm_ban_hanh_moi;default:0" json:"ban_hanh_moi" validate:"gte=0"`
	Amended     int `gorm:"column:count_vm_sua_doi_bo_sung;default:0" json:"sua_doi_bo_sung" validate:"gte=0"`
	Replaced    int `gorm:"column:count_vm_thay_the;default:0" json:"thay_the" validate:"gte=0"`
	Repealed    int `gorm:"column:count_vm_bai_bo;default:0" json:"bai_bo" validate:"gte=0"`
}

// Sum returns the total over the new-instrument counters.
func (c NewInstrumentCounts) Sum() int {
	return c.NewlyIssued + c.Amended + c.Replaced + c.Repealed
}

// Workflow holds the approval pipeline steps. Values are free text or dates
// exactly as entered; nothing here is parsed.
type Workflow struct {
	RegDocAgency   string `gorm:"type:text" json:"reg_doc_agency"`
	RegDocReply    string `gorm:"type:text" json:"reg_doc_reply"`
	RegDocUBND     string `gorm:"column:reg_doc_ubnd;type:text" json:"reg_doc_ubnd"`
	ApprovalHDND   string `gorm:"column:approval_hdnd;type:text" json:"approval_hdnd"`
	ExpectedDate   string `gorm:"size:128" json:"expected_date"`
	FeedbackSent   string `gorm:"type:text" json:"feedback_sent"`
	FeedbackReply  string `gorm:"type:text" json:"feedback_reply"`
	AppraisalSent  string `gorm:"type:text" json:"appraisal_sent"`
	AppraisalReply string `gorm:"type:text" json:"appraisal_reply"`
	SubmittedUBND  string `gorm:"column:submitted_ubnd;type:text" json:"submitted_ubnd"`
	SubmittedHDND  string `gorm:"column:submitted_hdnd;type:text" json:"submitted_hdnd"`
	SubmittedVB    string `gorm:"column:submitted_vb;type:text" json:"submitted_vb"`
	IssuanceNumber string `gorm:"type:text" json:"issuance_number"`
	IssuanceDate   string `gorm:"size:128" json:"issuance_date"`
	ProcessingTime string `gorm:"size:255" json:"processing_time"`
	Notes          string `gorm:"type:text" json:"notes"`
}

// Document is one group of legal-instrument outcomes sharing a name and a
// position within its (doc type, status) partition.
type Document struct {
	ID             string  `gorm:"primaryKey;size:36" json:"id"`
	DocType        string  `gorm:"size:16;not null;index:idx_partition_stt" json:"doc_type"`
	Status         string  `gorm:"size:16;not null;index:idx_partition_stt" json:"status"`
	STT            int     `gorm:"column:stt;index:idx_partition_stt" json:"stt"`
	Name           string  `gorm:"type:text;not null" json:"name"`
	AgencyID       *uint   `gorm:"index" json:"agency_id"`
	HandlerName    string  `gorm:"size:128;index" json:"handler_name"`
	DocCategory    string  `gorm:"size:32" json:"doc_category"`
	NeedsReview    bool    `gorm:"default:false" json:"needs_review"`
	ProcessingForm string  `gorm:"size:32" json:"processing_form"`
	Year           int     `gorm:"index" json:"year"`
	Agency         *Agency `gorm:"foreignKey:AgencyID;constraint:OnDelete:SET NULL" json:"agency,omitempty"`

	Legacy        LegacyCounts        `gorm:"embedded" json:"legacy"`
	Continuing    ContinuingCounts    `gorm:"embedded" json:"continuing"`
	NewInstrument NewInstrumentCounts `gorm:"embedded" json:"new_instrument"`
	Workflow      Workflow            `gorm:"embedded" json:"workflow"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a random UUID when the caller did not set one.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// AgencyName returns the preloaded agency name, or "" when the document has
// no agency or the relation was not loaded.
func (d Document) AgencyName() string {
	if d.Agency == nil {
		return ""
	}
	return d.Agency.Name
}

// IsPending reports whether the document still awaits processing.
func (d Document) IsPending() bool { return d.Status == StatusPending }

// IsCompleted reports whether the document has been processed.
func (d Document) IsCompleted() bool { return d.Status == StatusCompleted }

// ActiveCounts returns the current-schema total of the category the document
// belongs to. Documents without a category report 0.
func (d Document) ActiveCounts() int {
	switch d.DocCategory {
	case CategoryContinuing:
		return d.Continuing.Sum()
	case CategoryNewInstrument:
		return d.NewInstrument.Sum()
	}
	return 0
}

// ZeroInactiveCategory clears the counters of the category the document does
// not belong to, keeping exactly one group meaningful.
func (d *Document) ZeroInactiveCategory() {
	switch d.DocCategory {
	case CategoryContinuing:
		d.NewInstrument = NewInstrumentCounts{}
	case CategoryNewInstrument:
		d.Continuing = ContinuingCounts{}
	}
}

// IsValidDocType reports whether s is a known doc type.
func IsValidDocType(s string) bool { return contains(ValidDocTypes, s) }

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool { return contains(ValidStatuses, s) }

// IsValidCategory reports whether s is a known document category.
func IsValidCategory(s string) bool {
	return s == CategoryContinuing || s == CategoryNewInstrument
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
