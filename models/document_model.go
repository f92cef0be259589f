package models

import (
	"time"

	"fiber-wes/controllers/idgen"

	"gorm.io/gorm"
)

// DocumentHeader is one warehouse document (goods receipt, transfer, ...).
// ModuleCode tells which module the document belongs to; every module shares
// this table set.
type DocumentHeader struct {
	gorm.Model
	ID                int64      `json:"id" gorm:"primary_key"`
	ModuleCode        string     `json:"module_code" gorm:"index"`
	BranchCode        string     `json:"branch_code"`
	PartnerCode       string     `json:"partner_code"`
	DocType           string     `json:"doc_type"`
	DocNo             string     `json:"doc_no"`
	DocDate           string     `json:"doc_date"`
	PlannedDate       string     `json:"planned_date"`
	IsCompleted       bool       `json:"is_completed"`
	CompletionDate    *time.Time `json:"completion_date"`
	IsPendingApproval bool       `json:"is_pending_approval"`
	ApprovalStatus    *bool      `json:"approval_status"` // null = pending
	ApprovedBy        int        `json:"approved_by"`
	ApprovalDate      *time.Time `json:"approval_date"`
	ErpIntegrated     bool       `json:"erp_integrated"`
	ErpRefNo          string     `json:"erp_ref_no"`
	ErpStatus         string     `json:"erp_status"`
	ErpError          string     `json:"erp_error"`
	CreatedBy         int
	UpdatedBy         int
	DeletedBy         int

	// Relations
	Lines       []DocumentLine `gorm:"foreignKey:HeaderId;references:ID" json:"lines"`
	ImportLines []ImportLine   `gorm:"foreignKey:HeaderId;references:ID" json:"import_lines"`
}

func (h *DocumentHeader) BeforeCreate(tx *gorm.DB) (err error) {
	h.ID = idgen.GenerateID()
	return
}

// DocumentLine is one ordered stock item on a header. Its ordered quantity
// is the sum of its line serials.
type DocumentLine struct {
	gorm.Model
	HeaderId    int64  `json:"header_id" gorm:"index"`
	StockCode   string `json:"stock_code"`
	YapCode     string `json:"yap_code"`
	Unit        string `json:"unit"`
	ErpOrderRef string `json:"erp_order_ref"`
	CreatedBy   int
	UpdatedBy   int
	DeletedBy   int

	LineSerials []LineSerial `gorm:"foreignKey:LineId;references:ID" json:"line_serials"`
}

// ImportLine groups the scan events of one (stock code, yap code) pair on a
// header. LineId is optional; unlinked import lines are legal.
type ImportLine struct {
	gorm.Model
	HeaderId  int64  `json:"header_id" gorm:"index"`
	LineId    *uint  `json:"line_id" gorm:"default:null"`
	StockCode string `json:"stock_code"`
	YapCode   string `json:"yap_code"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int

	Routes []Route `gorm:"foreignKey:ImportLineId;references:ID" json:"routes"`
}

// Route is one physical scan event, the collected side of reconciliation.
type Route struct {
	gorm.Model
	ImportLineId  uint    `json:"import_line_id" gorm:"index"`
	Barcode       string  `json:"barcode"`
	Quantity      float64 `json:"quantity"`
	SerialNumber1 string  `json:"serial_number1"`
	SerialNumber2 string  `json:"serial_number2"`
	SerialNumber3 string  `json:"serial_number3"`
	SerialNumber4 string  `json:"serial_number4"`
	SourceCell    string  `json:"source_cell"`
	TargetCell    string  `json:"target_cell"`
	CreatedBy     int
	UpdatedBy     int
	DeletedBy     int
}

// LineSerial is a serial- or quantity-level sub-allocation of a line's
// ordered quantity, the expected side of reconciliation.
type LineSerial struct {
	gorm.Model
	LineId       uint    `json:"line_id" gorm:"index"`
	SerialNumber string  `json:"serial_number"`
	Quantity     float64 `json:"quantity"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int
}
