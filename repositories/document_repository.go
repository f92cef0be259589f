package repositories

import (
	"errors"

	"fiber-wes/models"
	"fiber-wes/werrors"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

type ListDocument struct {
	ID                int64   `json:"id"`
	ModuleCode        string  `json:"module_code"`
	BranchCode        string  `json:"branch_code"`
	PartnerCode       string  `json:"partner_code"`
	PartnerName       string  `json:"partner_name"`
	DocType           string  `json:"doc_type"`
	DocNo             string  `json:"doc_no"`
	DocDate           string  `json:"doc_date"`
	PlannedDate       string  `json:"planned_date"`
	IsCompleted       bool    `json:"is_completed"`
	IsPendingApproval bool    `json:"is_pending_approval"`
	TotalLine         int     `json:"total_line"`
	TotalQty          float64 `json:"total_qty"`
	QtyScan           float64 `json:"qty_scan"`
}

// GetAllDocuments lists the active headers of a module with ordered and
// collected totals.
func (r *DocumentRepository) GetAllDocuments(moduleCode string) ([]ListDocument, error) {
	sql := `WITH expected AS (
			SELECT l.header_id, COUNT(l.id) AS total_line, COALESCE(SUM(s.quantity), 0) AS total_qty
			FROM document_lines l
			LEFT JOIN line_serials s ON s.line_id = l.id AND s.deleted_at IS NULL
			WHERE l.deleted_at IS NULL
			GROUP BY l.header_id
		),
		collected AS (
			SELECT il.header_id, SUM(rt.quantity) AS qty_scan
			FROM import_lines il
			INNER JOIN routes rt ON rt.import_line_id = il.id AND rt.deleted_at IS NULL
			WHERE il.deleted_at IS NULL
			GROUP BY il.header_id
		)
		SELECT a.id, a.module_code, a.branch_code, a.partner_code, a.doc_type, a.doc_no,
		a.doc_date, a.planned_date, a.is_completed, a.is_pending_approval,
		COALESCE(e.total_line, 0) AS total_line, COALESCE(e.total_qty, 0) AS total_qty,
		COALESCE(c.qty_scan, 0) AS qty_scan
		FROM document_headers a
		LEFT JOIN expected e ON a.id = e.header_id
		LEFT JOIN collected c ON a.id = c.header_id
		WHERE a.module_code = ? AND a.deleted_at IS NULL
		ORDER BY a.created_at DESC`

	var list []ListDocument
	if err := r.db.Raw(sql, moduleCode).Scan(&list).Error; err != nil {
		return nil, werrors.Wrap(err, werrors.KeyInternalError)
	}
	return list, nil
}

type DocumentDetail struct {
	Header models.DocumentHeader `json:"header"`
	Lines  []DetailLine          `json:"lines"`
}

type DetailLine struct {
	models.DocumentLine
	StockName string  `json:"stock_name"`
	Expected  float64 `json:"expected"`
	Collected float64 `json:"collected"`
}

// GetDocumentDetail returns one header with its active lines and the
// expected/collected quantities per line.
func (r *DocumentRepository) GetDocumentDetail(moduleCode string, headerID int64) (DocumentDetail, error) {
	var detail DocumentDetail

	if err := r.db.Where("id = ? AND module_code = ?", headerID, moduleCode).First(&detail.Header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail, werrors.New(werrors.CodeNotFound, werrors.KeyHeaderNotFound)
		}
		return detail, werrors.Wrap(err, werrors.KeyInternalError)
	}

	lines, err := findActiveLines(r.db, headerID)
	if err != nil {
		return detail, werrors.Wrap(err, werrors.KeyInternalError)
	}
	importLines, err := findActiveImportLines(r.db, headerID)
	if err != nil {
		return detail, werrors.Wrap(err, werrors.KeyInternalError)
	}
	var importIDs []uint
	for _, il := range importLines {
		importIDs = append(importIDs, il.ID)
	}
	routes, err := findRoutes(r.db, importIDs)
	if err != nil {
		return detail, werrors.Wrap(err, werrors.KeyInternalError)
	}
	routesByImport := map[uint]float64{}
	for _, rt := range routes {
		routesByImport[rt.ImportLineId] += rt.Quantity
	}

	for _, line := range lines {
		serials, err := findLineSerials(r.db, []uint{line.ID})
		if err != nil {
			return detail, werrors.Wrap(err, werrors.KeyInternalError)
		}
		row := DetailLine{DocumentLine: line}
		for _, s := range serials {
			row.Expected += s.Quantity
		}
		for _, importID := range importLinesOfLine(importLines, line.ID) {
			row.Collected += routesByImport[importID]
		}
		detail.Lines = append(detail.Lines, row)
	}

	rows, err := NewEnrichmentRepository(r.db).EnrichStockNames(detail.Lines)
	if err != nil {
		return detail, err
	}
	detail.Lines = rows

	return detail, nil
}

// GetRoutesByImportLine lists the active scan records of one import line.
func (r *DocumentRepository) GetRoutesByImportLine(moduleCode string, importLineID uint) ([]models.Route, error) {
	var importLine models.ImportLine
	if err := r.db.Where("id = ?", importLineID).First(&importLine).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, werrors.New(werrors.CodeNotFound, werrors.KeyImportLineNotFound)
		}
		return nil, werrors.Wrap(err, werrors.KeyInternalError)
	}

	var header models.DocumentHeader
	if err := r.db.Where("id = ? AND module_code = ?", importLine.HeaderId, moduleCode).First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, werrors.New(werrors.CodeNotFound, werrors.KeyHeaderNotFound)
		}
		return nil, werrors.Wrap(err, werrors.KeyInternalError)
	}

	var routes []models.Route
	if err := r.db.Where("import_line_id = ?", importLineID).Order("created_at DESC").Find(&routes).Error; err != nil {
		return nil, werrors.Wrap(err, werrors.KeyInternalError)
	}
	return routes, nil
}
