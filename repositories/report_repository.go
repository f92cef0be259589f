package repositories

import (
	"errors"

	"fiber-wes/models"
	"fiber-wes/werrors"

	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type ReconciliationRow struct {
	LineID     uint    `json:"line_id"`
	StockCode  string  `json:"stock_code"`
	YapCode    string  `json:"yap_code"`
	Unit       string  `json:"unit"`
	Expected   float64 `json:"expected"`
	Collected  float64 `json:"collected"`
	Difference float64 `json:"difference"`
}

// ReconciliationRows returns expected vs collected per active line of one
// header, for the report export.
func (r *ReportRepository) ReconciliationRows(moduleCode string, headerID int64) ([]ReconciliationRow, error) {
	var header models.DocumentHeader
	if err := r.db.Where("id = ? AND module_code = ?", headerID, moduleCode).First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, werrors.New(werrors.CodeNotFound, werrors.KeyHeaderNotFound)
		}
		return nil, werrors.Wrap(err, werrors.KeyInternalError)
	}

	lines, err := findActiveLines(r.db, headerID)
	if err != nil {
		return nil, werrors.Wrap(err, werrors.KeyInternalError)
	}
	importLines, err := findActiveImportLines(r.db, headerID)
	if err != nil {
		return nil, werrors.Wrap(err, werrors.KeyInternalError)
	}
	var importIDs []uint
	for _, il := range importLines {
		importIDs = append(importIDs, il.ID)
	}
	routes, err := findRoutes(r.db, importIDs)
	if err != nil {
		return nil, werrors.Wrap(err, werrors.KeyInternalError)
	}
	routesByImport := map[uint]float64{}
	for _, rt := range routes {
		routesByImport[rt.ImportLineId] += rt.Quantity
	}

	var rows []ReconciliationRow
	for _, line := range lines {
		serials, err := findLineSerials(r.db, []uint{line.ID})
		if err != nil {
			return nil, werrors.Wrap(err, werrors.KeyInternalError)
		}
		row := ReconciliationRow{LineID: line.ID, StockCode: line.StockCode, YapCode: line.YapCode, Unit: line.Unit}
		for _, s := range serials {
			row.Expected += s.Quantity
		}
		for _, importID := range importLinesOfLine(importLines, line.ID) {
			row.Collected += routesByImport[importID]
		}
		row.Difference = row.Collected - row.Expected
		rows = append(rows, row)
	}
	return rows, nil
}
