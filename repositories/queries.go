package repositories

import (
	"strings"

	"fiber-wes/models"

	"gorm.io/gorm"
)

// Tolerance absorbed by every quantity comparison, to keep floating point
// rounding out of policy decisions.
const qtyEpsilon = 1e-6

func findActiveLines(tx *gorm.DB, headerID int64) ([]models.DocumentLine, error) {
	var lines []models.DocumentLine
	err := tx.Where("header_id = ?", headerID).Order("id ASC").Find(&lines).Error
	return lines, err
}

func findActiveImportLines(tx *gorm.DB, headerID int64) ([]models.ImportLine, error) {
	var importLines []models.ImportLine
	err := tx.Where("header_id = ?", headerID).Order("id ASC").Find(&importLines).Error
	return importLines, err
}

func findLineSerials(tx *gorm.DB, lineIDs []uint) ([]models.LineSerial, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}
	var serials []models.LineSerial
	err := tx.Where("line_id IN ?", lineIDs).Order("id ASC").Find(&serials).Error
	return serials, err
}

func findRoutes(tx *gorm.DB, importLineIDs []uint) ([]models.Route, error) {
	if len(importLineIDs) == 0 {
		return nil, nil
	}
	var routes []models.Route
	err := tx.Where("import_line_id IN ?", importLineIDs).Order("id ASC").Find(&routes).Error
	return routes, err
}

// routeCarriesSerial reports whether any of the four serial slots matches.
func routeCarriesSerial(route models.Route, serial string) bool {
	if serial == "" {
		return false
	}
	for _, s := range []string{route.SerialNumber1, route.SerialNumber2, route.SerialNumber3, route.SerialNumber4} {
		if strings.TrimSpace(s) == serial {
			return true
		}
	}
	return false
}

// importLinesOfLine filters the import lines linked to one line.
func importLinesOfLine(importLines []models.ImportLine, lineID uint) []uint {
	var ids []uint
	for _, il := range importLines {
		if il.LineId != nil && *il.LineId == lineID {
			ids = append(ids, il.ID)
		}
	}
	return ids
}
