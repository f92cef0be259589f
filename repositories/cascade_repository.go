package repositories

import (
	"errors"
	"strings"

	"fiber-wes/models"
	"fiber-wes/utils"
	"fiber-wes/werrors"

	"gorm.io/gorm"
)

// CascadeRepository owns every delete path of the document graph. Deleting a
// child soft-deletes now-orphaned ancestors in the same transaction, so no
// header, line or import line survives in active state with zero active
// children. All levels share the two orphan probes below instead of
// re-implementing the walk per entity.
type CascadeRepository struct {
	db *gorm.DB
}

func NewCascadeRepository(db *gorm.DB) *CascadeRepository {
	return &CascadeRepository{db: db}
}

func softDelete(tx *gorm.DB, userID int, entity interface{}) error {
	if err := tx.Model(entity).Update("deleted_by", userID).Error; err != nil {
		return werrors.Wrap(err, werrors.KeyInternalError)
	}
	if err := tx.Delete(entity).Error; err != nil {
		return werrors.Wrap(err, werrors.KeyInternalError)
	}
	return nil
}

func countActiveRoutes(tx *gorm.DB, importLineID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.Route{}).Where("import_line_id = ?", importLineID).Count(&n).Error
	return n, err
}

func countActiveLineSerials(tx *gorm.DB, lineID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.LineSerial{}).Where("line_id = ?", lineID).Count(&n).Error
	return n, err
}

func countActiveImportLinesOfLine(tx *gorm.DB, lineID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.ImportLine{}).Where("line_id = ?", lineID).Count(&n).Error
	return n, err
}

// cascadeLineIfOrphan deletes a line that lost its last serial and has no
// import line referencing it.
func cascadeLineIfOrphan(tx *gorm.DB, userID int, lineID uint) error {
	var line models.DocumentLine
	if err := tx.Where("id = ?", lineID).First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return werrors.Wrap(err, werrors.KeyInternalError)
	}

	serialCount, err := countActiveLineSerials(tx, lineID)
	if err != nil {
		return werrors.Wrap(err, werrors.KeyInternalError)
	}
	importCount, err := countActiveImportLinesOfLine(tx, lineID)
	if err != nil {
		return werrors.Wrap(err, werrors.KeyInternalError)
	}
	if serialCount > 0 || importCount > 0 {
		return nil
	}
	return softDelete(tx, userID, &line)
}

// cascadeHeaderIfOrphan deletes a header left with no active lines and no
// active import lines.
func cascadeHeaderIfOrphan(tx *gorm.DB, userID int, headerID int64) error {
	var header models.DocumentHeader
	if err := tx.Where("id = ?", headerID).First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return werrors.Wrap(err, werrors.KeyInternalError)
	}

	var lineCount, importCount int64
	if err := tx.Model(&models.DocumentLine{}).Where("header_id = ?", headerID).Count(&lineCount).Error; err != nil {
		return werrors.Wrap(err, werrors.KeyInternalError)
	}
	if err := tx.Model(&models.ImportLine{}).Where("header_id = ?", headerID).Count(&importCount).Error; err != nil {
		return werrors.Wrap(err, werrors.KeyInternalError)
	}
	if lineCount > 0 || importCount > 0 {
		return nil
	}
	return softDelete(tx, userID, &header)
}

func (r *CascadeRepository) headerOfModule(tx *gorm.DB, headerID int64, moduleCode string) (models.DocumentHeader, error) {
	var header models.DocumentHeader
	if err := tx.Where("id = ? AND module_code = ?", headerID, moduleCode).First(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return header, werrors.New(werrors.CodeNotFound, werrors.KeyHeaderNotFound)
		}
		return header, werrors.Wrap(err, werrors.KeyInternalError)
	}
	return header, nil
}

// DeleteRoute removes one scan record. The owning import line follows when
// the route was its last one and no serial allocation still pins its line,
// and the header follows when nothing active remains under it.
func (r *CascadeRepository) DeleteRoute(moduleCode string, userID int, routeID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var route models.Route
		if err := tx.Where("id = ?", routeID).First(&route).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return werrors.New(werrors.CodeNotFound, werrors.KeyRouteNotFound)
			}
			return werrors.Wrap(err, werrors.KeyInternalError)
		}

		var importLine models.ImportLine
		if err := tx.Where("id = ?", route.ImportLineId).First(&importLine).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return werrors.New(werrors.CodeNotFound, werrors.KeyImportLineNotFound)
			}
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		if _, err := r.headerOfModule(tx, importLine.HeaderId, moduleCode); err != nil {
			return err
		}

		if err := softDelete(tx, userID, &route); err != nil {
			return err
		}

		routeCount, err := countActiveRoutes(tx, importLine.ID)
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		if routeCount > 0 {
			return nil
		}

		if importLine.LineId != nil {
			serialCount, err := countActiveLineSerials(tx, *importLine.LineId)
			if err != nil {
				return werrors.Wrap(err, werrors.KeyInternalError)
			}
			if serialCount > 0 {
				return nil
			}
		}

		if err := softDelete(tx, userID, &importLine); err != nil {
			return err
		}
		if importLine.LineId != nil {
			if err := cascadeLineIfOrphan(tx, userID, *importLine.LineId); err != nil {
				return err
			}
		}
		return cascadeHeaderIfOrphan(tx, userID, importLine.HeaderId)
	})
}

// DeleteImportLine removes an import line directly. Blocked while it still
// has active routes or while its linked line still has serial allocations.
func (r *CascadeRepository) DeleteImportLine(moduleCode string, userID int, importLineID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var importLine models.ImportLine
		if err := tx.Where("id = ?", importLineID).First(&importLine).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return werrors.New(werrors.CodeNotFound, werrors.KeyImportLineNotFound)
			}
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		if _, err := r.headerOfModule(tx, importLine.HeaderId, moduleCode); err != nil {
			return err
		}

		routeCount, err := countActiveRoutes(tx, importLine.ID)
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		if routeCount > 0 {
			return werrors.New(werrors.CodeReferential, werrors.KeyImportLineRoutesExist)
		}
		if importLine.LineId != nil {
			serialCount, err := countActiveLineSerials(tx, *importLine.LineId)
			if err != nil {
				return werrors.Wrap(err, werrors.KeyInternalError)
			}
			if serialCount > 0 {
				return werrors.New(werrors.CodeReferential, werrors.KeyImportLineLineSerialsExist)
			}
		}

		if err := softDelete(tx, userID, &importLine); err != nil {
			return err
		}
		if importLine.LineId != nil {
			if err := cascadeLineIfOrphan(tx, userID, *importLine.LineId); err != nil {
				return err
			}
		}
		return cascadeHeaderIfOrphan(tx, userID, importLine.HeaderId)
	})
}

// DeleteLine removes an order line directly. Blocked while it still has
// active serial allocations or import lines.
func (r *CascadeRepository) DeleteLine(moduleCode string, userID int, lineID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var line models.DocumentLine
		if err := tx.Where("id = ?", lineID).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return werrors.New(werrors.CodeNotFound, werrors.KeyLineNotFound)
			}
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		if _, err := r.headerOfModule(tx, line.HeaderId, moduleCode); err != nil {
			return err
		}

		serialCount, err := countActiveLineSerials(tx, line.ID)
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		if serialCount > 0 {
			return werrors.New(werrors.CodeReferential, werrors.KeyLineLineSerialsExist)
		}
		importCount, err := countActiveImportLinesOfLine(tx, line.ID)
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		if importCount > 0 {
			return werrors.New(werrors.CodeReferential, werrors.KeyLineImportLinesExist)
		}

		if err := softDelete(tx, userID, &line); err != nil {
			return err
		}
		return cascadeHeaderIfOrphan(tx, userID, line.HeaderId)
	})
}

// DeleteLineSerial removes one expected sub-allocation. Blocked while an
// active route still carries its serial in any slot, or when removing its
// quantity would drop the line's expected total below what is already
// collected.
func (r *CascadeRepository) DeleteLineSerial(moduleCode string, userID int, lineSerialID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var serial models.LineSerial
		if err := tx.Where("id = ?", lineSerialID).First(&serial).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return werrors.New(werrors.CodeNotFound, werrors.KeyLineSerialNotFound)
			}
			return werrors.Wrap(err, werrors.KeyInternalError)
		}

		var line models.DocumentLine
		if err := tx.Where("id = ?", serial.LineId).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return werrors.New(werrors.CodeNotFound, werrors.KeyLineNotFound)
			}
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		if _, err := r.headerOfModule(tx, line.HeaderId, moduleCode); err != nil {
			return err
		}

		importLines, err := findActiveImportLines(tx, line.HeaderId)
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		lineImportIDs := importLinesOfLine(importLines, line.ID)
		routes, err := findRoutes(tx, lineImportIDs)
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}

		serialValue := strings.TrimSpace(serial.SerialNumber)
		var collected float64
		for _, rt := range routes {
			collected += rt.Quantity
			if routeCarriesSerial(rt, serialValue) {
				return werrors.New(werrors.CodeReferential, werrors.KeyLineSerialRoutesExist, serialValue)
			}
		}

		serials, err := findLineSerials(tx, []uint{line.ID})
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		expected := utils.SumBy(serials, func(s models.LineSerial) float64 { return s.Quantity })
		if expected-serial.Quantity+qtyEpsilon < collected {
			return werrors.New(werrors.CodeQuantityPolicy, werrors.KeyInsufficientQuantityAfterDelete).
				WithDiagnostic("line=%d expected=%v removing=%v collected=%v", line.ID, expected, serial.Quantity, collected)
		}

		if err := softDelete(tx, userID, &serial); err != nil {
			return err
		}
		if err := cascadeLineIfOrphan(tx, userID, line.ID); err != nil {
			return err
		}
		return cascadeHeaderIfOrphan(tx, userID, line.HeaderId)
	})
}
