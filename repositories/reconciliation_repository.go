package repositories

import (
	"errors"
	"math"
	"time"

	"fiber-wes/models"
	"fiber-wes/utils"
	"fiber-wes/werrors"

	"gorm.io/gorm"
)

// ReconciliationRepository gates the completion of a document on the
// collected-vs-ordered comparison configured by the module's parameter row,
// and owns the one-way approval transition.
type ReconciliationRepository struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

// Complete validates every active line of the header against the policy and,
// when all pass, marks the header completed. Returns the completed header so
// the caller can publish notifications after the commit.
func (r *ReconciliationRepository) Complete(moduleCode string, userID int, headerID int64) (models.DocumentHeader, error) {
	var header models.DocumentHeader

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND module_code = ?", headerID, moduleCode).First(&header).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return werrors.New(werrors.CodeNotFound, werrors.KeyHeaderNotFound)
			}
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		if header.IsCompleted {
			return werrors.New(werrors.CodeState, werrors.KeyAlreadyCompleted)
		}

		param, err := NewParameterRepository(tx).GetActive(moduleCode)
		if err != nil {
			return err
		}

		// Both flags set means any quantity relation is acceptable.
		if !(param.AllowLessQuantityBasedOnOrder && param.AllowMoreQuantityBasedOnOrder) {
			if err := r.validateLines(tx, header.ID, param); err != nil {
				return err
			}
		}

		now := time.Now()
		updates := map[string]interface{}{
			"is_completed":        true,
			"completion_date":     now,
			"is_pending_approval": param.RequireApprovalBeforeErp,
			"updated_by":          userID,
		}
		if err := tx.Model(&header).Updates(updates).Error; err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		header.IsCompleted = true
		header.CompletionDate = &now
		header.IsPendingApproval = param.RequireApprovalBeforeErp
		return nil
	})

	if err != nil {
		return models.DocumentHeader{}, err
	}
	return header, nil
}

func (r *ReconciliationRepository) validateLines(tx *gorm.DB, headerID int64, param models.Parameter) error {
	lines, err := findActiveLines(tx, headerID)
	if err != nil {
		return werrors.Wrap(err, werrors.KeyInternalError)
	}
	importLines, err := findActiveImportLines(tx, headerID)
	if err != nil {
		return werrors.Wrap(err, werrors.KeyInternalError)
	}

	var allImportIDs []uint
	for _, il := range importLines {
		allImportIDs = append(allImportIDs, il.ID)
	}
	routes, err := findRoutes(tx, allImportIDs)
	if err != nil {
		return werrors.Wrap(err, werrors.KeyInternalError)
	}
	routesByImport := map[uint]float64{}
	for _, rt := range routes {
		routesByImport[rt.ImportLineId] += rt.Quantity
	}

	for _, line := range lines {
		serials, err := findLineSerials(tx, []uint{line.ID})
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}

		expected := utils.SumBy(serials, func(s models.LineSerial) float64 { return s.Quantity })
		var collected float64
		for _, importID := range importLinesOfLine(importLines, line.ID) {
			collected += routesByImport[importID]
		}

		if collected <= qtyEpsilon {
			if param.RequireAllOrderItemsCollected {
				return werrors.New(werrors.CodeQuantityPolicy, werrors.KeyAllOrderItemsMustBeCollected, line.StockCode).
					WithDiagnostic("line=%d stock=%s yap=%s expected=%v collected=%v", line.ID, line.StockCode, line.YapCode, expected, collected)
			}
			// Uncollected lines are optional.
			continue
		}

		ok := true
		switch {
		case !param.AllowLessQuantityBasedOnOrder && !param.AllowMoreQuantityBasedOnOrder:
			ok = math.Abs(collected-expected) <= qtyEpsilon
		case param.AllowLessQuantityBasedOnOrder && !param.AllowMoreQuantityBasedOnOrder:
			ok = collected <= expected+qtyEpsilon
		case !param.AllowLessQuantityBasedOnOrder && param.AllowMoreQuantityBasedOnOrder:
			ok = collected+qtyEpsilon >= expected
		}
		if !ok {
			return werrors.New(werrors.CodeQuantityPolicy, werrors.KeyQuantityMismatch, collected, expected, line.StockCode).
				WithDiagnostic("line=%d stock=%s yap=%s expected=%v collected=%v", line.ID, line.StockCode, line.YapCode, expected, collected)
		}
	}
	return nil
}

// SetApproval decides a pending approval. Legal only once, on a completed
// header still pending approval; the transition is one-way.
func (r *ReconciliationRepository) SetApproval(moduleCode string, userID int, headerID int64, approved bool) (models.DocumentHeader, error) {
	var header models.DocumentHeader

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND module_code = ?", headerID, moduleCode).First(&header).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return werrors.New(werrors.CodeNotFound, werrors.KeyHeaderNotFound)
			}
			return werrors.Wrap(err, werrors.KeyInternalError)
		}

		if !header.IsCompleted || !header.IsPendingApproval || header.ApprovalStatus != nil {
			return werrors.New(werrors.CodeState, werrors.KeyApprovalUpdateError).
				WithDiagnostic("header=%d completed=%t pending=%t decided=%t", header.ID, header.IsCompleted, header.IsPendingApproval, header.ApprovalStatus != nil)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"approval_status":     approved,
			"is_pending_approval": false,
			"approved_by":         userID,
			"approval_date":       now,
			"updated_by":          userID,
		}
		if err := tx.Model(&header).Updates(updates).Error; err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		header.ApprovalStatus = &approved
		header.IsPendingApproval = false
		header.ApprovedBy = userID
		header.ApprovalDate = &now
		return nil
	})

	if err != nil {
		return models.DocumentHeader{}, err
	}
	return header, nil
}

// MarkErpResult records the outcome of the ERP hand-off on the header.
func (r *ReconciliationRepository) MarkErpResult(moduleCode string, userID int, headerID int64, refNo, status, errMsg string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var header models.DocumentHeader
		if err := tx.Where("id = ? AND module_code = ?", headerID, moduleCode).First(&header).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return werrors.New(werrors.CodeNotFound, werrors.KeyHeaderNotFound)
			}
			return werrors.Wrap(err, werrors.KeyInternalError)
		}

		updates := map[string]interface{}{
			"erp_integrated": errMsg == "",
			"erp_ref_no":     refNo,
			"erp_status":     status,
			"erp_error":      errMsg,
			"updated_by":     userID,
		}
		if err := tx.Model(&header).Updates(updates).Error; err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		return nil
	})
}
