package repositories

import (
	"errors"
	"strings"

	"fiber-wes/models"
	"fiber-wes/utils"
	"fiber-wes/werrors"

	"gorm.io/gorm"
)

// AllocationRepository attaches one incoming scan to the best matching line
// of an already generated document and records it as a route.
type AllocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

type ScanInput struct {
	HeaderID      int64   `json:"header_id" validate:"required"`
	StockCode     string  `json:"stock_code" validate:"required"`
	YapCode       string  `json:"yap_code"`
	Quantity      float64 `json:"quantity"`
	SerialNumber  string  `json:"serial_number"`
	SerialNumber2 string  `json:"serial_number2"`
	SerialNumber3 string  `json:"serial_number3"`
	SerialNumber4 string  `json:"serial_number4"`
	Barcode       string  `json:"barcode"`
	SourceCell    string  `json:"source_cell"`
	TargetCell    string  `json:"target_cell"`
}

// AddBarcode runs the whole allocation in one transaction and returns the
// resolved import line. The quantity sums are computed inside that same
// transaction without row locking, so two concurrent scans on the same line
// can both pass the over-collection pre-check; this mirrors the optimistic
// behavior of the completion check and is accepted here.
func (r *AllocationRepository) AddBarcode(moduleCode string, userID int, in ScanInput) (models.ImportLine, error) {
	var result models.ImportLine

	if in.Quantity <= 0 {
		return result, werrors.New(werrors.CodeValidation, werrors.KeyInvalidQuantity)
	}

	stockCode := strings.TrimSpace(in.StockCode)
	yapCode := strings.TrimSpace(in.YapCode)
	reqSerial := strings.TrimSpace(in.SerialNumber)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var header models.DocumentHeader
		if err := tx.Where("id = ? AND module_code = ?", in.HeaderID, moduleCode).First(&header).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return werrors.New(werrors.CodeNotFound, werrors.KeyHeaderNotFound)
			}
			return werrors.Wrap(err, werrors.KeyInternalError)
		}

		lines, err := findActiveLines(tx, header.ID)
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		var candidates []models.DocumentLine
		for _, l := range lines {
			if strings.TrimSpace(l.StockCode) == stockCode && strings.TrimSpace(l.YapCode) == yapCode {
				candidates = append(candidates, l)
			}
		}
		if len(candidates) == 0 {
			return werrors.New(werrors.CodeQuantityPolicy, werrors.KeyStockYapMismatch, stockCode, yapCode).
				WithDiagnostic("header=%d stock=%s yap=%s", header.ID, stockCode, yapCode)
		}

		candidateIDs := make([]uint, len(candidates))
		candidateSet := make(map[uint]bool, len(candidates))
		for i, l := range candidates {
			candidateIDs[i] = l.ID
			candidateSet[l.ID] = true
		}

		serials, err := findLineSerials(tx, candidateIDs)
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}

		importLines, err := findActiveImportLines(tx, header.ID)
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		var linkedImportIDs []uint
		for _, il := range importLines {
			if il.LineId != nil && candidateSet[*il.LineId] {
				linkedImportIDs = append(linkedImportIDs, il.ID)
			}
		}
		routes, err := findRoutes(tx, linkedImportIDs)
		if err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}

		paramRepo := NewParameterRepository(tx)
		param, err := paramRepo.GetActive(moduleCode)
		if err != nil {
			return err
		}

		// Serial mode only applies when both the request and at least one
		// candidate serial carry a value; otherwise quantities aggregate.
		anySerial := false
		for _, s := range serials {
			if strings.TrimSpace(s.SerialNumber) != "" {
				anySerial = true
				break
			}
		}
		serialMode := reqSerial != "" && anySerial

		var matchingSerials []models.LineSerial
		var expected, collected float64
		if serialMode {
			for _, s := range serials {
				if strings.TrimSpace(s.SerialNumber) == reqSerial {
					matchingSerials = append(matchingSerials, s)
					expected += s.Quantity
				}
			}
			if len(matchingSerials) == 0 {
				return werrors.New(werrors.CodeQuantityPolicy, werrors.KeySerialNotMatch, reqSerial).
					WithDiagnostic("header=%d serial=%s", header.ID, reqSerial)
			}
			for _, rt := range routes {
				if routeCarriesSerial(rt, reqSerial) {
					collected += rt.Quantity
				}
			}
		} else {
			expected = utils.SumBy(serials, func(s models.LineSerial) float64 { return s.Quantity })
			collected = utils.SumBy(routes, func(rt models.Route) float64 { return rt.Quantity })
		}

		// Only over-collection is gated here; AllowLess matters at
		// completion, not on an incremental add.
		if !param.AllowMoreQuantityBasedOnOrder && collected+in.Quantity > expected+qtyEpsilon {
			return werrors.New(werrors.CodeQuantityPolicy, werrors.KeyQuantityExceeded).
				WithDiagnostic("header=%d stock=%s expected=%v collected=%v add=%v", header.ID, stockCode, expected, collected, in.Quantity)
		}

		selected := selectLine(candidates, matchingSerials, serials, importLines, routes, serialMode)

		importLine, err := r.resolveImportLine(tx, header.ID, selected.ID, stockCode, yapCode, userID, importLines)
		if err != nil {
			return err
		}

		route := models.Route{
			ImportLineId:  importLine.ID,
			Barcode:       in.Barcode,
			Quantity:      in.Quantity,
			SerialNumber1: reqSerial,
			SerialNumber2: strings.TrimSpace(in.SerialNumber2),
			SerialNumber3: strings.TrimSpace(in.SerialNumber3),
			SerialNumber4: strings.TrimSpace(in.SerialNumber4),
			SourceCell:    in.SourceCell,
			TargetCell:    in.TargetCell,
			CreatedBy:     userID,
		}
		if err := tx.Create(&route).Error; err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}

		result = importLine
		return nil
	})

	if err != nil {
		return models.ImportLine{}, err
	}
	return result, nil
}

// selectLine picks the line a scan belongs to. A serial that maps to exactly
// one line wins outright; otherwise the candidate with the greatest remaining
// quantity (expected minus collected) is chosen, first candidate on ties.
func selectLine(candidates []models.DocumentLine, matchingSerials, allSerials []models.LineSerial,
	importLines []models.ImportLine, routes []models.Route, serialMode bool) models.DocumentLine {

	if serialMode {
		lineSet := map[uint]bool{}
		for _, s := range matchingSerials {
			lineSet[s.LineId] = true
		}
		if len(lineSet) == 1 {
			for _, c := range candidates {
				if lineSet[c.ID] {
					return c
				}
			}
		}
	}

	routesByImport := map[uint]float64{}
	for _, rt := range routes {
		routesByImport[rt.ImportLineId] += rt.Quantity
	}

	best := candidates[0]
	bestRemaining := -1.0
	first := true
	for _, c := range candidates {
		var lineExpected, lineCollected float64
		for _, s := range allSerials {
			if s.LineId == c.ID {
				lineExpected += s.Quantity
			}
		}
		for _, importID := range importLinesOfLine(importLines, c.ID) {
			lineCollected += routesByImport[importID]
		}
		remaining := lineExpected - lineCollected
		if first || remaining > bestRemaining {
			best = c
			bestRemaining = remaining
			first = false
		}
	}
	return best
}

// resolveImportLine finds the active import line for (header, line, stock,
// yap) or creates it on first scan.
func (r *AllocationRepository) resolveImportLine(tx *gorm.DB, headerID int64, lineID uint,
	stockCode, yapCode string, userID int, importLines []models.ImportLine) (models.ImportLine, error) {

	for _, il := range importLines {
		if il.LineId != nil && *il.LineId == lineID &&
			strings.TrimSpace(il.StockCode) == stockCode && strings.TrimSpace(il.YapCode) == yapCode {
			return il, nil
		}
	}

	importLine := models.ImportLine{
		HeaderId:  headerID,
		LineId:    &lineID,
		StockCode: stockCode,
		YapCode:   yapCode,
		CreatedBy: userID,
	}
	if err := tx.Create(&importLine).Error; err != nil {
		return importLine, werrors.Wrap(err, werrors.KeyInternalError)
	}
	return importLine, nil
}
