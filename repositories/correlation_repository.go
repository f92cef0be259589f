package repositories

import (
	"strings"

	"fiber-wes/models"
	"fiber-wes/werrors"

	"gorm.io/gorm"
)

// CorrelationRepository persists a whole document graph in one transaction,
// translating the client-chosen correlation keys into store identifiers
// level by level: header, lines, line serials, import lines, routes.
type CorrelationRepository struct {
	db *gorm.DB
}

func NewCorrelationRepository(db *gorm.DB) *CorrelationRepository {
	return &CorrelationRepository{db: db}
}

type BulkHeader struct {
	BranchCode  string `json:"branch_code"`
	PartnerCode string `json:"partner_code"`
	DocType     string `json:"doc_type"`
	DocNo       string `json:"doc_no"`
	DocDate     string `json:"doc_date"`
	PlannedDate string `json:"planned_date"`
}

type BulkLine struct {
	Key         string `json:"key"`
	StockCode   string `json:"stock_code"`
	YapCode     string `json:"yap_code"`
	Unit        string `json:"unit"`
	ErpOrderRef string `json:"erp_order_ref"`
}

type BulkLineSerial struct {
	LineKey      string  `json:"line_key"`
	SerialNumber string  `json:"serial_number"`
	Quantity     float64 `json:"quantity"`
}

type BulkImportLine struct {
	Key       string `json:"key"`
	LineKey   string `json:"line_key"` // optional, blank = unlinked
	StockCode string `json:"stock_code"`
	YapCode   string `json:"yap_code"`
}

type BulkRoute struct {
	ImportLineKey string  `json:"import_line_key"`
	Barcode       string  `json:"barcode"`
	Quantity      float64 `json:"quantity"`
	SerialNumber1 string  `json:"serial_number1"`
	SerialNumber2 string  `json:"serial_number2"`
	SerialNumber3 string  `json:"serial_number3"`
	SerialNumber4 string  `json:"serial_number4"`
	SourceCell    string  `json:"source_cell"`
	TargetCell    string  `json:"target_cell"`
}

type BulkCreateInput struct {
	Header      BulkHeader       `json:"header"`
	Lines       []BulkLine       `json:"lines"`
	LineSerials []BulkLineSerial `json:"line_serials"`
	ImportLines []BulkImportLine `json:"import_lines"`
	Routes      []BulkRoute      `json:"routes"`
}

// BulkCreate inserts the bundle in topological order. Any unresolved or blank
// required key rolls the whole operation back; on success the new header id
// is returned with every row committed.
func (r *CorrelationRepository) BulkCreate(moduleCode string, userID int, in BulkCreateInput) (int64, error) {
	var headerID int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		header := models.DocumentHeader{
			ModuleCode:  moduleCode,
			BranchCode:  in.Header.BranchCode,
			PartnerCode: in.Header.PartnerCode,
			DocType:     in.Header.DocType,
			DocNo:       in.Header.DocNo,
			DocDate:     in.Header.DocDate,
			PlannedDate: in.Header.PlannedDate,
			CreatedBy:   userID,
		}
		if err := tx.Create(&header).Error; err != nil {
			return werrors.Wrap(err, werrors.KeyInternalError)
		}
		headerID = header.ID

		// Lines: every line must declare its own key before any insert.
		for _, l := range in.Lines {
			if strings.TrimSpace(l.Key) == "" {
				return werrors.New(werrors.CodeCorrelation, werrors.KeyCorrelationKeyMissing, "line")
			}
		}
		lineIDs := make(map[string]uint, len(in.Lines))
		for _, l := range in.Lines {
			row := models.DocumentLine{
				HeaderId:    header.ID,
				StockCode:   strings.TrimSpace(l.StockCode),
				YapCode:     strings.TrimSpace(l.YapCode),
				Unit:        l.Unit,
				ErpOrderRef: l.ErpOrderRef,
				CreatedBy:   userID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return werrors.Wrap(err, werrors.KeyInternalError)
			}
			lineIDs[strings.TrimSpace(l.Key)] = row.ID
		}

		// Line serials resolve against the line key map.
		for _, s := range in.LineSerials {
			if strings.TrimSpace(s.LineKey) == "" {
				return werrors.New(werrors.CodeCorrelation, werrors.KeyCorrelationKeyMissing, "line_serial")
			}
		}
		for _, s := range in.LineSerials {
			lineID, ok := lineIDs[strings.TrimSpace(s.LineKey)]
			if !ok {
				return werrors.New(werrors.CodeCorrelation, werrors.KeyCorrelationKeyNotFound, s.LineKey, "line_serial")
			}
			row := models.LineSerial{
				LineId:       lineID,
				SerialNumber: strings.TrimSpace(s.SerialNumber),
				Quantity:     s.Quantity,
				CreatedBy:    userID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return werrors.Wrap(err, werrors.KeyInternalError)
			}
		}

		// Import lines carry their own key; the line link is optional.
		for _, il := range in.ImportLines {
			if strings.TrimSpace(il.Key) == "" {
				return werrors.New(werrors.CodeCorrelation, werrors.KeyCorrelationKeyMissing, "import_line")
			}
		}
		importLineIDs := make(map[string]uint, len(in.ImportLines))
		for _, il := range in.ImportLines {
			row := models.ImportLine{
				HeaderId:  header.ID,
				StockCode: strings.TrimSpace(il.StockCode),
				YapCode:   strings.TrimSpace(il.YapCode),
				CreatedBy: userID,
			}
			if lineKey := strings.TrimSpace(il.LineKey); lineKey != "" {
				lineID, ok := lineIDs[lineKey]
				if !ok {
					return werrors.New(werrors.CodeCorrelation, werrors.KeyCorrelationKeyNotFound, il.LineKey, "import_line")
				}
				row.LineId = &lineID
			}
			if err := tx.Create(&row).Error; err != nil {
				return werrors.Wrap(err, werrors.KeyInternalError)
			}
			importLineIDs[strings.TrimSpace(il.Key)] = row.ID
		}

		// Routes resolve against the import line key map.
		for _, rt := range in.Routes {
			if strings.TrimSpace(rt.ImportLineKey) == "" {
				return werrors.New(werrors.CodeCorrelation, werrors.KeyCorrelationKeyMissing, "route")
			}
		}
		for _, rt := range in.Routes {
			importLineID, ok := importLineIDs[strings.TrimSpace(rt.ImportLineKey)]
			if !ok {
				return werrors.New(werrors.CodeCorrelation, werrors.KeyCorrelationKeyNotFound, rt.ImportLineKey, "route")
			}
			row := models.Route{
				ImportLineId:  importLineID,
				Barcode:       rt.Barcode,
				Quantity:      rt.Quantity,
				SerialNumber1: strings.TrimSpace(rt.SerialNumber1),
				SerialNumber2: strings.TrimSpace(rt.SerialNumber2),
				SerialNumber3: strings.TrimSpace(rt.SerialNumber3),
				SerialNumber4: strings.TrimSpace(rt.SerialNumber4),
				SourceCell:    rt.SourceCell,
				TargetCell:    rt.TargetCell,
				CreatedBy:     userID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return werrors.Wrap(err, werrors.KeyInternalError)
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}
	return headerID, nil
}
