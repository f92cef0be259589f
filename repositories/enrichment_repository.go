package repositories

import (
	"fiber-wes/models"
	"fiber-wes/werrors"

	"gorm.io/gorm"
)

// EnrichmentRepository fills human-readable names onto rows that carry only
// codes, from the master tables.
type EnrichmentRepository struct {
	db *gorm.DB
}

func NewEnrichmentRepository(db *gorm.DB) *EnrichmentRepository {
	return &EnrichmentRepository{db: db}
}

// EnrichPartnerNames resolves partner codes in one batch. Unknown codes are
// left blank, they are not an error.
func (r *EnrichmentRepository) EnrichPartnerNames(rows []ListDocument) ([]ListDocument, error) {
	if len(rows) == 0 {
		return rows, nil
	}

	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.PartnerCode != "" {
			codes = append(codes, row.PartnerCode)
		}
	}
	if len(codes) == 0 {
		return rows, nil
	}

	var partners []models.Partner
	if err := r.db.Where("partner_code IN ?", codes).Find(&partners).Error; err != nil {
		return nil, werrors.Wrap(err, werrors.KeyInternalError)
	}

	names := make(map[string]string, len(partners))
	for _, p := range partners {
		names[p.PartnerCode] = p.PartnerName
	}
	for i := range rows {
		rows[i].PartnerName = names[rows[i].PartnerCode]
	}
	return rows, nil
}

// EnrichStockNames resolves stock codes on detail lines in one batch.
func (r *EnrichmentRepository) EnrichStockNames(rows []DetailLine) ([]DetailLine, error) {
	if len(rows) == 0 {
		return rows, nil
	}

	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.StockCode != "" {
			codes = append(codes, row.StockCode)
		}
	}
	if len(codes) == 0 {
		return rows, nil
	}

	var products []models.Product
	if err := r.db.Where("stock_code IN ?", codes).Find(&products).Error; err != nil {
		return nil, werrors.Wrap(err, werrors.KeyInternalError)
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.StockCode] = p.StockName
	}
	for i := range rows {
		rows[i].StockName = names[rows[i].StockCode]
	}
	return rows, nil
}
