package models

import "gorm.io/gorm"

// Product master data, used to enrich stock codes with names.
type Product struct {
	gorm.Model
	StockCode string `json:"stock_code" gorm:"unique"`
	StockName string `json:"stock_name"`
	Unit      string `json:"unit"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int
}

// Partner master data (customer/supplier), used to enrich partner codes.
type Partner struct {
	gorm.Model
	PartnerCode string `json:"partner_code" gorm:"unique"`
	PartnerName string `json:"partner_name"`
	CreatedBy   int
	UpdatedBy   int
	DeletedBy   int
}
