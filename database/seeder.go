package database

import (
	"log"

	"fiber-wes/config"
	"fiber-wes/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func RunSeeders(db *gorm.DB) {
	SeedUserMaster(db)
	SeedProducts(db)
	SeedPartners(db)
	SeedParameters(db)
}

func SeedUserMaster(db *gorm.DB) {
	var existing models.User
	if err := db.Where("email = ?", "admin@local").First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("Failed to hash seed password: %v", err)
			}
			user := models.User{
				Name:       "Administrator",
				Email:      "admin@local",
				Password:   string(hashed),
				BranchCode: "01",
			}
			db.Create(&user)
		}
	}
}

func SeedProducts(db *gorm.DB) {
	products := []models.Product{
		{StockCode: "STK-0001", StockName: "Sample Item A", Unit: "PCS"},
		{StockCode: "STK-0002", StockName: "Sample Item B", Unit: "PCS"},
	}

	for _, p := range products {
		var existing models.Product
		if err := db.Where("stock_code = ?", p.StockCode).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&p)
			}
		}
	}
}

func SeedPartners(db *gorm.DB) {
	partners := []models.Partner{
		{PartnerCode: "CUST-001", PartnerName: "Sample Customer"},
		{PartnerCode: "SUPP-001", PartnerName: "Sample Supplier"},
	}

	for _, p := range partners {
		var existing models.Partner
		if err := db.Where("partner_code = ?", p.PartnerCode).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&p)
			}
		}
	}
}

// SeedParameters creates one default policy row per module. All flags start
// false, which is also how a missing row is interpreted.
func SeedParameters(db *gorm.DB) {
	for _, m := range config.Modules {
		var existing models.Parameter
		if err := db.Where("module_code = ? AND is_active = ?", m.Code, true).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				db.Create(&models.Parameter{ModuleCode: m.Code, IsActive: true})
			}
		}
	}
}
