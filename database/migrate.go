package database

import (
	"fiber-wes/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Partner{},
		&models.Parameter{},
		&models.DocumentHeader{},
		&models.DocumentLine{},
		&models.ImportLine{},
		&models.Route{},
		&models.LineSerial{},
	)
}
