package database

import "gorm.io/gorm"

var conn *gorm.DB

// SetDefault stores the application database connection.
func SetDefault(db *gorm.DB) {
	conn = db
}

// GetDB returns the application database connection.
func GetDB() *gorm.DB {
	return conn
}
