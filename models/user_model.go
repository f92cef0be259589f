package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name       string `json:"name"`
	Email      string `json:"email" gorm:"unique"`
	Password   string `json:"-"`
	BranchCode string `json:"branch_code"`
	CreatedBy  int
	UpdatedBy  int
	DeletedBy  int
}
