package models

import "gorm.io/gorm"

// Parameter is the per-module policy row. At most one active row per module;
// absence means all flags false.
type Parameter struct {
	gorm.Model
	ModuleCode                    string `json:"module_code" gorm:"index"`
	IsActive                      bool   `json:"is_active"`
	AllowLessQuantityBasedOnOrder bool   `json:"allow_less_quantity_based_on_order"`
	AllowMoreQuantityBasedOnOrder bool   `json:"allow_more_quantity_based_on_order"`
	RequireApprovalBeforeErp      bool   `json:"require_approval_before_erp"`
	RequireAllOrderItemsCollected bool   `json:"require_all_order_items_collected"`
	CreatedBy                     int
	UpdatedBy                     int
	DeletedBy                     int
}
