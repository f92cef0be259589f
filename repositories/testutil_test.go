package repositories_test

import (
	"path/filepath"
	"sync"
	"testing"

	"fiber-wes/controllers/idgen"
	"fiber-wes/database"
	"fiber-wes/models"
	"fiber-wes/werrors"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var idgenOnce sync.Once

// setupTestDB opens a fresh sqlite database for one test and migrates the
// full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	idgenOnce.Do(idgen.Init)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "wes_test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// setParameter creates the active policy row for a module.
func setParameter(t *testing.T, db *gorm.DB, moduleCode string, allowLess, allowMore, requireApproval, requireAll bool) {
	t.Helper()
	param := models.Parameter{
		ModuleCode:                    moduleCode,
		IsActive:                      true,
		AllowLessQuantityBasedOnOrder: allowLess,
		AllowMoreQuantityBasedOnOrder: allowMore,
		RequireApprovalBeforeErp:      requireApproval,
		RequireAllOrderItemsCollected: requireAll,
	}
	if err := db.Create(&param).Error; err != nil {
		t.Fatalf("Failed to create parameter: %v", err)
	}
}

// seedHeader creates an active document header.
func seedHeader(t *testing.T, db *gorm.DB, moduleCode, docNo string) models.DocumentHeader {
	t.Helper()
	header := models.DocumentHeader{ModuleCode: moduleCode, DocNo: docNo, BranchCode: "01"}
	if err := db.Create(&header).Error; err != nil {
		t.Fatalf("Failed to create header: %v", err)
	}
	return header
}

// seedLine creates an active line with one serial allocation of the given
// quantity. A blank serialNo produces a quantity-level allocation.
func seedLine(t *testing.T, db *gorm.DB, headerID int64, stockCode, yapCode, serialNo string, qty float64) (models.DocumentLine, models.LineSerial) {
	t.Helper()
	line := models.DocumentLine{HeaderId: headerID, StockCode: stockCode, YapCode: yapCode, Unit: "PCS"}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("Failed to create line: %v", err)
	}
	serial := models.LineSerial{LineId: line.ID, SerialNumber: serialNo, Quantity: qty}
	if err := db.Create(&serial).Error; err != nil {
		t.Fatalf("Failed to create line serial: %v", err)
	}
	return line, serial
}

// seedImportLine creates an import line linked to a line.
func seedImportLine(t *testing.T, db *gorm.DB, headerID int64, lineID uint, stockCode, yapCode string) models.ImportLine {
	t.Helper()
	importLine := models.ImportLine{HeaderId: headerID, LineId: &lineID, StockCode: stockCode, YapCode: yapCode}
	if err := db.Create(&importLine).Error; err != nil {
		t.Fatalf("Failed to create import line: %v", err)
	}
	return importLine
}

// seedRoute creates a scan record on an import line.
func seedRoute(t *testing.T, db *gorm.DB, importLineID uint, serialNo string, qty float64) models.Route {
	t.Helper()
	route := models.Route{ImportLineId: importLineID, SerialNumber1: serialNo, Quantity: qty, Barcode: "BC"}
	if err := db.Create(&route).Error; err != nil {
		t.Fatalf("Failed to create route: %v", err)
	}
	return route
}

func countAll(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Unscoped().Model(model).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

// expectKey asserts that err is a typed error carrying the given catalog key.
func expectKey(t *testing.T, err error, key string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with key %q, got nil", key)
	}
	if got := werrors.KeyOf(err); got != key {
		t.Fatalf("Expected error key %q, got %q (%v)", key, got, err)
	}
}

func isDeleted(t *testing.T, db *gorm.DB, model interface{}, id interface{}) bool {
	t.Helper()
	err := db.Where("id = ?", id).First(model).Error
	if err == gorm.ErrRecordNotFound {
		return true
	}
	if err != nil {
		t.Fatalf("Failed to load row: %v", err)
	}
	return false
}
