package repositories_test

import (
	"testing"

	"fiber-wes/models"
	"fiber-wes/repositories"
	"fiber-wes/werrors"
)

func TestDeleteRouteCascadesUpToHeader(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "GR", "GR-1")
	line := models.DocumentLine{HeaderId: header.ID, StockCode: "STK-A"}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("Failed to create line: %v", err)
	}
	importLine := seedImportLine(t, db, header.ID, line.ID, "STK-A", "")
	route := seedRoute(t, db, importLine.ID, "", 5)

	if err := repo.DeleteRoute("GR", 2, route.ID); err != nil {
		t.Fatalf("DeleteRoute failed: %v", err)
	}

	// The line had no serials, so the whole chain collapses.
	if !isDeleted(t, db, &models.Route{}, route.ID) {
		t.Error("Route should be tombstoned")
	}
	if !isDeleted(t, db, &models.ImportLine{}, importLine.ID) {
		t.Error("Empty import line should be tombstoned")
	}
	if !isDeleted(t, db, &models.DocumentLine{}, line.ID) {
		t.Error("Orphaned line should be tombstoned")
	}
	if !isDeleted(t, db, &models.DocumentHeader{}, header.ID) {
		t.Error("Orphaned header should be tombstoned")
	}

	// Tombstones remain in the store with the deleting user recorded.
	var dead models.Route
	if err := db.Unscoped().First(&dead, "id = ?", route.ID).Error; err != nil {
		t.Fatalf("Tombstone missing: %v", err)
	}
	if !dead.DeletedAt.Valid || dead.DeletedBy != 2 {
		t.Errorf("Tombstone must carry deleted_at and deleted_by, got valid=%t by=%d", dead.DeletedAt.Valid, dead.DeletedBy)
	}

	// A tombstoned route is gone for a second delete.
	err := repo.DeleteRoute("GR", 2, route.ID)
	expectKey(t, err, werrors.KeyRouteNotFound)
	if werrors.CodeOf(err) != werrors.CodeNotFound {
		t.Errorf("Expected not-found code, got %s", werrors.CodeOf(err))
	}
}

func TestDeleteRouteKeepsImportLineWhileSerialsRemain(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "GR", "GR-1")
	line, _ := seedLine(t, db, header.ID, "STK-A", "", "", 10)
	importLine := seedImportLine(t, db, header.ID, line.ID, "STK-A", "")
	route := seedRoute(t, db, importLine.ID, "", 5)

	if err := repo.DeleteRoute("GR", 1, route.ID); err != nil {
		t.Fatalf("DeleteRoute failed: %v", err)
	}
	if isDeleted(t, db, &models.ImportLine{}, importLine.ID) {
		t.Error("Import line with a still-allocated line must survive the last route delete")
	}
	if isDeleted(t, db, &models.DocumentLine{}, line.ID) {
		t.Error("Line with serial allocations must survive")
	}
	if isDeleted(t, db, &models.DocumentHeader{}, header.ID) {
		t.Error("Header with active children must survive")
	}
}

func TestDeleteRouteKeepsImportLineWhileRoutesRemain(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "GR", "GR-1")
	line := models.DocumentLine{HeaderId: header.ID, StockCode: "STK-A"}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("Failed to create line: %v", err)
	}
	importLine := seedImportLine(t, db, header.ID, line.ID, "STK-A", "")
	first := seedRoute(t, db, importLine.ID, "", 2)
	seedRoute(t, db, importLine.ID, "", 3)

	if err := repo.DeleteRoute("GR", 1, first.ID); err != nil {
		t.Fatalf("DeleteRoute failed: %v", err)
	}
	if isDeleted(t, db, &models.ImportLine{}, importLine.ID) {
		t.Error("Import line with remaining routes must survive")
	}
}

func TestDeleteImportLineBlockedByRoutes(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "GR", "GR-1")
	line := models.DocumentLine{HeaderId: header.ID, StockCode: "STK-A"}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("Failed to create line: %v", err)
	}
	importLine := seedImportLine(t, db, header.ID, line.ID, "STK-A", "")
	seedRoute(t, db, importLine.ID, "", 1)

	err := repo.DeleteImportLine("GR", 1, importLine.ID)
	expectKey(t, err, werrors.KeyImportLineRoutesExist)
	if werrors.CodeOf(err) != werrors.CodeReferential {
		t.Errorf("Expected referential code, got %s", werrors.CodeOf(err))
	}
	if isDeleted(t, db, &models.ImportLine{}, importLine.ID) {
		t.Error("Blocked delete must leave the import line active")
	}
}

func TestDeleteImportLineBlockedByLineSerials(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "GR", "GR-1")
	line, _ := seedLine(t, db, header.ID, "STK-A", "", "SN-1", 5)
	importLine := seedImportLine(t, db, header.ID, line.ID, "STK-A", "")

	err := repo.DeleteImportLine("GR", 1, importLine.ID)
	expectKey(t, err, werrors.KeyImportLineLineSerialsExist)
}

func TestDeleteImportLineCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "GR", "GR-1")
	line := models.DocumentLine{HeaderId: header.ID, StockCode: "STK-A"}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("Failed to create line: %v", err)
	}
	importLine := seedImportLine(t, db, header.ID, line.ID, "STK-A", "")

	if err := repo.DeleteImportLine("GR", 1, importLine.ID); err != nil {
		t.Fatalf("DeleteImportLine failed: %v", err)
	}
	if !isDeleted(t, db, &models.DocumentLine{}, line.ID) {
		t.Error("Orphaned line should be tombstoned")
	}
	if !isDeleted(t, db, &models.DocumentHeader{}, header.ID) {
		t.Error("Orphaned header should be tombstoned")
	}
}

func TestDeleteLineBlockedByChildren(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "GR", "GR-1")
	line, serial := seedLine(t, db, header.ID, "STK-A", "", "SN-1", 5)

	err := repo.DeleteLine("GR", 1, line.ID)
	expectKey(t, err, werrors.KeyLineLineSerialsExist)

	// Clear the serial, then block on the import line instead.
	if err := db.Delete(&serial).Error; err != nil {
		t.Fatalf("Failed to remove serial: %v", err)
	}
	importLine := seedImportLine(t, db, header.ID, line.ID, "STK-A", "")

	err = repo.DeleteLine("GR", 1, line.ID)
	expectKey(t, err, werrors.KeyLineImportLinesExist)

	// With both children gone the line deletes and the header follows.
	if err := db.Delete(&importLine).Error; err != nil {
		t.Fatalf("Failed to remove import line: %v", err)
	}
	if err := repo.DeleteLine("GR", 1, line.ID); err != nil {
		t.Fatalf("DeleteLine failed: %v", err)
	}
	if !isDeleted(t, db, &models.DocumentHeader{}, header.ID) {
		t.Error("Orphaned header should be tombstoned")
	}
}

func TestDeleteLineSerialBlockedByRouteSerial(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "GR", "GR-1")
	line, serial := seedLine(t, db, header.ID, "STK-A", "", "SN-1", 5)
	importLine := seedImportLine(t, db, header.ID, line.ID, "STK-A", "")

	// The serial sits in a secondary slot; the check covers all four.
	route := models.Route{ImportLineId: importLine.ID, Quantity: 1, SerialNumber3: "SN-1"}
	if err := db.Create(&route).Error; err != nil {
		t.Fatalf("Failed to create route: %v", err)
	}

	err := repo.DeleteLineSerial("GR", 1, serial.ID)
	expectKey(t, err, werrors.KeyLineSerialRoutesExist)
	if werrors.CodeOf(err) != werrors.CodeReferential {
		t.Errorf("Expected referential code, got %s", werrors.CodeOf(err))
	}
}

func TestDeleteLineSerialBlockedByCollectedQuantity(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "GR", "GR-1")
	line, _ := seedLine(t, db, header.ID, "STK-A", "", "", 6)
	second := models.LineSerial{LineId: line.ID, Quantity: 4}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("Failed to create second serial: %v", err)
	}
	importLine := seedImportLine(t, db, header.ID, line.ID, "STK-A", "")
	seedRoute(t, db, importLine.ID, "", 8)

	// Removing 4 would drop expected to 6 while 8 is already collected.
	err := repo.DeleteLineSerial("GR", 1, second.ID)
	expectKey(t, err, werrors.KeyInsufficientQuantityAfterDelete)
	if werrors.CodeOf(err) != werrors.CodeQuantityPolicy {
		t.Errorf("Expected quantity-policy code, got %s", werrors.CodeOf(err))
	}
	if isDeleted(t, db, &models.LineSerial{}, second.ID) {
		t.Error("Blocked delete must leave the serial active")
	}
}

func TestDeleteLineSerialCascadesLineAndHeader(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "GR", "GR-1")
	line, serial := seedLine(t, db, header.ID, "STK-A", "", "SN-1", 5)

	if err := repo.DeleteLineSerial("GR", 1, serial.ID); err != nil {
		t.Fatalf("DeleteLineSerial failed: %v", err)
	}
	if !isDeleted(t, db, &models.LineSerial{}, serial.ID) {
		t.Error("Serial should be tombstoned")
	}
	if !isDeleted(t, db, &models.DocumentLine{}, line.ID) {
		t.Error("Line left without serials or import lines should be tombstoned")
	}
	if !isDeleted(t, db, &models.DocumentHeader{}, header.ID) {
		t.Error("Orphaned header should be tombstoned")
	}
}

func TestDeleteScopedToModule(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCascadeRepository(db)

	header := seedHeader(t, db, "SH", "SH-1")
	line := models.DocumentLine{HeaderId: header.ID, StockCode: "STK-A"}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("Failed to create line: %v", err)
	}
	importLine := seedImportLine(t, db, header.ID, line.ID, "STK-A", "")
	route := seedRoute(t, db, importLine.ID, "", 1)

	err := repo.DeleteRoute("GR", 1, route.ID)
	expectKey(t, err, werrors.KeyHeaderNotFound)
	if isDeleted(t, db, &models.Route{}, route.ID) {
		t.Error("Cross-module delete must not touch the route")
	}
}
