package repositories_test

import (
	"testing"

	"fiber-wes/models"
	"fiber-wes/repositories"
	"fiber-wes/werrors"
)

func sampleBundle() repositories.BulkCreateInput {
	return repositories.BulkCreateInput{
		Header: repositories.BulkHeader{
			BranchCode:  "01",
			PartnerCode: "P001",
			DocType:     "ORDER",
			DocNo:       "GR-2026-0001",
		},
		Lines: []repositories.BulkLine{
			{Key: "l1", StockCode: "STK-A", Unit: "PCS", ErpOrderRef: "SO-100"},
			{Key: "l2", StockCode: "STK-B", Unit: "PCS", ErpOrderRef: "SO-100"},
		},
		LineSerials: []repositories.BulkLineSerial{
			{LineKey: "l1", SerialNumber: "SN-1", Quantity: 5},
			{LineKey: "l2", Quantity: 10},
		},
		ImportLines: []repositories.BulkImportLine{
			{Key: "il1", LineKey: "l1", StockCode: "STK-A"},
			{Key: "il2", StockCode: "STK-B"}, // unlinked
		},
		Routes: []repositories.BulkRoute{
			{ImportLineKey: "il1", Barcode: "BC-1", Quantity: 2, SerialNumber1: "SN-1"},
			{ImportLineKey: "il2", Barcode: "BC-2", Quantity: 3},
		},
	}
}

func TestBulkCreateResolvesWholeGraph(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCorrelationRepository(db)

	headerID, err := repo.BulkCreate("GR", 1, sampleBundle())
	if err != nil {
		t.Fatalf("BulkCreate failed: %v", err)
	}
	if headerID == 0 {
		t.Fatal("Expected a generated header id")
	}

	var header models.DocumentHeader
	if err := db.First(&header, "id = ?", headerID).Error; err != nil {
		t.Fatalf("Header not persisted: %v", err)
	}
	if header.ModuleCode != "GR" || header.DocNo != "GR-2026-0001" {
		t.Errorf("Unexpected header: module=%s doc_no=%s", header.ModuleCode, header.DocNo)
	}

	var lines []models.DocumentLine
	if err := db.Where("header_id = ?", headerID).Order("id ASC").Find(&lines).Error; err != nil {
		t.Fatalf("Failed to load lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	var serials []models.LineSerial
	if err := db.Where("line_id IN ?", []uint{lines[0].ID, lines[1].ID}).Find(&serials).Error; err != nil {
		t.Fatalf("Failed to load line serials: %v", err)
	}
	if len(serials) != 2 {
		t.Fatalf("Expected 2 line serials, got %d", len(serials))
	}
	for _, s := range serials {
		if s.LineId != lines[0].ID && s.LineId != lines[1].ID {
			t.Errorf("Line serial %d points at unknown line %d", s.ID, s.LineId)
		}
	}

	var importLines []models.ImportLine
	if err := db.Where("header_id = ?", headerID).Order("id ASC").Find(&importLines).Error; err != nil {
		t.Fatalf("Failed to load import lines: %v", err)
	}
	if len(importLines) != 2 {
		t.Fatalf("Expected 2 import lines, got %d", len(importLines))
	}
	if importLines[0].LineId == nil || *importLines[0].LineId != lines[0].ID {
		t.Error("First import line should be linked to the first line")
	}
	if importLines[1].LineId != nil {
		t.Error("Second import line should stay unlinked")
	}

	var routes []models.Route
	if err := db.Where("import_line_id IN ?", []uint{importLines[0].ID, importLines[1].ID}).Find(&routes).Error; err != nil {
		t.Fatalf("Failed to load routes: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("Expected 2 routes, got %d", len(routes))
	}
}

func TestBulkCreateUnresolvedKeyRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCorrelationRepository(db)

	in := sampleBundle()
	in.Routes = append(in.Routes, repositories.BulkRoute{ImportLineKey: "no-such-key", Quantity: 1})

	_, err := repo.BulkCreate("GR", 1, in)
	expectKey(t, err, werrors.KeyCorrelationKeyNotFound)
	if werrors.CodeOf(err) != werrors.CodeCorrelation {
		t.Errorf("Expected correlation code, got %s", werrors.CodeOf(err))
	}

	// Nothing from the bundle may survive, not even tombstoned.
	if n := countAll(t, db, &models.DocumentHeader{}); n != 0 {
		t.Errorf("Expected 0 headers after rollback, got %d", n)
	}
	if n := countAll(t, db, &models.DocumentLine{}); n != 0 {
		t.Errorf("Expected 0 lines after rollback, got %d", n)
	}
	if n := countAll(t, db, &models.LineSerial{}); n != 0 {
		t.Errorf("Expected 0 line serials after rollback, got %d", n)
	}
	if n := countAll(t, db, &models.ImportLine{}); n != 0 {
		t.Errorf("Expected 0 import lines after rollback, got %d", n)
	}
	if n := countAll(t, db, &models.Route{}); n != 0 {
		t.Errorf("Expected 0 routes after rollback, got %d", n)
	}
}

func TestBulkCreateSerialOfUnknownLineRollsBack(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCorrelationRepository(db)

	in := sampleBundle()
	in.LineSerials[1].LineKey = "ghost"

	_, err := repo.BulkCreate("GR", 1, in)
	expectKey(t, err, werrors.KeyCorrelationKeyNotFound)
	if n := countAll(t, db, &models.DocumentHeader{}); n != 0 {
		t.Errorf("Expected 0 headers after rollback, got %d", n)
	}
}

func TestBulkCreateBlankKeyRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCorrelationRepository(db)

	in := sampleBundle()
	in.Lines[1].Key = "   "

	_, err := repo.BulkCreate("GR", 1, in)
	expectKey(t, err, werrors.KeyCorrelationKeyMissing)
	if n := countAll(t, db, &models.DocumentHeader{}); n != 0 {
		t.Errorf("Expected 0 headers after rollback, got %d", n)
	}
	if n := countAll(t, db, &models.DocumentLine{}); n != 0 {
		t.Errorf("Expected 0 lines after rollback, got %d", n)
	}
}

func TestBulkCreateTrimsCorrelationKeys(t *testing.T) {
	db := setupTestDB(t)
	repo := repositories.NewCorrelationRepository(db)

	in := sampleBundle()
	in.Lines[0].Key = "  l1  "
	in.LineSerials[0].LineKey = "l1"

	if _, err := repo.BulkCreate("GR", 1, in); err != nil {
		t.Fatalf("BulkCreate failed on padded key: %v", err)
	}
}
