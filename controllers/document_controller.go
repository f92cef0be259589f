package controllers

import (
	"fmt"
	"strconv"

	"fiber-wes/i18n"
	"fiber-wes/notify"
	"fiber-wes/repositories"
	"fiber-wes/werrors"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// DocumentController exposes one module's document engine over HTTP. The
// same controller type serves every module; Module selects the policy row
// and scopes every query.
type DocumentController struct {
	DB       *gorm.DB
	Module   string
	Notifier notify.Notifier
}

var validate = validator.New()
var catalog = i18n.Default()

func NewDocumentController(module string, notifier notify.Notifier) *DocumentController {
	return &DocumentController{Module: module, Notifier: notifier}
}

func currentUserID(ctx *fiber.Ctx) int {
	if userID, ok := ctx.Locals("userID").(float64); ok {
		return int(userID)
	}
	return 0
}

func respondError(ctx *fiber.Ctx, err error) error {
	e := werrors.From(err)
	locale := ctx.Get("Accept-Language", "en")
	msg := catalog.Resolve(locale, e.Key, e.Args...)
	return ctx.Status(werrors.HTTPStatus(e)).JSON(fiber.Map{
		"error":      msg,
		"message":    msg,
		"code":       string(e.Code),
		"diagnostic": e.Diagnostic,
	})
}

// CreateBulk persists a whole document graph sent with client correlation
// keys and returns the new header id.
func (c *DocumentController) CreateBulk(ctx *fiber.Ctx) error {
	var input repositories.BulkCreateInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewCorrelationRepository(c.DB)
	headerID, err := repo.BulkCreate(c.Module, currentUserID(ctx), input)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Document created successfully",
		"data":    fiber.Map{"header_id": headerID},
	})
}

// ScanBarcode allocates one scan to the best matching line and returns the
// resolved import line.
func (c *DocumentController) ScanBarcode(ctx *fiber.Ctx) error {
	var input repositories.ScanInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewAllocationRepository(c.DB)
	importLine, err := repo.AddBarcode(c.Module, currentUserID(ctx), input)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Scan item success",
		"data":    importLine,
	})
}

// Complete validates collected quantities against the module policy and
// marks the document completed. Notification goes out only after the
// transaction has committed.
func (c *DocumentController) Complete(ctx *fiber.Ctx) error {
	headerID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	repo := repositories.NewReconciliationRepository(c.DB)
	header, err := repo.Complete(c.Module, currentUserID(ctx), headerID)
	if err != nil {
		return respondError(ctx, err)
	}

	c.Notifier.Publish([]notify.Notification{{
		ModuleCode: c.Module,
		HeaderID:   header.ID,
		DocNo:      header.DocNo,
		Event:      "completed",
		Message:    catalog.Resolve("en", "completed_notification", header.DocNo),
	}})

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Document completed successfully",
		"data":    true,
	})
}

// SetApproval decides a pending approval (approve or reject, exactly once).
func (c *DocumentController) SetApproval(ctx *fiber.Ctx) error {
	headerID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	var input struct {
		Approved bool `json:"approved"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	repo := repositories.NewReconciliationRepository(c.DB)
	header, err := repo.SetApproval(c.Module, currentUserID(ctx), headerID, input.Approved)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Approval updated successfully",
		"data":    header,
	})
}

func (c *DocumentController) DeleteRoute(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	repo := repositories.NewCascadeRepository(c.DB)
	if err := repo.DeleteRoute(c.Module, currentUserID(ctx), uint(id)); err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (c *DocumentController) DeleteImportLine(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	repo := repositories.NewCascadeRepository(c.DB)
	if err := repo.DeleteImportLine(c.Module, currentUserID(ctx), uint(id)); err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (c *DocumentController) DeleteLine(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	repo := repositories.NewCascadeRepository(c.DB)
	if err := repo.DeleteLine(c.Module, currentUserID(ctx), uint(id)); err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (c *DocumentController) DeleteLineSerial(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	repo := repositories.NewCascadeRepository(c.DB)
	if err := repo.DeleteLineSerial(c.Module, currentUserID(ctx), uint(id)); err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

// GetAllDocuments lists the module's active documents with partner names
// enriched from master data.
func (c *DocumentController) GetAllDocuments(ctx *fiber.Ctx) error {
	repo := repositories.NewDocumentRepository(c.DB)
	list, err := repo.GetAllDocuments(c.Module)
	if err != nil {
		return respondError(ctx, err)
	}

	list, err = repositories.NewEnrichmentRepository(c.DB).EnrichPartnerNames(list)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": list})
}

func (c *DocumentController) GetDocumentByID(ctx *fiber.Ctx) error {
	headerID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	repo := repositories.NewDocumentRepository(c.DB)
	detail, err := repo.GetDocumentDetail(c.Module, headerID)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": detail})
}

func (c *DocumentController) GetRoutesByImportLine(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	repo := repositories.NewDocumentRepository(c.DB)
	routes, err := repo.GetRoutesByImportLine(c.Module, uint(id))
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": routes})
}

// ExportReconciliation streams the expected-vs-collected report of one
// document as an xlsx file.
func (c *DocumentController) ExportReconciliation(ctx *fiber.Ctx) error {
	headerID, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	repo := repositories.NewReportRepository(c.DB)
	rows, err := repo.ReconciliationRows(c.Module, headerID)
	if err != nil {
		return respondError(ctx, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	headers := []string{"Line ID", "Stock Code", "Yap Code", "Unit", "Expected", "Collected", "Difference"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for i, row := range rows {
		values := []interface{}{row.LineID, row.StockCode, row.YapCode, row.Unit, row.Expected, row.Collected, row.Difference}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return respondError(ctx, werrors.Wrap(err, werrors.KeyInternalError))
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reconciliation_%d.xlsx"`, headerID))
	return ctx.Send(buf.Bytes())
}
