package routes

import (
	"fiber-wes/config"
	"fiber-wes/controllers"
	"fiber-wes/middleware"
	"fiber-wes/notify"

	"github.com/gofiber/fiber/v2"
)

// SetupDocumentRoutes registers the document engine for every configured
// module under its own path prefix.
func SetupDocumentRoutes(app *fiber.App, notifier notify.Notifier) {
	for _, m := range config.Modules {
		documentController := controllers.NewDocumentController(m.Code, notifier)

		api := app.Group(config.MAIN_ROUTES+"/"+m.Path, middleware.AuthMiddleware)
		api.Use(middleware.InjectDBMiddleware(documentController))

		api.Post("/bulk", documentController.CreateBulk)
		api.Post("/scan", documentController.ScanBarcode)
		api.Post("/complete/:id", documentController.Complete)
		api.Post("/approval/:id", documentController.SetApproval)

		api.Get("/", documentController.GetAllDocuments)
		api.Get("/report/:id", documentController.ExportReconciliation)
		api.Get("/import-line/:id/routes", documentController.GetRoutesByImportLine)
		api.Get("/:id", documentController.GetDocumentByID)

		api.Delete("/route/:id", documentController.DeleteRoute)
		api.Delete("/import-line/:id", documentController.DeleteImportLine)
		api.Delete("/line/:id", documentController.DeleteLine)
		api.Delete("/line-serial/:id", documentController.DeleteLineSerial)
	}
}
