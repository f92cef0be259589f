package routes

import (
	"fiber-wes/config"
	"fiber-wes/controllers"
	"fiber-wes/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authController := &controllers.AuthController{}

	api := app.Group(config.MAIN_ROUTES + "/auth")
	api.Use(middleware.InjectDBMiddleware(authController))

	api.Post("/login", authController.Login)
}
