package main

import (
	"fmt"
	"log"

	"fiber-wes/config"
	"fiber-wes/controllers/idgen"
	"fiber-wes/database"
	"fiber-wes/notify"
	"fiber-wes/routes"

	"github.com/gofiber/fiber/v2"
)

func main() {
	config.LoadConfig()

	app := fiber.New()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	database.SetDefault(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	idgen.Init()
	database.RunSeeders(db)

	var notifier notify.Notifier = notify.NoopNotifier{}
	if config.SMTPHost != "" {
		notifier = notify.NewMailNotifier(config.SMTPHost, config.SMTPPort,
			config.SMTPUser, config.SMTPPassword, config.MailFrom, config.MailTo)
	}

	config.SetupCORS(app)

	routes.SetupAuthRoutes(app)
	routes.SetupDocumentRoutes(app, notifier)

	port := config.APP_PORT
	fmt.Println("🚀 Server running on port " + port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
