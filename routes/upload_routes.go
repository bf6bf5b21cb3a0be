package routes

import (
	"github.com/anjiri1684/assessment_engine/handlers"
	"github.com/anjiri1684/assessment_engine/middleware"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	uploads := api.Group("/uploads", middleware.Protected())
	uploads.Get("/signature", handlers.GenerateUploadSignature)
}
