package routes

import (
	"github.com/anjiri1684/assessment_engine/handlers"
	"github.com/anjiri1684/assessment_engine/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func AttemptRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	assessments := api.Group("/assessments", middleware.Protected())
	assessments.Get("", handlers.StudentListAssessments)
	assessments.Post("/:assessmentId/attempts", handlers.StartAttempt)

	attempts := api.Group("/attempts", middleware.Protected())
	attempts.Get("/:submissionId", handlers.GetAttempt)
	attempts.Put("/:submissionId/answers/:questionId", handlers.SaveAnswer)
	attempts.Post("/:submissionId/submit", handlers.SubmitAttempt)
	attempts.Get("/:submissionId/time", handlers.GetTimeRemaining)
	attempts.Get("/:submissionId/result", handlers.GetResult)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(handlers.ServeWs))
}
