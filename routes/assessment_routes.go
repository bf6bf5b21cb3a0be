package routes

import (
	"github.com/anjiri1684/assessment_engine/handlers"
	"github.com/anjiri1684/assessment_engine/middleware"
	"github.com/gofiber/fiber/v2"
)

func AssessmentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	assessments := api.Group("/instructor/assessments", middleware.Protected(), middleware.InstructorRequired())
	assessments.Post("", handlers.CreateAssessment)
	assessments.Get("", handlers.ListAssessments)
	assessments.Get("/:assessmentId", handlers.GetAssessment)
	assessments.Put("/:assessmentId", handlers.UpdateAssessment)
	assessments.Delete("/:assessmentId", handlers.DeleteAssessment)

	assessments.Post("/:assessmentId/questions", handlers.AddQuestion)
	assessments.Put("/questions/:questionId", handlers.UpdateQuestion)
	assessments.Delete("/questions/:questionId", handlers.DeleteQuestion)
}
