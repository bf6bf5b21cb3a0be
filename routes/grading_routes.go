package routes

import (
	"github.com/anjiri1684/assessment_engine/handlers"
	"github.com/anjiri1684/assessment_engine/middleware"
	"github.com/gofiber/fiber/v2"
)

func GradingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	grading := api.Group("/instructor/grading", middleware.Protected(), middleware.InstructorRequired())
	grading.Get("/assessments/:assessmentId/submissions", handlers.ListWorkbenchSubmissions)
	grading.Get("/submissions/:submissionId/pending", handlers.ListPendingAnswers)
	grading.Post("/answers/:answerId/grade", handlers.GradeAnswer)
}
