package handlers

import (
	"github.com/anjiri1684/assessment_engine/database"
	"github.com/anjiri1684/assessment_engine/models"
	"github.com/anjiri1684/assessment_engine/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// StudentListAssessments shows published assessments without their question
// banks.
func StudentListAssessments(c *fiber.Ctx) error {
	var assessments []models.Assessment
	database.DB.
		Select("id", "title", "description", "total_marks", "passing_marks",
			"duration_minutes", "max_attempts", "created_at").
		Where("is_published = ?", true).
		Order("created_at DESC").
		Find(&assessments)
	return c.JSON(assessments)
}

func StartAttempt(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assessment id"})
	}

	sub, resumed, err := attempts.Start(assessmentID, userID)
	if err != nil {
		return serviceError(c, err)
	}

	view, err := attempts.View(sub.ID, userID)
	if err != nil {
		return serviceError(c, err)
	}

	status := fiber.StatusCreated
	if resumed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"resumed": resumed,
		"attempt": view,
	})
}

func GetAttempt(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	submissionID, err := uuid.Parse(c.Params("submissionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission id"})
	}

	view, err := attempts.View(submissionID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(view)
}

func SaveAnswer(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	submissionID, err := uuid.Parse(c.Params("submissionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission id"})
	}
	questionID, err := uuid.Parse(c.Params("questionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid question id"})
	}

	var payload services.AnswerPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	answer, err := attempts.SaveAnswer(submissionID, questionID, userID, payload)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(answer)
}

type SubmitAttemptRequest struct {
	// Answers entered just before submitting ride along so a slow autosave
	// cannot lose them.
	Answers []services.PendingAnswer `json:"answers"`
}

func SubmitAttempt(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	submissionID, err := uuid.Parse(c.Params("submissionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission id"})
	}

	var req SubmitAttemptRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
		}
	}

	sub, err := attempts.Submit(submissionID, userID, req.Answers)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":     "Attempt submitted",
		"submission":  sub,
		"total_score": sub.TotalScore,
		"percentage":  sub.Percentage,
		"passed":      sub.Passed,
	})
}

func GetTimeRemaining(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	submissionID, err := uuid.Parse(c.Params("submissionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission id"})
	}

	remaining, err := attempts.TimeRemaining(submissionID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"remaining_seconds": remaining})
}

func GetResult(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	submissionID, err := uuid.Parse(c.Params("submissionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission id"})
	}

	result, err := attempts.Result(submissionID, userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(result)
}
