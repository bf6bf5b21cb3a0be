package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ListWorkbenchSubmissions(c *fiber.Ctx) error {
	assessmentID, err := uuid.Parse(c.Params("assessmentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid assessment id"})
	}

	subs, err := grader.WorkbenchSubmissions(assessmentID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(subs)
}

func ListPendingAnswers(c *fiber.Ctx) error {
	submissionID, err := uuid.Parse(c.Params("submissionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission id"})
	}

	pending, err := grader.PendingAnswers(submissionID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(pending)
}

type GradeRequest struct {
	Marks    float64 `json:"marks" validate:"gte=0"`
	Feedback *string `json:"feedback"`
}

func GradeAnswer(c *fiber.Ctx) error {
	graderID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	answerID, err := uuid.Parse(c.Params("answerId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid answer id"})
	}

	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	answer, err := grader.Grade(answerID, graderID, req.Marks, req.Feedback)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(answer)
}
