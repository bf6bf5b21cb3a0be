package handlers

import (
	"errors"

	"github.com/anjiri1684/assessment_engine/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var validate = validator.New()

var (
	attempts *services.AttemptService
	grader   *services.Grader
)

// Init wires the engine services into the handler layer. Called once from
// main before routes are registered.
func Init(attemptSvc *services.AttemptService, graderSvc *services.Grader) {
	attempts = attemptSvc
	grader = graderSvc
}

// callerID reads the authenticated user's ID out of the JWT. Identity is
// always passed explicitly into the services from here; nothing below the
// handler layer reads ambient auth state.
func callerID(c *fiber.Ctx) (uuid.UUID, error) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	raw, _ := claims["user_id"].(string)
	return uuid.Parse(raw)
}

// serviceError maps the engine's error taxonomy onto HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAttemptLimitExceeded):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSubmissionLocked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrMarksOutOfRange),
		errors.Is(err, services.ErrInvalidAnswerPayload),
		errors.Is(err, services.ErrSubmissionNotGradable):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrEmptyQuestionBank):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAssessmentNotFound),
		errors.Is(err, services.ErrSubmissionNotFound),
		errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrAnswerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong"})
}
