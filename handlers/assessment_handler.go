package handlers

import (
	"github.com/anjiri1684/assessment_engine/database"
	"github.com/anjiri1684/assessment_engine/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// editLocked refuses mutations to an assessment whose delivery has begun.
// Editing questions or options once submissions exist would dangle
// selected_option_id on live answers and scramble frozen option orders.
func editLocked(c *fiber.Ctx, assessmentID uuid.UUID) (bool, error) {
	locked, err := attempts.DeliveryLocked(assessmentID)
	if err != nil {
		return true, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong"})
	}
	if locked {
		return true, c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Assessment has submissions and can no longer be edited"})
	}
	return false, nil
}

type AssessmentRequest struct {
	Title              string  `json:"title" validate:"required"`
	Description        string  `json:"description"`
	TotalMarks         float64 `json:"total_marks" validate:"required,gt=0"`
	PassingMarks       float64 `json:"passing_marks" validate:"gte=0"`
	DurationMinutes    *int    `json:"duration_minutes" validate:"omitempty,gt=0"`
	MaxAttempts        int     `json:"max_attempts" validate:"gte=0"`
	RandomizeQuestions bool    `json:"randomize_questions"`
	RandomizeOptions   bool    `json:"randomize_options"`
	AllowResume        bool    `json:"allow_resume"`
	ShowCorrectAnswers bool    `json:"show_correct_answers"`
	IsPublished        bool    `json:"is_published"`
}

func CreateAssessment(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req AssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.PassingMarks > req.TotalMarks {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Passing marks cannot exceed total marks"})
	}

	assessment := models.Assessment{
		Title:              req.Title,
		Description:        req.Description,
		TotalMarks:         req.TotalMarks,
		PassingMarks:       req.PassingMarks,
		DurationMinutes:    req.DurationMinutes,
		MaxAttempts:        req.MaxAttempts,
		RandomizeQuestions: req.RandomizeQuestions,
		RandomizeOptions:   req.RandomizeOptions,
		AllowResume:        req.AllowResume,
		ShowCorrectAnswers: req.ShowCorrectAnswers,
		IsPublished:        req.IsPublished,
		CreatedBy:          userID,
	}
	if err := database.DB.Create(&assessment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create assessment"})
	}

	return c.Status(fiber.StatusCreated).JSON(assessment)
}

func ListAssessments(c *fiber.Ctx) error {
	var assessments []models.Assessment
	database.DB.Order("created_at DESC").Find(&assessments)
	return c.JSON(assessments)
}

func GetAssessment(c *fiber.Ctx) error {
	assessmentID := c.Params("assessmentId")
	var assessment models.Assessment
	err := database.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.position ASC") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("options.position ASC") }).
		First(&assessment, "id = ?", assessmentID).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}
	return c.JSON(assessment)
}

func UpdateAssessment(c *fiber.Ctx) error {
	assessmentID := c.Params("assessmentId")
	var assessment models.Assessment
	if err := database.DB.First(&assessment, "id = ?", assessmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}
	if locked, resp := editLocked(c, assessment.ID); locked {
		return resp
	}

	var req AssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.PassingMarks > req.TotalMarks {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Passing marks cannot exceed total marks"})
	}

	// Edits never rescale existing submissions; their scores stay as graded.
	assessment.Title = req.Title
	assessment.Description = req.Description
	assessment.TotalMarks = req.TotalMarks
	assessment.PassingMarks = req.PassingMarks
	assessment.DurationMinutes = req.DurationMinutes
	assessment.MaxAttempts = req.MaxAttempts
	assessment.RandomizeQuestions = req.RandomizeQuestions
	assessment.RandomizeOptions = req.RandomizeOptions
	assessment.AllowResume = req.AllowResume
	assessment.ShowCorrectAnswers = req.ShowCorrectAnswers
	assessment.IsPublished = req.IsPublished
	database.DB.Save(&assessment)

	return c.JSON(assessment)
}

func DeleteAssessment(c *fiber.Ctx) error {
	assessmentID := c.Params("assessmentId")

	var count int64
	database.DB.Model(&models.Submission{}).Where("assessment_id = ?", assessmentID).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Assessment has submissions and cannot be deleted"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var questionIDs []string
		tx.Model(&models.Question{}).Where("assessment_id = ?", assessmentID).Pluck("id", &questionIDs)
		if len(questionIDs) > 0 {
			if err := tx.Delete(&models.Option{}, "question_id IN ?", questionIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Question{}, "assessment_id = ?", assessmentID).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Assessment{}, "id = ?", assessmentID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete assessment"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type OptionRequest struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionRequest struct {
	Type          string          `json:"type" validate:"required,oneof=mcq true_false descriptive case_study fill_blank file_upload"`
	Text          string          `json:"text" validate:"required"`
	CaseStudyText *string         `json:"case_study_text"`
	Marks         float64         `json:"marks" validate:"required,gt=0"`
	Position      int             `json:"position" validate:"gte=0"`
	Options       []OptionRequest `json:"options" validate:"dive"`
}

func (r *QuestionRequest) validateOptions() string {
	q := models.Question{Type: r.Type}
	if !q.HasOptions() {
		if len(r.Options) > 0 {
			return "Options are only allowed on choice questions"
		}
		return ""
	}
	if len(r.Options) < 2 {
		return "Choice questions need at least two options"
	}
	correct := 0
	for _, opt := range r.Options {
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return "Choice questions need exactly one correct option"
	}
	return ""
}

func AddQuestion(c *fiber.Ctx) error {
	assessmentID := c.Params("assessmentId")
	var assessment models.Assessment
	if err := database.DB.First(&assessment, "id = ?", assessmentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Assessment not found"})
	}
	if locked, resp := editLocked(c, assessment.ID); locked {
		return resp
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if msg := req.validateOptions(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	question := models.Question{
		AssessmentID:  assessment.ID,
		Type:          req.Type,
		Text:          req.Text,
		CaseStudyText: req.CaseStudyText,
		Marks:         req.Marks,
		Position:      req.Position,
	}
	for i, opt := range req.Options {
		question.Options = append(question.Options, models.Option{
			Text:      opt.Text,
			IsCorrect: opt.IsCorrect,
			Position:  i,
		})
	}

	if err := database.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create question"})
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

func UpdateQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if locked, resp := editLocked(c, question.AssessmentID); locked {
		return resp
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if msg := req.validateOptions(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		question.Type = req.Type
		question.Text = req.Text
		question.CaseStudyText = req.CaseStudyText
		question.Marks = req.Marks
		question.Position = req.Position
		if err := tx.Save(&question).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Option{}, "question_id = ?", question.ID).Error; err != nil {
			return err
		}
		for i, opt := range req.Options {
			option := models.Option{
				QuestionID: question.ID,
				Text:       opt.Text,
				IsCorrect:  opt.IsCorrect,
				Position:   i,
			}
			if err := tx.Create(&option).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update question"})
	}

	database.DB.Preload("Options").First(&question, "id = ?", question.ID)
	return c.JSON(question)
}

func DeleteQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if locked, resp := editLocked(c, question.AssessmentID); locked {
		return resp
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Option{}, "question_id = ?", questionID).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Question{}, "id = ?", questionID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete question"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
