package database

import (
	"errors"
	"time"

	"github.com/anjiri1684/assessment_engine/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed implementation of the engine's
// persistence boundary (services.Store).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetAssessment(id uuid.UUID) (*models.Assessment, error) {
	var assessment models.Assessment
	err := s.db.First(&assessment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (s *GormStore) GetUser(id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) ListQuestions(assessmentID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	err := s.db.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("options.position ASC") }).
		Where("assessment_id = ?", assessmentID).
		Order("position ASC").
		Find(&questions).Error
	return questions, err
}

func (s *GormStore) GetQuestion(id uuid.UUID) (*models.Question, error) {
	var question models.Question
	err := s.db.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("options.position ASC") }).
		First(&question, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *GormStore) FindActiveSubmission(assessmentID, userID uuid.UUID) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.
		Where("assessment_id = ? AND user_id = ? AND status = ?",
			assessmentID, userID, models.SubmissionInProgress).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *GormStore) CountSubmissions(assessmentID, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Submission{}).
		Where("assessment_id = ? AND user_id = ?", assessmentID, userID).
		Count(&count).Error
	return count, err
}

func (s *GormStore) CountAssessmentSubmissions(assessmentID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Submission{}).
		Where("assessment_id = ?", assessmentID).
		Count(&count).Error
	return count, err
}

func (s *GormStore) CreateSubmission(sub *models.Submission) error {
	return s.db.Create(sub).Error
}

func (s *GormStore) GetSubmission(id uuid.UUID) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.First(&sub, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *GormStore) UpdateSubmission(id uuid.UUID, fields map[string]interface{}) error {
	return s.db.Model(&models.Submission{}).Where("id = ?", id).Updates(fields).Error
}

// TransitionSubmission is the guarded check-and-set both submit triggers race
// on: the update lands only if the status column still holds from, and the
// row count tells the caller whether it won.
func (s *GormStore) TransitionSubmission(id uuid.UUID, from, to string, fields map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}
	result := s.db.Model(&models.Submission{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpsertAnswer writes one answer per (submission, question): a repeat write
// for the same pair overwrites the payload instead of adding a row, which is
// what makes autosave-per-keystroke safe.
func (s *GormStore) UpsertAnswer(answer *models.Answer) error {
	return s.db.Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "submission_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"selected_option_id", "text_answer", "file_url", "updated_at",
			}),
		},
		clause.Returning{},
	).Create(answer).Error
}

func (s *GormStore) GetAnswer(id uuid.UUID) (*models.Answer, error) {
	var answer models.Answer
	err := s.db.First(&answer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (s *GormStore) UpdateAnswer(id uuid.UUID, fields map[string]interface{}) error {
	return s.db.Model(&models.Answer{}).Where("id = ?", id).Updates(fields).Error
}

func (s *GormStore) ListAnswers(submissionID uuid.UUID) ([]models.Answer, error) {
	var answers []models.Answer
	err := s.db.
		Preload("Question").
		Preload("Question.Options").
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&answers).Error
	return answers, err
}

func (s *GormStore) ListSubmissions(assessmentID uuid.UUID, statuses []string) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.
		Preload("User").
		Where("assessment_id = ? AND status IN ?", assessmentID, statuses).
		Order("submitted_at ASC").
		Find(&subs).Error
	return subs, err
}

func (s *GormStore) ListOverdueSubmissions(now time.Time) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.
		Joins("JOIN assessments ON assessments.id = submissions.assessment_id").
		Where("submissions.status = ? AND assessments.duration_minutes IS NOT NULL AND submissions.started_at + make_interval(mins => assessments.duration_minutes) <= ?",
			models.SubmissionInProgress, now).
		Find(&subs).Error
	return subs, err
}

func (s *GormStore) ListStaleUntimed(cutoff time.Time) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.
		Joins("JOIN assessments ON assessments.id = submissions.assessment_id").
		Where("submissions.status = ? AND assessments.duration_minutes IS NULL AND submissions.started_at < ?",
			models.SubmissionInProgress, cutoff).
		Find(&subs).Error
	return subs, err
}

func (s *GormStore) ListInterruptedGrading() ([]models.Submission, error) {
	var subs []models.Submission
	autoGradable := []string{models.QuestionTypeMCQ, models.QuestionTypeTrueFalse}
	err := s.db.
		Where("status = ?", models.SubmissionSubmitted).
		Where(`EXISTS (
			SELECT 1 FROM answers
			JOIN questions ON questions.id = answers.question_id
			WHERE answers.submission_id = submissions.id
			  AND answers.marks_obtained IS NULL
			  AND questions.type IN ?)
		OR NOT EXISTS (
			SELECT 1 FROM answers
			WHERE answers.submission_id = submissions.id
			  AND answers.marks_obtained IS NULL)`, autoGradable).
		Find(&subs).Error
	return subs, err
}
