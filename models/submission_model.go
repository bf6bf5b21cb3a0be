package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	SubmissionInProgress = "in_progress"
	SubmissionSubmitted  = "submitted"
	SubmissionGraded     = "graded"
	SubmissionAbandoned  = "abandoned"
)

type Submission struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assessment_user_attempt" json:"assessment_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assessment_user_attempt" json:"user_id"`

	AttemptNumber int    `gorm:"not null;uniqueIndex:idx_assessment_user_attempt" json:"attempt_number"`
	Status        string `gorm:"size:20;not null;default:'in_progress';index" json:"status"`

	// Frozen at attempt creation: the randomized question sequence, stored as
	// a JSON array of question IDs so a resumed attempt replays the same order.
	QuestionOrder string `gorm:"type:text;not null" json:"-"`

	// Seed from which per-question option order is reconstructed on resume.
	ShuffleSeed int64 `gorm:"not null;default:0" json:"-"`

	StartedAt        time.Time  `gorm:"not null" json:"started_at"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	TimeSpentSeconds int        `gorm:"not null;default:0" json:"time_spent_seconds"`

	TotalScore       float64    `gorm:"not null;default:0" json:"total_score"`
	Percentage       float64    `gorm:"not null;default:0" json:"percentage"`
	Passed           bool       `gorm:"not null;default:false" json:"passed"`
	ManuallyGradedAt *time.Time `json:"manually_graded_at"`

	Assessment Assessment `gorm:"foreignkey:AssessmentID" json:"-"`
	User       User       `gorm:"foreignkey:UserID" json:"-"`
	Answers    []Answer   `gorm:"foreignkey:SubmissionID" json:"answers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Submission) GetQuestionOrder() ([]uuid.UUID, error) {
	var order []uuid.UUID
	if err := json.Unmarshal([]byte(s.QuestionOrder), &order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Submission) SetQuestionOrder(order []uuid.UUID) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return err
	}
	s.QuestionOrder = string(raw)
	return nil
}

// Open reports whether the learner may still write answers.
func (s *Submission) Open() bool {
	return s.Status == SubmissionInProgress
}
