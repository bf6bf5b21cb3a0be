package models

import (
	"time"

	"github.com/google/uuid"
)

type Answer struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SubmissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submission_question" json:"submission_id"`
	QuestionID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_submission_question" json:"question_id"`

	// Exactly one of these is set, per the question type.
	SelectedOptionID *uuid.UUID `gorm:"type:uuid" json:"selected_option_id,omitempty"`
	TextAnswer       *string    `gorm:"type:text" json:"text_answer,omitempty"`
	FileURL          *string    `gorm:"size:512" json:"file_url,omitempty"`

	IsCorrect      *bool      `json:"is_correct"`
	MarksObtained  *float64   `json:"marks_obtained"`
	GraderFeedback *string    `gorm:"type:text" json:"grader_feedback,omitempty"`
	GradedBy       *uuid.UUID `gorm:"type:uuid" json:"graded_by,omitempty"`
	GradedAt       *time.Time `json:"graded_at"`

	Submission Submission `gorm:"foreignkey:SubmissionID" json:"-"`
	Question   Question   `gorm:"foreignkey:QuestionID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Graded reports whether a mark has been awarded, by the auto-grader or a
// human grader.
func (a *Answer) Graded() bool {
	return a.MarksObtained != nil
}
