package models

import (
	"time"

	"github.com/google/uuid"
)

type Assessment struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`

	TotalMarks   float64 `gorm:"not null" json:"total_marks"`
	PassingMarks float64 `gorm:"not null" json:"passing_marks"`

	// nil means the assessment is untimed.
	DurationMinutes *int `json:"duration_minutes"`

	// 0 means unlimited attempts.
	MaxAttempts int `gorm:"not null;default:0" json:"max_attempts"`

	RandomizeQuestions bool `gorm:"not null;default:false" json:"randomize_questions"`
	RandomizeOptions   bool `gorm:"not null;default:false" json:"randomize_options"`
	AllowResume        bool `gorm:"not null;default:true" json:"allow_resume"`
	ShowCorrectAnswers bool `gorm:"not null;default:false" json:"show_correct_answers"`

	IsPublished bool      `gorm:"not null;default:false" json:"is_published"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`

	Questions []Question `gorm:"foreignkey:AssessmentID" json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deadline returns the instant a submission started at startedAt must be
// submitted by, or nil for untimed assessments.
func (a *Assessment) Deadline(startedAt time.Time) *time.Time {
	if a.DurationMinutes == nil {
		return nil
	}
	d := startedAt.Add(time.Duration(*a.DurationMinutes) * time.Minute)
	return &d
}
