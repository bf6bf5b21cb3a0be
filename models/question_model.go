package models

import "github.com/google/uuid"

const (
	QuestionTypeMCQ         = "mcq"
	QuestionTypeTrueFalse   = "true_false"
	QuestionTypeDescriptive = "descriptive"
	QuestionTypeCaseStudy   = "case_study"
	QuestionTypeFillBlank   = "fill_blank"
	QuestionTypeFileUpload  = "file_upload"
)

var QuestionTypes = []string{
	QuestionTypeMCQ,
	QuestionTypeTrueFalse,
	QuestionTypeDescriptive,
	QuestionTypeCaseStudy,
	QuestionTypeFillBlank,
	QuestionTypeFileUpload,
}

type Question struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AssessmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Type         string    `gorm:"size:50;not null" json:"type"`
	Text         string    `gorm:"type:text;not null" json:"text"`

	// Narrative shown alongside case_study questions.
	CaseStudyText *string `gorm:"type:text" json:"case_study_text,omitempty"`

	Marks    float64 `gorm:"not null" json:"marks"`
	Position int     `gorm:"not null;default:0" json:"position"`

	Options []Option `gorm:"foreignkey:QuestionID" json:"options,omitempty"`
}

// AutoGradable is derived from the question type so the two can never drift
// apart. Only exact-match choice types qualify.
func (q *Question) AutoGradable() bool {
	return q.Type == QuestionTypeMCQ || q.Type == QuestionTypeTrueFalse
}

// HasOptions reports whether the type carries an option list.
func (q *Question) HasOptions() bool {
	return q.Type == QuestionTypeMCQ || q.Type == QuestionTypeTrueFalse
}

// TakesText reports whether the answer is free text.
func (q *Question) TakesText() bool {
	switch q.Type {
	case QuestionTypeDescriptive, QuestionTypeCaseStudy, QuestionTypeFillBlank:
		return true
	}
	return false
}

func ValidQuestionType(t string) bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}
