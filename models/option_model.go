package models

import "github.com/google/uuid"

type Option struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Position   int       `gorm:"not null;default:0" json:"position"`

	// Never serialized toward learners; the delivery handlers strip options
	// down to LearnerOption before rendering.
	IsCorrect bool `gorm:"not null;default:false" json:"is_correct"`
}

// LearnerOption is the option shape exposed during delivery, with the
// answer key withheld.
type LearnerOption struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"text"`
}
