package services

import (
	"github.com/anjiri1684/assessment_engine/models"
	"github.com/google/uuid"
)

// QuestionBank reads an assessment's ordered question set. It never mutates
// anything.
type QuestionBank struct {
	store Store
}

func NewQuestionBank(store Store) *QuestionBank {
	return &QuestionBank{store: store}
}

// Questions returns the assessment's questions with nested options, in
// authored order. An assessment with no questions is a configuration error:
// a zero-question attempt can never satisfy total_marks, so delivery refuses
// to start.
func (b *QuestionBank) Questions(assessmentID uuid.UUID) ([]models.Question, error) {
	questions, err := b.store.ListQuestions(assessmentID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionBank
	}
	return questions, nil
}
