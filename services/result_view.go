package services

import (
	"github.com/anjiri1684/assessment_engine/models"
	"github.com/google/uuid"
)

// ResultQuestion is one graded (or pending) line of a learner's result.
type ResultQuestion struct {
	QuestionID      uuid.UUID  `json:"question_id"`
	Text            string     `json:"text"`
	Type            string     `json:"type"`
	Marks           float64    `json:"marks"`
	MarksObtained   *float64   `json:"marks_obtained"`
	IsCorrect       *bool      `json:"is_correct"`
	GraderFeedback  *string    `json:"grader_feedback,omitempty"`
	CorrectOptionID *uuid.UUID `json:"correct_option_id,omitempty"`
}

type ResultView struct {
	Submission *models.Submission `json:"submission"`

	// True until every answer carries a mark; the score shown meanwhile is
	// provisional, with ungraded answers contributing zero.
	Provisional bool             `json:"provisional"`
	Questions   []ResultQuestion `json:"questions"`
}

// Result renders the learner's score for a submitted or graded attempt.
// Correct answers are revealed only when the assessment opts in and grading
// has finished.
func (s *AttemptService) Result(submissionID, userID uuid.UUID) (*ResultView, error) {
	sub, err := s.ownedSubmission(submissionID, userID)
	if err != nil {
		return nil, err
	}
	if sub.Status == models.SubmissionInProgress {
		return nil, ErrSubmissionNotGradable
	}
	assessment, err := s.store.GetAssessment(sub.AssessmentID)
	if err != nil {
		return nil, err
	}
	questions, err := s.store.ListQuestions(sub.AssessmentID)
	if err != nil {
		return nil, err
	}
	answers, err := s.store.ListAnswers(sub.ID)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[uuid.UUID]models.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	view := &ResultView{Submission: sub}
	reveal := assessment.ShowCorrectAnswers && sub.Status == models.SubmissionGraded
	for _, q := range questions {
		rq := ResultQuestion{
			QuestionID: q.ID,
			Text:       q.Text,
			Type:       q.Type,
			Marks:      q.Marks,
		}
		if a, ok := byQuestion[q.ID]; ok {
			rq.MarksObtained = a.MarksObtained
			rq.IsCorrect = a.IsCorrect
			rq.GraderFeedback = a.GraderFeedback
			if !a.Graded() {
				view.Provisional = true
			}
		}
		if reveal && q.HasOptions() {
			for _, opt := range q.Options {
				if opt.IsCorrect {
					id := opt.ID
					rq.CorrectOptionID = &id
					break
				}
			}
		}
		view.Questions = append(view.Questions, rq)
	}
	return view, nil
}
