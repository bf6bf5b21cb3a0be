package services

import (
	"time"

	"github.com/anjiri1684/assessment_engine/models"
	"github.com/google/uuid"
)

// Grader computes objective-question marks at submit time, aggregates scores,
// and backs the manual grading workbench.
type Grader struct {
	store  Store
	events EventSink

	// Invoked once when a submission reaches graded (report + email).
	finalize func(*models.Submission)

	now func() time.Time
}

func NewGrader(store Store, events EventSink) *Grader {
	return &Grader{store: store, events: events, now: time.Now}
}

// OnGraded registers a hook run exactly once per submission, when it
// transitions to graded.
func (g *Grader) OnGraded(fn func(*models.Submission)) {
	g.finalize = fn
}

// AutoGradeSubmission scores every answer whose question is auto-gradable:
// is_correct by exact match against the keyed option, marks_obtained either
// full marks or zero. Runs once per submission, inside the submit transition;
// answers already carrying a mark are never touched again.
func (g *Grader) AutoGradeSubmission(submissionID uuid.UUID) error {
	answers, err := g.store.ListAnswers(submissionID)
	if err != nil {
		return err
	}
	now := g.now()
	for _, a := range answers {
		if a.Graded() {
			continue
		}
		// Questions ride along on the answer rows; no per-answer refetch.
		if !a.Question.AutoGradable() {
			// Left null for the workbench.
			continue
		}
		correct := false
		if a.SelectedOptionID != nil {
			for _, opt := range a.Question.Options {
				if opt.IsCorrect && opt.ID == *a.SelectedOptionID {
					correct = true
					break
				}
			}
		}
		marks := 0.0
		if correct {
			marks = a.Question.Marks
		}
		err = g.store.UpdateAnswer(a.ID, map[string]interface{}{
			"is_correct":     correct,
			"marks_obtained": marks,
			"graded_at":      now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Aggregate recomputes the score from the current answer rows. Pure: safe to
// invoke any number of times, it never accumulates. Ungraded answers
// contribute zero, which is what makes the submit-time score provisional.
func Aggregate(assessment *models.Assessment, answers []models.Answer) (total, percentage float64, passed bool) {
	for _, a := range answers {
		if a.MarksObtained != nil {
			total += *a.MarksObtained
		}
	}
	if assessment.TotalMarks > 0 {
		percentage = total / assessment.TotalMarks * 100
	}
	passed = total >= assessment.PassingMarks
	return total, percentage, passed
}

// Rescore recomputes and persists the submission's totals, then applies the
// completeness gate: once every answer carries a mark, a submitted submission
// flips to graded.
func (g *Grader) Rescore(submissionID uuid.UUID) error {
	sub, err := g.store.GetSubmission(submissionID)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubmissionNotFound
	}
	assessment, err := g.store.GetAssessment(sub.AssessmentID)
	if err != nil {
		return err
	}
	answers, err := g.store.ListAnswers(submissionID)
	if err != nil {
		return err
	}

	total, percentage, passed := Aggregate(assessment, answers)
	err = g.store.UpdateSubmission(submissionID, map[string]interface{}{
		"total_score": total,
		"percentage":  percentage,
		"passed":      passed,
	})
	if err != nil {
		return err
	}

	for _, a := range answers {
		if !a.Graded() {
			return nil
		}
	}

	won, err := g.store.TransitionSubmission(submissionID,
		models.SubmissionSubmitted, models.SubmissionGraded,
		map[string]interface{}{"manually_graded_at": g.now()})
	if err != nil {
		return err
	}
	if won {
		graded, err := g.store.GetSubmission(submissionID)
		if err != nil {
			return err
		}
		if g.events != nil {
			g.events.SubmissionEvent(graded.UserID, graded.ID, EventGraded)
		}
		if g.finalize != nil {
			g.finalize(graded)
		}
	}
	return nil
}

// Grade records an instructor's marks and feedback for one answer, then
// re-aggregates. Marks outside [0, question.marks] are rejected before any
// write. Last write wins on repeated grading of the same answer; the rescore
// recomputes from scratch so edits never inflate the total.
func (g *Grader) Grade(answerID, graderID uuid.UUID, marks float64, feedback *string) (*models.Answer, error) {
	answer, err := g.store.GetAnswer(answerID)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, ErrAnswerNotFound
	}
	sub, err := g.store.GetSubmission(answer.SubmissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	if sub.Status != models.SubmissionSubmitted && sub.Status != models.SubmissionGraded {
		return nil, ErrSubmissionNotGradable
	}
	question, err := g.store.GetQuestion(answer.QuestionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}
	if marks < 0 || marks > question.Marks {
		return nil, ErrMarksOutOfRange
	}

	fields := map[string]interface{}{
		"marks_obtained": marks,
		"graded_by":      graderID,
		"graded_at":      g.now(),
	}
	if feedback != nil {
		fields["grader_feedback"] = *feedback
	}
	if err := g.store.UpdateAnswer(answerID, fields); err != nil {
		return nil, err
	}
	if err := g.Rescore(answer.SubmissionID); err != nil {
		return nil, err
	}
	return g.store.GetAnswer(answerID)
}

// RecoverInterrupted re-runs the grading pass for submitted submissions the
// submit transition left behind: a storage failure between the won
// transition and the rescore strands the row as submitted with its
// auto-gradable answers unmarked, and nothing else ever revisits it. Both
// steps are idempotent, so sweeping a row that was graded concurrently is
// harmless.
func (g *Grader) RecoverInterrupted() (int, error) {
	stuck, err := g.store.ListInterruptedGrading()
	if err != nil {
		return 0, err
	}
	recovered := 0
	var firstErr error
	for _, sub := range stuck {
		if err := g.AutoGradeSubmission(sub.ID); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := g.Rescore(sub.ID); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		recovered++
	}
	return recovered, firstErr
}

// WorkbenchSubmissions lists an assessment's submissions awaiting or past
// grading.
func (g *Grader) WorkbenchSubmissions(assessmentID uuid.UUID) ([]models.Submission, error) {
	return g.store.ListSubmissions(assessmentID,
		[]string{models.SubmissionSubmitted, models.SubmissionGraded})
}

// PendingAnswers returns the submission's answers still needing a human mark.
func (g *Grader) PendingAnswers(submissionID uuid.UUID) ([]models.Answer, error) {
	answers, err := g.store.ListAnswers(submissionID)
	if err != nil {
		return nil, err
	}
	pending := make([]models.Answer, 0)
	for _, a := range answers {
		if !a.Graded() {
			pending = append(pending, a)
		}
	}
	return pending, nil
}
