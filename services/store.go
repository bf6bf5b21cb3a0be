package services

import (
	"time"

	"github.com/anjiri1684/assessment_engine/models"
	"github.com/google/uuid"
)

// Store is the persistence boundary the engine runs against. The production
// implementation is database.GormStore; tests substitute an in-memory fake.
type Store interface {
	GetAssessment(id uuid.UUID) (*models.Assessment, error)
	GetUser(id uuid.UUID) (*models.User, error)

	// ListQuestions returns the assessment's questions with nested options,
	// in authored position order.
	ListQuestions(assessmentID uuid.UUID) ([]models.Question, error)
	GetQuestion(id uuid.UUID) (*models.Question, error)

	// FindActiveSubmission returns the learner's in_progress submission for
	// the assessment, or (nil, nil) when there is none.
	FindActiveSubmission(assessmentID, userID uuid.UUID) (*models.Submission, error)
	CountSubmissions(assessmentID, userID uuid.UUID) (int64, error)

	// CountAssessmentSubmissions counts submissions across all learners,
	// backing the read-only lock on question edits once delivery has begun.
	CountAssessmentSubmissions(assessmentID uuid.UUID) (int64, error)
	CreateSubmission(sub *models.Submission) error
	GetSubmission(id uuid.UUID) (*models.Submission, error)
	UpdateSubmission(id uuid.UUID, fields map[string]interface{}) error

	// TransitionSubmission performs a guarded status change: the update is
	// applied only if the row's status still equals from, and the return
	// value reports whether this caller won the transition. Both submit
	// triggers funnel through this single check-and-set.
	TransitionSubmission(id uuid.UUID, from, to string, fields map[string]interface{}) (bool, error)

	// UpsertAnswer writes the answer keyed by (submission_id, question_id),
	// overwriting the payload of an existing row instead of duplicating it.
	UpsertAnswer(answer *models.Answer) error
	GetAnswer(id uuid.UUID) (*models.Answer, error)
	UpdateAnswer(id uuid.UUID, fields map[string]interface{}) error
	ListAnswers(submissionID uuid.UUID) ([]models.Answer, error)

	ListSubmissions(assessmentID uuid.UUID, statuses []string) ([]models.Submission, error)

	// ListOverdueSubmissions returns timed in_progress submissions whose
	// deadline has passed as of now. Used by the deadline sweep.
	ListOverdueSubmissions(now time.Time) ([]models.Submission, error)

	// ListStaleUntimed returns untimed in_progress submissions started
	// before the cutoff. Used by the abandoned sweep.
	ListStaleUntimed(cutoff time.Time) ([]models.Submission, error)

	// ListInterruptedGrading returns submitted submissions whose submit-time
	// grading did not run to completion: either an auto-gradable answer is
	// still unmarked, or every answer carries a mark but the graded
	// transition never landed. Used by the grading recovery sweep.
	ListInterruptedGrading() ([]models.Submission, error)
}
