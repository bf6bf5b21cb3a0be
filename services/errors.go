package services

import "errors"

// Engine error taxonomy. Handlers map these onto HTTP statuses; everything
// else bubbles up as an internal error.
var (
	// ErrAttemptLimitExceeded is returned when a learner starts an attempt
	// after exhausting the assessment's max_attempts.
	ErrAttemptLimitExceeded = errors.New("attempt limit for this assessment has been reached")

	// ErrSubmissionLocked is returned on answer writes against a submission
	// that is no longer in progress (stale tab after an auto-submit).
	ErrSubmissionLocked = errors.New("this attempt has already been submitted")

	// ErrMarksOutOfRange is returned when a grader awards marks outside
	// [0, question.marks].
	ErrMarksOutOfRange = errors.New("marks must be between zero and the question's maximum")

	// ErrEmptyQuestionBank is returned when an attempt is started against an
	// assessment with no questions. A configuration error, not a learner one.
	ErrEmptyQuestionBank = errors.New("assessment has no questions")

	// ErrSubmissionNotGradable is returned when manual grading is attempted
	// against a submission still in progress.
	ErrSubmissionNotGradable = errors.New("submission has not been submitted yet")

	// ErrInvalidAnswerPayload is returned when the saved payload does not
	// match the question type (e.g. free text against an mcq).
	ErrInvalidAnswerPayload = errors.New("answer payload does not match the question type")

	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAnswerNotFound     = errors.New("answer not found")
)
