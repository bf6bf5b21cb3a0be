package services

import (
	"math/rand"
	"time"

	"github.com/anjiri1684/assessment_engine/models"
	"github.com/anjiri1684/assessment_engine/utils"
	"github.com/google/uuid"
)

// AttemptService owns the lifecycle of one learner attempt:
// start → in_progress (with autosave and resume) → submitted. Both submit
// triggers — the learner's action and the deadline sweep — funnel through the
// same guarded transition, so whichever arrives first does the flush-and-grade
// work and the other is a no-op.
type AttemptService struct {
	store  Store
	bank   *QuestionBank
	grader *Grader
	events EventSink

	// Injected clock so deadline math is testable.
	now func() time.Time
}

func NewAttemptService(store Store, grader *Grader, events EventSink) *AttemptService {
	return &AttemptService{
		store:  store,
		bank:   NewQuestionBank(store),
		grader: grader,
		events: events,
		now:    time.Now,
	}
}

// AnswerPayload carries the learner's input for one question. Exactly one
// field is expected per question type.
type AnswerPayload struct {
	SelectedOptionID *uuid.UUID `json:"selected_option_id"`
	TextAnswer       *string    `json:"text_answer"`
	FileURL          *string    `json:"file_url"`
}

// PendingAnswer is an answer carried with the submit call itself, so input
// entered just before submitting is never lost to a delayed autosave.
type PendingAnswer struct {
	QuestionID uuid.UUID     `json:"question_id"`
	Payload    AnswerPayload `json:"payload"`
}

// AttemptQuestion is one question as rendered to the learner: frozen order,
// answer key stripped, any saved answer restored.
type AttemptQuestion struct {
	ID            uuid.UUID              `json:"id"`
	Type          string                 `json:"type"`
	Text          string                 `json:"text"`
	CaseStudyText *string                `json:"case_study_text,omitempty"`
	Marks         float64                `json:"marks"`
	Options       []models.LearnerOption `json:"options,omitempty"`

	SelectedOptionID *uuid.UUID `json:"selected_option_id,omitempty"`
	TextAnswer       *string    `json:"text_answer,omitempty"`
	FileURL          *string    `json:"file_url,omitempty"`
}

type AttemptView struct {
	Submission       *models.Submission `json:"submission"`
	Title            string             `json:"title"`
	DurationMinutes  *int               `json:"duration_minutes"`
	RemainingSeconds *int               `json:"remaining_seconds"`
	Questions        []AttemptQuestion  `json:"questions"`
}

// Start begins a new attempt or resumes an open one.
//
// If an in_progress submission already exists it is returned as-is when the
// assessment allows resume; otherwise it is marked abandoned and a fresh
// attempt is created. New attempts enforce the attempt limit, freeze the
// randomized question order and the option-shuffle seed, and record
// started_at. The bool result reports whether an existing attempt was
// resumed.
func (s *AttemptService) Start(assessmentID, userID uuid.UUID) (*models.Submission, bool, error) {
	assessment, err := s.store.GetAssessment(assessmentID)
	if err != nil {
		return nil, false, err
	}
	if assessment == nil || !assessment.IsPublished {
		// Drafts stay invisible to learners, even by direct ID.
		return nil, false, ErrAssessmentNotFound
	}

	questions, err := s.bank.Questions(assessmentID)
	if err != nil {
		return nil, false, err
	}

	active, err := s.store.FindActiveSubmission(assessmentID, userID)
	if err != nil {
		return nil, false, err
	}
	if active != nil {
		if assessment.AllowResume {
			return active, true, nil
		}
		// Resume is disabled: the stranded attempt must not block a new one.
		if _, err := s.store.TransitionSubmission(active.ID,
			models.SubmissionInProgress, models.SubmissionAbandoned, nil); err != nil {
			return nil, false, err
		}
	}

	count, err := s.store.CountSubmissions(assessmentID, userID)
	if err != nil {
		return nil, false, err
	}
	if assessment.MaxAttempts > 0 && count >= int64(assessment.MaxAttempts) {
		return nil, false, ErrAttemptLimitExceeded
	}

	seed := s.now().UnixNano()
	order := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		order[i] = q.ID
	}
	if assessment.RandomizeQuestions {
		order = utils.Shuffle(order, rand.New(rand.NewSource(seed)))
	}

	sub := &models.Submission{
		AssessmentID:  assessmentID,
		UserID:        userID,
		AttemptNumber: int(count) + 1,
		Status:        models.SubmissionInProgress,
		ShuffleSeed:   seed,
		StartedAt:     s.now(),
	}
	if err := sub.SetQuestionOrder(order); err != nil {
		return nil, false, err
	}
	if err := s.store.CreateSubmission(sub); err != nil {
		return nil, false, err
	}
	return sub, false, nil
}

// View renders the attempt for the learner: questions in the frozen order,
// options in the reconstructed per-submission order, saved answers restored,
// and the remaining time recomputed from the server-recorded start.
func (s *AttemptService) View(submissionID, userID uuid.UUID) (*AttemptView, error) {
	sub, err := s.ownedSubmission(submissionID, userID)
	if err != nil {
		return nil, err
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

	byID := make(map[uuid.UUID]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	saved := make(map[uuid.UUID]models.Answer, len(answers))
	for _, a := range answers {
		saved[a.QuestionID] = a
	}

	order, err := sub.GetQuestionOrder()
	if err != nil {
		return nil, err
	}

	view := &AttemptView{
		Submission:       sub,
		Title:            assessment.Title,
		DurationMinutes:  assessment.DurationMinutes,
		RemainingSeconds: s.remaining(assessment, sub),
	}
	for _, qid := range order {
		q, ok := byID[qid]
		if !ok {
			continue
		}
		aq := AttemptQuestion{
			ID:            q.ID,
			Type:          q.Type,
			Text:          q.Text,
			CaseStudyText: q.CaseStudyText,
			Marks:         q.Marks,
		}
		if q.HasOptions() {
			aq.Options = s.learnerOptions(assessment, sub, &q)
		}
		if a, ok := saved[q.ID]; ok {
			aq.SelectedOptionID = a.SelectedOptionID
			aq.TextAnswer = a.TextAnswer
			aq.FileURL = a.FileURL
		}
		view.Questions = append(view.Questions, aq)
	}
	return view, nil
}

func (s *AttemptService) learnerOptions(assessment *models.Assessment, sub *models.Submission, q *models.Question) []models.LearnerOption {
	opts := q.Options
	perm := make([]int, len(opts))
	for i := range perm {
		perm[i] = i
	}
	if assessment.RandomizeOptions {
		perm = utils.OptionOrder(sub.ShuffleSeed, q.ID, len(opts))
	}
	out := make([]models.LearnerOption, 0, len(opts))
	for _, i := range perm {
		out = append(out, models.LearnerOption{ID: opts[i].ID, Text: opts[i].Text})
	}
	return out
}

// SaveAnswer upserts the learner's answer for one question. Keyed by
// (submission, question), so autosave may call it on every selection without
// accumulating rows. Writes against a submission that is no longer open fail
// with ErrSubmissionLocked. Scoring is deferred entirely to submit.
func (s *AttemptService) SaveAnswer(submissionID, questionID, userID uuid.UUID, payload AnswerPayload) (*models.Answer, error) {
	sub, err := s.ownedSubmission(submissionID, userID)
	if err != nil {
		return nil, err
	}
	if !sub.Open() {
		return nil, ErrSubmissionLocked
	}
	answer, err := s.buildAnswer(sub, questionID, payload)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpsertAnswer(answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *AttemptService) buildAnswer(sub *models.Submission, questionID uuid.UUID, payload AnswerPayload) (*models.Answer, error) {
	q, err := s.store.GetQuestion(questionID)
	if err != nil {
		return nil, err
	}
	if q == nil || q.AssessmentID != sub.AssessmentID {
		return nil, ErrQuestionNotFound
	}

	answer := &models.Answer{SubmissionID: sub.ID, QuestionID: q.ID}
	switch {
	case q.HasOptions():
		if payload.SelectedOptionID == nil {
			return nil, ErrInvalidAnswerPayload
		}
		found := false
		for _, opt := range q.Options {
			if opt.ID == *payload.SelectedOptionID {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrInvalidAnswerPayload
		}
		answer.SelectedOptionID = payload.SelectedOptionID
	case q.TakesText():
		if payload.TextAnswer == nil {
			return nil, ErrInvalidAnswerPayload
		}
		answer.TextAnswer = payload.TextAnswer
	default: // file_upload
		if payload.FileURL == nil {
			return nil, ErrInvalidAnswerPayload
		}
		answer.FileURL = payload.FileURL
	}
	return answer, nil
}

// Submit drives the in_progress → submitted transition for the learner.
// Any answers carried with the call are flushed by the transition winner, the
// auto-grader runs once, and a provisional score is recorded. A duplicate
// trigger observes the already-submitted state and no-ops.
func (s *AttemptService) Submit(submissionID, userID uuid.UUID, pending []PendingAnswer) (*models.Submission, error) {
	sub, err := s.ownedSubmission(submissionID, userID)
	if err != nil {
		return nil, err
	}
	return s.submit(sub, pending)
}

// AutoSubmit is the deadline trigger: same transition, invoked by the sweep
// on behalf of the learner.
func (s *AttemptService) AutoSubmit(submissionID uuid.UUID) (*models.Submission, error) {
	sub, err := s.store.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	return s.submit(sub, nil)
}

func (s *AttemptService) submit(sub *models.Submission, pending []PendingAnswer) (*models.Submission, error) {
	if sub.Status != models.SubmissionInProgress {
		// Already submitted or later: the other trigger won.
		return sub, nil
	}

	// Carried answers are built up front: a malformed payload has to fail
	// while the attempt is still open, so the learner can correct and retry.
	// Nothing may fail between the won transition and the grading run except
	// storage itself, which the recovery sweep picks up.
	flush := make([]*models.Answer, 0, len(pending))
	for _, p := range pending {
		answer, err := s.buildAnswer(sub, p.QuestionID, p.Payload)
		if err != nil {
			return nil, err
		}
		flush = append(flush, answer)
	}

	assessment, err := s.store.GetAssessment(sub.AssessmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	spent := int(now.Sub(sub.StartedAt).Seconds())
	if assessment.DurationMinutes != nil {
		if limit := *assessment.DurationMinutes * 60; spent > limit {
			spent = limit
		}
	}

	won, err := s.store.TransitionSubmission(sub.ID,
		models.SubmissionInProgress, models.SubmissionSubmitted,
		map[string]interface{}{
			"submitted_at":       now,
			"time_spent_seconds": spent,
		})
	if err != nil {
		return nil, err
	}
	if !won {
		return s.store.GetSubmission(sub.ID)
	}

	// Transition won: flush, grade, score. Exactly once in the happy path;
	// a storage failure past this point leaves the submission submitted but
	// ungraded, and the recovery sweep re-runs the idempotent grading pass.
	for _, answer := range flush {
		if err := s.store.UpsertAnswer(answer); err != nil {
			return nil, err
		}
	}
	if err := s.grader.AutoGradeSubmission(sub.ID); err != nil {
		return nil, err
	}
	if err := s.grader.Rescore(sub.ID); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.SubmissionEvent(sub.UserID, sub.ID, EventSubmitted)
	}
	return s.store.GetSubmission(sub.ID)
}

// TimeRemaining recomputes the countdown from the wall clock and the
// server-recorded start. The source of truth is always deadline − now, never
// a client-side counter. Returns nil for untimed assessments.
func (s *AttemptService) TimeRemaining(submissionID, userID uuid.UUID) (*int, error) {
	sub, err := s.ownedSubmission(submissionID, userID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.store.GetAssessment(sub.AssessmentID)
	if err != nil {
		return nil, err
	}
	return s.remaining(assessment, sub), nil
}

func (s *AttemptService) remaining(assessment *models.Assessment, sub *models.Submission) *int {
	deadline := assessment.Deadline(sub.StartedAt)
	if deadline == nil {
		return nil
	}
	left := int(deadline.Sub(s.now()).Seconds())
	if left < 0 {
		left = 0
	}
	return &left
}

// SweepOverdue auto-submits every timed in_progress submission whose deadline
// has passed. Run from cron; losing this race silently is the one failure the
// engine must never allow, so errors are returned for the job to log and the
// next sweep retries whatever is still open.
func (s *AttemptService) SweepOverdue() (int, error) {
	overdue, err := s.store.ListOverdueSubmissions(s.now())
	if err != nil {
		return 0, err
	}
	submitted := 0
	var firstErr error
	for _, sub := range overdue {
		if _, err := s.AutoSubmit(sub.ID); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		submitted++
	}
	return submitted, firstErr
}

// SweepAbandoned marks untimed in_progress submissions idle past the cutoff
// as abandoned. A reporting state only: it never blocks a later attempt.
func (s *AttemptService) SweepAbandoned(idleFor time.Duration) (int, error) {
	stale, err := s.store.ListStaleUntimed(s.now().Add(-idleFor))
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, sub := range stale {
		won, err := s.store.TransitionSubmission(sub.ID,
			models.SubmissionInProgress, models.SubmissionAbandoned, nil)
		if err != nil {
			return marked, err
		}
		if won {
			marked++
		}
	}
	return marked, nil
}

// DeliveryLocked reports whether any attempt has been made against the
// assessment. Once delivery has begun, its questions and options are
// read-only: editing them would dangle selected_option_id on live answers
// and scramble the frozen option order.
func (s *AttemptService) DeliveryLocked(assessmentID uuid.UUID) (bool, error) {
	count, err := s.store.CountAssessmentSubmissions(assessmentID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *AttemptService) ownedSubmission(submissionID, userID uuid.UUID) (*models.Submission, error) {
	sub, err := s.store.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.UserID != userID {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}
