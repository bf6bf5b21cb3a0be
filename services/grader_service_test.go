package services

import (
	"errors"
	"testing"

	"github.com/anjiri1684/assessment_engine/models"
	"github.com/google/uuid"
)

type recordingSink struct {
	events []string
}

func (r *recordingSink) SubmissionEvent(userID, submissionID uuid.UUID, event string) {
	r.events = append(r.events, event)
}

func TestAggregateRecomputesFromRows(t *testing.T) {
	assessment := &models.Assessment{TotalMarks: 100, PassingMarks: 50}
	marks := func(m float64) *float64 { return &m }
	answers := []models.Answer{
		{MarksObtained: marks(20)},
		{MarksObtained: marks(30)},
		{MarksObtained: marks(0)},
		{MarksObtained: marks(10)},
		{MarksObtained: nil}, // still ungraded, counts as zero
	}

	total, percentage, passed := Aggregate(assessment, answers)
	if total != 60 {
		t.Fatalf("expected total 60, got %v", total)
	}
	if percentage != 60.0 {
		t.Fatalf("expected 60%%, got %v", percentage)
	}
	if !passed {
		t.Fatal("60 >= 50 should pass")
	}

	// Pure recompute: calling again changes nothing.
	again, _, _ := Aggregate(assessment, answers)
	if again != total {
		t.Fatalf("aggregate must not accumulate: %v then %v", total, again)
	}
}

func TestGradeRejectsMarksOutOfRange(t *testing.T) {
	env := newTestEnv()
	assessment := env.addAssessment(&models.Assessment{
		Title: "Bounded", TotalMarks: 10, PassingMarks: 5, AllowResume: true,
	})
	q := env.addDescriptive(assessment.ID, 10, 0)

	sub, _, err := env.attempts.Start(assessment.ID, env.userID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	answer, err := env.attempts.SaveAnswer(sub.ID, q.ID, env.userID, AnswerPayload{TextAnswer: strPtr("essay")})
	if err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	if _, err := env.attempts.Submit(sub.ID, env.userID, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	graderID := uuid.New()
	if _, err := env.grader.Grade(answer.ID, graderID, 11, nil); !errors.Is(err, ErrMarksOutOfRange) {
		t.Fatalf("expected ErrMarksOutOfRange for 11/10, got %v", err)
	}
	if _, err := env.grader.Grade(answer.ID, graderID, -1, nil); !errors.Is(err, ErrMarksOutOfRange) {
		t.Fatalf("expected ErrMarksOutOfRange for -1, got %v", err)
	}

	// Nothing was written by the rejected calls.
	stored, _ := env.store.GetAnswer(answer.ID)
	if stored.MarksObtained != nil {
		t.Fatal("rejected grade must not write marks")
	}
}

func TestGradeRejectsOpenSubmission(t *testing.T) {
	env := newTestEnv()
	assessment := env.addAssessment(&models.Assessment{
		Title: "Still open", TotalMarks: 10, PassingMarks: 5, AllowResume: true,
	})
	q := env.addDescriptive(assessment.ID, 10, 0)

	sub, _, err := env.attempts.Start(assessment.ID, env.userID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	answer, err := env.attempts.SaveAnswer(sub.ID, q.ID, env.userID, AnswerPayload{TextAnswer: strPtr("draft")})
	if err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}

	_, err = env.grader.Grade(answer.ID, uuid.New(), 5, nil)
	if !errors.Is(err, ErrSubmissionNotGradable) {
		t.Fatalf("expected ErrSubmissionNotGradable, got %v", err)
	}
}

func TestCompletenessGateFlipsToGraded(t *testing.T) {
	env := newTestEnv()
	sink := &recordingSink{}
	env.grader.events = sink
	finalized := 0
	env.grader.OnGraded(func(*models.Submission) { finalized++ })

	assessment := env.addAssessment(&models.Assessment{
		Title: "Three essays", TotalMarks: 30, PassingMarks: 15, AllowResume: true,
	})
	questions := []*models.Question{
		env.addDescriptive(assessment.ID, 10, 0),
		env.addDescriptive(assessment.ID, 10, 1),
		env.addDescriptive(assessment.ID, 10, 2),
	}

	sub, _, err := env.attempts.Start(assessment.ID, env.userID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	var answerIDs []uuid.UUID
	for _, q := range questions {
		a, err := env.attempts.SaveAnswer(sub.ID, q.ID, env.userID, AnswerPayload{TextAnswer: strPtr("essay")})
		if err != nil {
			t.Fatalf("SaveAnswer: %v", err)
		}
		answerIDs = append(answerIDs, a.ID)
	}
	if _, err := env.attempts.Submit(sub.ID, env.userID, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	graderID := uuid.New()
	for _, id := range answerIDs[:2] {
		if _, err := env.grader.Grade(id, graderID, 8, nil); err != nil {
			t.Fatalf("Grade: %v", err)
		}
	}
	mid, _ := env.store.GetSubmission(sub.ID)
	if mid.Status != models.SubmissionSubmitted {
		t.Fatalf("one answer still ungraded, expected submitted, got %s", mid.Status)
	}

	if _, err := env.grader.Grade(answerIDs[2], graderID, 8, strPtr("solid")); err != nil {
		t.Fatalf("final Grade: %v", err)
	}
	done, _ := env.store.GetSubmission(sub.ID)
	if done.Status != models.SubmissionGraded {
		t.Fatalf("all answers graded, expected graded, got %s", done.Status)
	}
	if done.ManuallyGradedAt == nil {
		t.Fatal("graded submission must record manually_graded_at")
	}
	if done.TotalScore != 24 {
		t.Fatalf("expected total 24, got %v", done.TotalScore)
	}
	if finalized != 1 {
		t.Fatalf("finalize hook must run exactly once, ran %d times", finalized)
	}

	// A later edit re-aggregates but never re-fires the graded transition.
	if _, err := env.grader.Grade(answerIDs[0], graderID, 10, nil); err != nil {
		t.Fatalf("re-grade: %v", err)
	}
	if finalized != 1 {
		t.Fatalf("finalize hook re-fired on edit, ran %d times", finalized)
	}

	gradedEvents := 0
	for _, e := range sink.events {
		if e == EventGraded {
			gradedEvents++
		}
	}
	if gradedEvents != 1 {
		t.Fatalf("expected one graded event, got %d", gradedEvents)
	}
}

func TestMixedAssessmentProvisionalThenFinal(t *testing.T) {
	env := newTestEnv()
	assessment := env.addAssessment(&models.Assessment{
		Title: "Mixed", TotalMarks: 10, PassingMarks: 6, AllowResume: true,
	})
	mcq := env.addMCQ(assessment.ID, 5, 0)
	desc := env.addDescriptive(assessment.ID, 5, 1)

	sub, _, err := env.attempts.Start(assessment.ID, env.userID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	correct := correctOption(mcq)
	if _, err := env.attempts.SaveAnswer(sub.ID, mcq.ID, env.userID, AnswerPayload{SelectedOptionID: &correct}); err != nil {
		t.Fatalf("SaveAnswer mcq: %v", err)
	}
	essay, err := env.attempts.SaveAnswer(sub.ID, desc.ID, env.userID, AnswerPayload{TextAnswer: strPtr("essay")})
	if err != nil {
		t.Fatalf("SaveAnswer descriptive: %v", err)
	}

	submitted, err := env.attempts.Submit(sub.ID, env.userID, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.Status != models.SubmissionSubmitted {
		t.Fatalf("descriptive pending, expected submitted, got %s", submitted.Status)
	}
	if submitted.TotalScore != 5 || submitted.Percentage != 50.0 || submitted.Passed {
		t.Fatalf("expected provisional 5 / 50%% / fail, got %v / %v / %v",
			submitted.TotalScore, submitted.Percentage, submitted.Passed)
	}

	if _, err := env.grader.Grade(essay.ID, uuid.New(), 5, nil); err != nil {
		t.Fatalf("Grade: %v", err)
	}
	final, _ := env.store.GetSubmission(sub.ID)
	if final.Status != models.SubmissionGraded {
		t.Fatalf("expected graded, got %s", final.Status)
	}
	if final.TotalScore != 10 || final.Percentage != 100.0 || !final.Passed {
		t.Fatalf("expected final 10 / 100%% / pass, got %v / %v / %v",
			final.TotalScore, final.Percentage, final.Passed)
	}
}

func TestRegradeDoesNotAccumulate(t *testing.T) {
	env := newTestEnv()
	assessment := env.addAssessment(&models.Assessment{
		Title: "Edited", TotalMarks: 10, PassingMarks: 5, AllowResume: true,
	})
	q := env.addDescriptive(assessment.ID, 10, 0)

	sub, _, err := env.attempts.Start(assessment.ID, env.userID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	answer, err := env.attempts.SaveAnswer(sub.ID, q.ID, env.userID, AnswerPayload{TextAnswer: strPtr("essay")})
	if err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	if _, err := env.attempts.Submit(sub.ID, env.userID, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	graderID := uuid.New()
	if _, err := env.grader.Grade(answer.ID, graderID, 3, nil); err != nil {
		t.Fatalf("first Grade: %v", err)
	}
	if _, err := env.grader.Grade(answer.ID, graderID, 5, nil); err != nil {
		t.Fatalf("second Grade: %v", err)
	}

	final, _ := env.store.GetSubmission(sub.ID)
	if final.TotalScore != 5 {
		t.Fatalf("re-grade must replace, not add: expected 5, got %v", final.TotalScore)
	}
}

// Simulates a storage failure landing between the won submit transition and
// the grading run: the submission is stranded as submitted with its mcq
// answer unmarked, and the recovery sweep must finish the job.
func TestRecoverInterruptedGrading(t *testing.T) {
	env := newTestEnv()
	assessment := env.addAssessment(&models.Assessment{
		Title: "Interrupted", TotalMarks: 5, PassingMarks: 3, AllowResume: true,
	})
	q := env.addMCQ(assessment.ID, 5, 0)

	sub, _, err := env.attempts.Start(assessment.ID, env.userID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	correct := correctOption(q)
	if _, err := env.attempts.SaveAnswer(sub.ID, q.ID, env.userID, AnswerPayload{SelectedOptionID: &correct}); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}

	env.store.updateAnswerErr = errors.New("connection reset by peer")
	if _, err := env.attempts.Submit(sub.ID, env.userID, nil); err == nil {
		t.Fatal("expected the injected storage failure to surface")
	}

	stuck, _ := env.store.GetSubmission(sub.ID)
	if stuck.Status != models.SubmissionSubmitted {
		t.Fatalf("expected stranded submission to be submitted, got %s", stuck.Status)
	}
	if stuck.TotalScore != 0 {
		t.Fatalf("expected no score before recovery, got %v", stuck.TotalScore)
	}

	recovered, err := env.grader.RecoverInterrupted()
	if err != nil {
		t.Fatalf("RecoverInterrupted: %v", err)
	}
	if recovered != 1 {
		t.Fatalf("expected 1 recovered submission, got %d", recovered)
	}

	final, _ := env.store.GetSubmission(sub.ID)
	if final.Status != models.SubmissionGraded {
		t.Fatalf("expected graded after recovery, got %s", final.Status)
	}
	if final.TotalScore != 5 || !final.Passed {
		t.Fatalf("expected recovered score 5 / pass, got %v / %v", final.TotalScore, final.Passed)
	}

	// Nothing left to recover on a second pass.
	recovered, err = env.grader.RecoverInterrupted()
	if err != nil {
		t.Fatalf("second RecoverInterrupted: %v", err)
	}
	if recovered != 0 {
		t.Fatalf("expected idempotent recovery, got %d", recovered)
	}
}

func TestAutoGradeUsesLoadedQuestions(t *testing.T) {
	env := newTestEnv()
	assessment := env.addAssessment(&models.Assessment{
		Title: "Preloaded", TotalMarks: 10, PassingMarks: 6, AllowResume: true,
	})
	q1 := env.addMCQ(assessment.ID, 5, 0)
	q2 := env.addMCQ(assessment.ID, 5, 1)

	sub, _, err := env.attempts.Start(assessment.ID, env.userID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, q := range []*models.Question{q1, q2} {
		correct := correctOption(q)
		if _, err := env.attempts.SaveAnswer(sub.ID, q.ID, env.userID, AnswerPayload{SelectedOptionID: &correct}); err != nil {
			t.Fatalf("SaveAnswer: %v", err)
		}
	}

	env.store.questionFetches = 0
	if err := env.grader.AutoGradeSubmission(sub.ID); err != nil {
		t.Fatalf("AutoGradeSubmission: %v", err)
	}
	if env.store.questionFetches != 0 {
		t.Fatalf("auto-grade must use the questions loaded with the answers, fetched %d", env.store.questionFetches)
	}

	answers, _ := env.store.ListAnswers(sub.ID)
	for _, a := range answers {
		if a.MarksObtained == nil || *a.MarksObtained != 5 {
			t.Fatalf("expected full marks on answer %s", a.ID)
		}
	}
}

func TestPendingAnswersExcludesGraded(t *testing.T) {
	env := newTestEnv()
	assessment := env.addAssessment(&models.Assessment{
		Title: "Queue", TotalMarks: 15, PassingMarks: 8, AllowResume: true,
	})
	mcq := env.addMCQ(assessment.ID, 5, 0)
	desc := env.addDescriptive(assessment.ID, 10, 1)

	sub, _, err := env.attempts.Start(assessment.ID, env.userID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	correct := correctOption(mcq)
	if _, err := env.attempts.SaveAnswer(sub.ID, mcq.ID, env.userID, AnswerPayload{SelectedOptionID: &correct}); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	if _, err := env.attempts.SaveAnswer(sub.ID, desc.ID, env.userID, AnswerPayload{TextAnswer: strPtr("essay")}); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	if _, err := env.attempts.Submit(sub.ID, env.userID, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	pending, err := env.grader.PendingAnswers(sub.ID)
	if err != nil {
		t.Fatalf("PendingAnswers: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("auto-graded answer must not appear in the queue, got %d pending", len(pending))
	}
	if pending[0].QuestionID != desc.ID {
		t.Fatal("expected the descriptive answer to be pending")
	}

	bench, err := env.grader.WorkbenchSubmissions(assessment.ID)
	if err != nil {
		t.Fatalf("WorkbenchSubmissions: %v", err)
	}
	if len(bench) != 1 {
		t.Fatalf("expected one workbench submission, got %d", len(bench))
	}
}
