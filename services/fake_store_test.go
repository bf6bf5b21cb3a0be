package services

import (
	"fmt"
	"time"

	"github.com/anjiri1684/assessment_engine/models"
	"github.com/google/uuid"
)

// fakeStore is an in-memory Store for exercising the engine without a
// database. Counters record the calls the race-sensitive tests assert on.
type fakeStore struct {
	assessments map[uuid.UUID]*models.Assessment
	users       map[uuid.UUID]*models.User
	questions   []*models.Question
	submissions map[uuid.UUID]*models.Submission
	answers     map[string]*models.Answer

	upsertCalls       int
	answerUpdateCalls int
	transitionWins    int
	questionFetches   int

	// One-shot fault injected into the next UpdateAnswer call.
	updateAnswerErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		assessments: make(map[uuid.UUID]*models.Assessment),
		users:       make(map[uuid.UUID]*models.User),
		submissions: make(map[uuid.UUID]*models.Submission),
		answers:     make(map[string]*models.Answer),
	}
}

func answerKey(submissionID, questionID uuid.UUID) string {
	return fmt.Sprintf("%s|%s", submissionID, questionID)
}

func (f *fakeStore) addAssessment(a *models.Assessment) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.assessments[a.ID] = a
}

func (f *fakeStore) addQuestion(q *models.Question) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	for i := range q.Options {
		if q.Options[i].ID == uuid.Nil {
			q.Options[i].ID = uuid.New()
		}
		q.Options[i].QuestionID = q.ID
	}
	f.questions = append(f.questions, q)
}

func (f *fakeStore) addUser(u *models.User) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
}

func (f *fakeStore) GetAssessment(id uuid.UUID) (*models.Assessment, error) {
	return f.assessments[id], nil
}

func (f *fakeStore) GetUser(id uuid.UUID) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeStore) ListQuestions(assessmentID uuid.UUID) ([]models.Question, error) {
	var out []models.Question
	for _, q := range f.questions {
		if q.AssessmentID == assessmentID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeStore) findQuestion(id uuid.UUID) *models.Question {
	for _, q := range f.questions {
		if q.ID == id {
			return q
		}
	}
	return nil
}

func (f *fakeStore) GetQuestion(id uuid.UUID) (*models.Question, error) {
	f.questionFetches++
	if q := f.findQuestion(id); q != nil {
		copied := *q
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) FindActiveSubmission(assessmentID, userID uuid.UUID) (*models.Submission, error) {
	for _, sub := range f.submissions {
		if sub.AssessmentID == assessmentID && sub.UserID == userID && sub.Status == models.SubmissionInProgress {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CountSubmissions(assessmentID, userID uuid.UUID) (int64, error) {
	var count int64
	for _, sub := range f.submissions {
		if sub.AssessmentID == assessmentID && sub.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CountAssessmentSubmissions(assessmentID uuid.UUID) (int64, error) {
	var count int64
	for _, sub := range f.submissions {
		if sub.AssessmentID == assessmentID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateSubmission(sub *models.Submission) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	f.submissions[sub.ID] = sub
	return nil
}

// GetSubmission hands back a snapshot, the way a row read from the database
// would be: a caller holding a stale copy still has to win the status
// check-and-set to make progress.
func (f *fakeStore) GetSubmission(id uuid.UUID) (*models.Submission, error) {
	sub, ok := f.submissions[id]
	if !ok {
		return nil, nil
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeStore) UpdateSubmission(id uuid.UUID, fields map[string]interface{}) error {
	sub, ok := f.submissions[id]
	if !ok {
		return fmt.Errorf("submission %s not found", id)
	}
	applySubmissionFields(sub, fields)
	return nil
}

func (f *fakeStore) TransitionSubmission(id uuid.UUID, from, to string, fields map[string]interface{}) (bool, error) {
	sub, ok := f.submissions[id]
	if !ok {
		return false, fmt.Errorf("submission %s not found", id)
	}
	if sub.Status != from {
		return false, nil
	}
	sub.Status = to
	applySubmissionFields(sub, fields)
	f.transitionWins++
	return true, nil
}

func applySubmissionFields(sub *models.Submission, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "submitted_at":
			t := v.(time.Time)
			sub.SubmittedAt = &t
		case "time_spent_seconds":
			sub.TimeSpentSeconds = v.(int)
		case "total_score":
			sub.TotalScore = v.(float64)
		case "percentage":
			sub.Percentage = v.(float64)
		case "passed":
			sub.Passed = v.(bool)
		case "manually_graded_at":
			t := v.(time.Time)
			sub.ManuallyGradedAt = &t
		}
	}
}

func (f *fakeStore) UpsertAnswer(answer *models.Answer) error {
	f.upsertCalls++
	key := answerKey(answer.SubmissionID, answer.QuestionID)
	if existing, ok := f.answers[key]; ok {
		existing.SelectedOptionID = answer.SelectedOptionID
		existing.TextAnswer = answer.TextAnswer
		existing.FileURL = answer.FileURL
		*answer = *existing
		return nil
	}
	answer.ID = uuid.New()
	stored := *answer
	f.answers[key] = &stored
	return nil
}

func (f *fakeStore) GetAnswer(id uuid.UUID) (*models.Answer, error) {
	for _, a := range f.answers {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateAnswer(id uuid.UUID, fields map[string]interface{}) error {
	if f.updateAnswerErr != nil {
		err := f.updateAnswerErr
		f.updateAnswerErr = nil
		return err
	}
	f.answerUpdateCalls++
	for _, a := range f.answers {
		if a.ID != id {
			continue
		}
		for k, v := range fields {
			switch k {
			case "is_correct":
				b := v.(bool)
				a.IsCorrect = &b
			case "marks_obtained":
				m := v.(float64)
				a.MarksObtained = &m
			case "grader_feedback":
				s := v.(string)
				a.GraderFeedback = &s
			case "graded_by":
				g := v.(uuid.UUID)
				a.GradedBy = &g
			case "graded_at":
				t := v.(time.Time)
				a.GradedAt = &t
			}
		}
		return nil
	}
	return fmt.Errorf("answer %s not found", id)
}

// ListAnswers carries the question along on each row, the way the gorm
// store preloads it.
func (f *fakeStore) ListAnswers(submissionID uuid.UUID) ([]models.Answer, error) {
	var out []models.Answer
	for _, a := range f.answers {
		if a.SubmissionID == submissionID {
			copied := *a
			if q := f.findQuestion(a.QuestionID); q != nil {
				copied.Question = *q
			}
			out = append(out, copied)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSubmissions(assessmentID uuid.UUID, statuses []string) ([]models.Submission, error) {
	var out []models.Submission
	for _, sub := range f.submissions {
		if sub.AssessmentID != assessmentID {
			continue
		}
		for _, status := range statuses {
			if sub.Status == status {
				out = append(out, *sub)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListOverdueSubmissions(now time.Time) ([]models.Submission, error) {
	var out []models.Submission
	for _, sub := range f.submissions {
		if sub.Status != models.SubmissionInProgress {
			continue
		}
		assessment := f.assessments[sub.AssessmentID]
		if assessment == nil || assessment.DurationMinutes == nil {
			continue
		}
		if deadline := assessment.Deadline(sub.StartedAt); !deadline.After(now) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeStore) ListInterruptedGrading() ([]models.Submission, error) {
	var out []models.Submission
	for _, sub := range f.submissions {
		if sub.Status != models.SubmissionSubmitted {
			continue
		}
		ungraded, ungradedAuto := 0, 0
		for _, a := range f.answers {
			if a.SubmissionID != sub.ID || a.Graded() {
				continue
			}
			ungraded++
			if q := f.findQuestion(a.QuestionID); q != nil && q.AutoGradable() {
				ungradedAuto++
			}
		}
		if ungradedAuto > 0 || ungraded == 0 {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeStore) ListStaleUntimed(cutoff time.Time) ([]models.Submission, error) {
	var out []models.Submission
	for _, sub := range f.submissions {
		if sub.Status != models.SubmissionInProgress {
			continue
		}
		assessment := f.assessments[sub.AssessmentID]
		if assessment == nil || assessment.DurationMinutes != nil {
			continue
		}
		if sub.StartedAt.Before(cutoff) {
			out = append(out, *sub)
		}
	}
	return out, nil
}
