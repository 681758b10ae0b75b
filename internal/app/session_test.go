package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"smart-learning-portal/internal/app"
	"smart-learning-portal/internal/domain"
	"smart-learning-portal/internal/infra/memory"
)

func fixedClock() time.Time {
	return time.Unix(1700000000, 0)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func student(id string) domain.User {
	return domain.User{ID: id, Name: "Student " + id, USN: "USN-" + id, Role: domain.RoleStudent}
}

// twoQuestionQuiz has correct indices 1 and 0.
func twoQuestionQuiz(minutes int) domain.Quiz {
	return domain.Quiz{
		ID: "quiz-1",
		Questions: []domain.Question{
			{ID: "q1", Text: "Pick the second option", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 1},
			{ID: "q2", Text: "Pick the first option", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0},
		},
		TimeMinutes: minutes,
		Published:   true,
		CreatedAt:   fixedClock(),
	}
}

func newTestAttemptService(t *testing.T, quiz domain.Quiz) (*app.AttemptService, *memory.AttemptStore) {
	t.Helper()
	quizzes := memory.NewQuizStore()
	if err := quizzes.Save(context.Background(), quiz); err != nil {
		t.Fatalf("save quiz: %v", err)
	}
	attempts := memory.NewAttemptStore()
	svc := app.NewAttemptServiceWithClock(memory.NewSessionStore(), quizzes, attempts, fixedClock, sequentialIDs())
	return svc, attempts
}

func TestScoring(t *testing.T) {
	cases := []struct {
		name    string
		answers map[int]int // question -> option
		want    int
	}{
		{"all correct", map[int]int{0: 1, 1: 0}, 2},
		{"one correct", map[int]int{0: 1, 1: 1}, 1},
		{"nothing answered", nil, 0},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc, _ := newTestAttemptService(t, twoQuestionQuiz(10))

			session, err := svc.Start(ctx, student(fmt.Sprintf("u%d", i)))
			if err != nil {
				t.Fatalf("start: %v", err)
			}
			for q, o := range tc.answers {
				if err := session.Select(q, o); err != nil {
					t.Fatalf("select %d=%d: %v", q, o, err)
				}
			}
			attempt, err := session.Submit(ctx)
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if attempt.Score != tc.want || attempt.Total != 2 {
				t.Fatalf("expected score %d/2, got %d/%d", tc.want, attempt.Score, attempt.Total)
			}
		})
	}
}

func TestReselectOverwrites(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAttemptService(t, twoQuestionQuiz(10))

	session, err := svc.Start(ctx, student("u1"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.Select(0, 3); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := session.Select(0, 1); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	attempt, err := session.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if attempt.Score != 1 {
		t.Fatalf("expected overwrite to count, score=%d", attempt.Score)
	}
	if attempt.Answers[0] != 1 || attempt.Answers[1] != domain.Unanswered {
		t.Fatalf("unexpected answers %v", attempt.Answers)
	}
}

func TestSelectValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAttemptService(t, twoQuestionQuiz(10))

	session, err := svc.Start(ctx, student("u1"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, bad := range [][2]int{{-1, 0}, {2, 0}, {0, -1}, {0, 4}} {
		if err := session.Select(bad[0], bad[1]); !errors.Is(err, domain.ErrIndexOutOfRange) {
			t.Fatalf("select %v: expected index error, got %v", bad, err)
		}
	}
}

func TestTimeoutAutoSubmit(t *testing.T) {
	ctx := context.Background()
	svc, attempts := newTestAttemptService(t, twoQuestionQuiz(1))

	session, err := svc.Start(ctx, student("u1"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Remaining() != 60 {
		t.Fatalf("expected 60s countdown, got %d", session.Remaining())
	}

	var submitted *domain.QuizAttempt
	for i := 0; i < 60; i++ {
		remaining, attempt, err := session.Tick(ctx)
		if err != nil {
			t.Fatalf("tick %d: %v", i+1, err)
		}
		if attempt != nil {
			if i != 59 {
				t.Fatalf("auto-submit fired on tick %d", i+1)
			}
			if remaining != 0 {
				t.Fatalf("expected 0 remaining at timeout, got %d", remaining)
			}
			submitted = attempt
		}
	}
	if submitted == nil {
		t.Fatal("expected timeout to submit")
	}
	if submitted.TimeTaken != 60 {
		t.Fatalf("expected timeTaken 60, got %d", submitted.TimeTaken)
	}
	if submitted.Score != 0 {
		t.Fatalf("unanswered questions must score 0, got %d", submitted.Score)
	}

	all, err := attempts.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one persisted attempt, got %d", len(all))
	}

	if _, _, err := session.Tick(ctx); !errors.Is(err, domain.ErrAttemptNotInProgress) {
		t.Fatalf("stale tick after submit: expected state error, got %v", err)
	}
}

func TestDoubleSubmitPersistsOneAttempt(t *testing.T) {
	ctx := context.Background()
	svc, attempts := newTestAttemptService(t, twoQuestionQuiz(10))

	session, err := svc.Start(ctx, student("u1"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := session.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := session.Submit(ctx); !errors.Is(err, domain.ErrAttemptNotInProgress) {
		t.Fatalf("second submit: expected state error, got %v", err)
	}
	if _, _, err := session.Tick(ctx); !errors.Is(err, domain.ErrAttemptNotInProgress) {
		t.Fatalf("tick after submit: expected state error, got %v", err)
	}
	if err := session.Select(0, 1); !errors.Is(err, domain.ErrAttemptNotInProgress) {
		t.Fatalf("select after submit: expected state error, got %v", err)
	}

	all, _ := attempts.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected exactly one persisted attempt, got %d", len(all))
	}
}

func TestZeroDurationQuizSubmitsImmediately(t *testing.T) {
	ctx := context.Background()
	svc, attempts := newTestAttemptService(t, twoQuestionQuiz(0))

	session, err := svc.Start(ctx, student("u1"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	result, ok := session.Result()
	if !ok {
		t.Fatal("expected immediate timeout result")
	}
	if result.TimeTaken != 0 || result.Score != 0 {
		t.Fatalf("expected 0s attempt with score 0, got %+v", result)
	}
	all, _ := attempts.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected one persisted attempt, got %d", len(all))
	}
}

func TestStartErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no published quiz", func(t *testing.T) {
		svc := app.NewAttemptServiceWithClock(memory.NewSessionStore(), memory.NewQuizStore(), memory.NewAttemptStore(), fixedClock, sequentialIDs())
		if _, err := svc.Start(ctx, student("u1")); !errors.Is(err, domain.ErrNoPublishedQuiz) {
			t.Fatalf("expected no-quiz error, got %v", err)
		}
	})

	t.Run("already attempted", func(t *testing.T) {
		svc, _ := newTestAttemptService(t, twoQuestionQuiz(10))
		session, err := svc.Start(ctx, student("u1"))
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		if _, err := session.Submit(ctx); err != nil {
			t.Fatalf("submit: %v", err)
		}
		svc.Leave("u1")
		if _, err := svc.Start(ctx, student("u1")); !errors.Is(err, domain.ErrAlreadyAttempted) {
			t.Fatalf("expected already-attempted, got %v", err)
		}
		if _, err := svc.PriorAttempt(ctx, "u1"); err != nil {
			t.Fatalf("prior attempt: %v", err)
		}
	})

	t.Run("admin cannot attempt", func(t *testing.T) {
		svc, _ := newTestAttemptService(t, twoQuestionQuiz(10))
		admin := domain.User{ID: "a1", Role: domain.RoleAdmin}
		if _, err := svc.Start(ctx, admin); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})
}

func TestStartResumesInProgressSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAttemptService(t, twoQuestionQuiz(10))

	second, err := svc.Start(ctx, student("u2"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	resumed, err := svc.Start(ctx, student("u2"))
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed != second {
		t.Fatal("expected resume to return the same session")
	}
}

func TestSessionClaim(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAttemptService(t, twoQuestionQuiz(10))

	session, err := svc.Start(ctx, student("u1"))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !session.Claim() {
		t.Fatal("first claim should succeed")
	}
	if session.Claim() {
		t.Fatal("second claim should fail while held")
	}
	session.Release()
	if !session.Claim() {
		t.Fatal("claim after release should succeed")
	}
}
