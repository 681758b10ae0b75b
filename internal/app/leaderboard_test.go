package app_test

import (
	"context"
	"testing"
	"time"

	"smart-learning-portal/internal/app"
	"smart-learning-portal/internal/domain"
	"smart-learning-portal/internal/infra/memory"
)

func seedAttempts(t *testing.T, store *memory.AttemptStore, attempts ...domain.QuizAttempt) {
	t.Helper()
	for _, a := range attempts {
		if err := store.Save(context.Background(), a); err != nil {
			t.Fatalf("seed attempt %s: %v", a.ID, err)
		}
	}
}

func attempt(id, studentID, quizID string, score, total int) domain.QuizAttempt {
	return domain.QuizAttempt{
		ID:          id,
		QuizID:      quizID,
		StudentID:   studentID,
		StudentName: "Student " + studentID,
		Score:       score,
		Total:       total,
		SubmittedAt: time.Unix(1700000000, 0),
	}
}

func TestLeaderboardBestPerStudent(t *testing.T) {
	store := memory.NewAttemptStore()
	seedAttempts(t, store,
		attempt("a1", "bob", "quiz-1", 9, 10),
		attempt("a2", "alice", "quiz-1", 7, 10),
		attempt("a3", "alice", "quiz-2", 9, 10),
		attempt("a4", "carol", "quiz-2", 5, 10),
	)

	board, err := app.NewLeaderboardService(store).Leaderboard(context.Background(), "")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 3 {
		t.Fatalf("expected one entry per student, got %d", len(board.Entries))
	}

	// Bob and Alice both peak at 9; Bob submitted his 9 first and stays
	// ahead. Ranks run 1..n in order.
	wantOrder := []struct {
		student string
		score   int
	}{
		{"bob", 9},
		{"alice", 9},
		{"carol", 5},
	}
	for i, want := range wantOrder {
		got := board.Entries[i]
		if got.StudentID != want.student || got.Score != want.score {
			t.Fatalf("entry %d: expected %s with %d, got %s with %d", i, want.student, want.score, got.StudentID, got.Score)
		}
		if got.Rank != i+1 {
			t.Fatalf("entry %d: expected rank %d, got %d", i, i+1, got.Rank)
		}
	}
}

func TestLeaderboardKeepsFirstAttemptReachingBestScore(t *testing.T) {
	store := memory.NewAttemptStore()
	seedAttempts(t, store,
		attempt("a1", "alice", "quiz-1", 9, 10),
		attempt("a2", "alice", "quiz-2", 9, 10),
	)

	board, err := app.NewLeaderboardService(store).Leaderboard(context.Background(), "")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 1 {
		t.Fatalf("expected single entry, got %d", len(board.Entries))
	}
	// Equal scores: the earlier attempt wins the slot.
	if got := board.Entries[0]; got.Score != 9 {
		t.Fatalf("expected score 9, got %d", got.Score)
	}
}

func TestLeaderboardQuizFilter(t *testing.T) {
	store := memory.NewAttemptStore()
	seedAttempts(t, store,
		attempt("a1", "alice", "quiz-1", 3, 10),
		attempt("a2", "alice", "quiz-2", 9, 10),
		attempt("a3", "bob", "quiz-1", 6, 10),
	)

	board, err := app.NewLeaderboardService(store).Leaderboard(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if board.QuizID != "quiz-1" {
		t.Fatalf("expected quiz scope, got %q", board.QuizID)
	}
	if len(board.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board.Entries))
	}
	if board.Entries[0].StudentID != "bob" || board.Entries[0].Score != 6 {
		t.Fatalf("expected bob leading with 6, got %+v", board.Entries[0])
	}
	if board.Entries[1].StudentID != "alice" || board.Entries[1].Score != 3 {
		t.Fatalf("expected alice's quiz-1 score, got %+v", board.Entries[1])
	}
}

func TestLeaderboardRank(t *testing.T) {
	store := memory.NewAttemptStore()
	seedAttempts(t, store,
		attempt("a1", "alice", "quiz-1", 7, 10),
		attempt("a2", "bob", "quiz-1", 9, 10),
	)
	svc := app.NewLeaderboardService(store)

	rank, err := svc.Rank(context.Background(), "", "alice")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank != 2 {
		t.Fatalf("expected rank 2, got %d", rank)
	}
	rank, err = svc.Rank(context.Background(), "", "nobody")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank != 0 {
		t.Fatalf("expected 0 for student without attempts, got %d", rank)
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	board, err := app.NewLeaderboardService(memory.NewAttemptStore()).Leaderboard(context.Background(), "")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 0 {
		t.Fatalf("expected empty board, got %d entries", len(board.Entries))
	}
}
