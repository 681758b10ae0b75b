package app

import (
	"context"
	"sort"
	"time"

	"smart-learning-portal/internal/domain"
)

// LeaderboardService derives the ranked best-attempt-per-student view. It
// holds no state: every call rescans the attempt history, so the board can
// never be stale.
type LeaderboardService struct {
	attempts AttemptStore
	now      func() time.Time
}

func NewLeaderboardService(attempts AttemptStore) *LeaderboardService {
	return &LeaderboardService{attempts: attempts, now: time.Now}
}

// Leaderboard ranks each student's best attempt by score descending. An
// empty quizID pools every quiz into one global board, matching the portal's
// historical behavior; passing a quizID restricts the board to that quiz.
// A student's best attempt is the first one reaching their maximum score;
// equal-score students stay in submission order.
func (s *LeaderboardService) Leaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error) {
	attempts, err := s.attempts.All(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	best := make(map[string]domain.QuizAttempt)
	order := make([]string, 0, len(attempts))
	for _, a := range attempts {
		if quizID != "" && a.QuizID != quizID {
			continue
		}
		prev, seen := best[a.StudentID]
		if !seen {
			best[a.StudentID] = a
			order = append(order, a.StudentID)
			continue
		}
		if a.Score > prev.Score {
			best[a.StudentID] = a
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(order))
	for _, studentID := range order {
		a := best[studentID]
		entries = append(entries, domain.LeaderboardEntry{
			StudentID:   a.StudentID,
			StudentName: a.StudentName,
			USN:         a.USN,
			Score:       a.Score,
			Total:       a.Total,
			TimeTaken:   a.TimeTaken,
			SubmittedAt: a.SubmittedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return domain.Leaderboard{
		QuizID:    quizID,
		Entries:   entries,
		UpdatedAt: s.now(),
	}, nil
}

// Rank returns the student's 1-based position on the board, or 0 when the
// student has no attempt in scope.
func (s *LeaderboardService) Rank(ctx context.Context, quizID, studentID string) (int, error) {
	board, err := s.Leaderboard(ctx, quizID)
	if err != nil {
		return 0, err
	}
	for _, entry := range board.Entries {
		if entry.StudentID == studentID {
			return entry.Rank, nil
		}
	}
	return 0, nil
}
