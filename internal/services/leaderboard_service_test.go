package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/quizdeck/quiz-service/internal/models"
	"github.com/quizdeck/quiz-service/internal/repositories"
)

func publicQuiz() *models.Quiz {
	return &models.Quiz{ID: 1, Title: "Geography Basics", CreatorID: "creator-1", Status: models.QuizLive, IsPublic: true}
}

func intPtr(v int) *int { return &v }

func TestLeaderboardService_Get(t *testing.T) {
	ctx := context.Background()

	entries := []*repositories.LeaderboardEntry{
		{UserID: "user-3", Score: 8, TotalPoints: 8, Percentage: 100, TimeTaken: intPtr(120), SubmittedAt: time.Now()},
		{UserID: "user-2", Score: 8, TotalPoints: 8, Percentage: 100, TimeTaken: intPtr(150), SubmittedAt: time.Now()},
		{UserID: "user-4", Score: 5, TotalPoints: 8, Percentage: 62.5, TimeTaken: intPtr(90), SubmittedAt: time.Now()},
	}

	t.Run("entries are ranked in repository order", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewLeaderboardService(repo, testLogger(), newFakeCache())

		repo.quiz.On("GetByID", ctx, uint(1)).Return(publicQuiz(), nil)
		repo.response.On("Leaderboard", ctx, uint(1), 10).Return(entries, nil)

		board, err := svc.Get(ctx, 1, 0, "user-2")
		assert.NoError(t, err)
		assert.Equal(t, "Geography Basics", board.Title)
		if assert.Len(t, board.Entries, 3) {
			assert.Equal(t, 1, board.Entries[0].Rank)
			assert.Equal(t, "user-3", board.Entries[0].UserID)
			assert.Equal(t, 2, board.Entries[1].Rank)
			assert.Equal(t, "user-2", board.Entries[1].UserID)
			assert.Equal(t, 3, board.Entries[2].Rank)
		}
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewLeaderboardService(repo, testLogger(), newFakeCache())

		repo.quiz.On("GetByID", ctx, uint(1)).Return(publicQuiz(), nil)
		repo.response.On("Leaderboard", ctx, uint(1), 10).Return(entries, nil).Once()

		first, err := svc.Get(ctx, 1, 0, "user-2")
		assert.NoError(t, err)

		second, err := svc.Get(ctx, 1, 0, "user-2")
		assert.NoError(t, err)
		assert.Equal(t, len(first.Entries), len(second.Entries))

		repo.response.AssertNumberOfCalls(t, "Leaderboard", 1)
	})

	t.Run("limit is capped", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewLeaderboardService(repo, testLogger(), newFakeCache())

		repo.quiz.On("GetByID", ctx, uint(1)).Return(publicQuiz(), nil)
		repo.response.On("Leaderboard", ctx, uint(1), 100).Return([]*repositories.LeaderboardEntry{}, nil)

		_, err := svc.Get(ctx, 1, 5000, "user-2")
		assert.NoError(t, err)
		repo.assertExpectations(t)
	})

	t.Run("private quiz board is creator-only", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewLeaderboardService(repo, testLogger(), newFakeCache())

		quiz := publicQuiz()
		quiz.IsPublic = false
		repo.quiz.On("GetByID", ctx, uint(1)).Return(quiz, nil)

		_, err := svc.Get(ctx, 1, 0, "user-2")
		var permErr *PermissionError
		assert.ErrorAs(t, err, &permErr)

		repo.response.AssertNotCalled(t, "Leaderboard", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("creator sees private board in any status", func(t *testing.T) {
		repo := newMockRepository()
		svc := NewLeaderboardService(repo, testLogger(), newFakeCache())

		quiz := publicQuiz()
		quiz.IsPublic = false
		quiz.Status = models.QuizArchived
		repo.quiz.On("GetByID", ctx, uint(1)).Return(quiz, nil)
		repo.response.On("Leaderboard", ctx, uint(1), 10).Return([]*repositories.LeaderboardEntry{}, nil)

		_, err := svc.Get(ctx, 1, 0, "creator-1")
		assert.NoError(t, err)
	})
}
