package repositories

import (
	"context"

	"github.com/quizdeck/quiz-service/internal/models"
)

// ResponseRepository interface for submission attempt operations
type ResponseRepository interface {
	// Basic CRUD operations. Responses are immutable once created; there is
	// no Update.
	Create(ctx context.Context, response *models.Response) error
	GetByID(ctx context.Context, id uint) (*models.Response, error)
	Delete(ctx context.Context, id uint) error
	DeleteByQuiz(ctx context.Context, quizID uint) error

	// Query operations
	GetByQuiz(ctx context.Context, quizID uint, filters ResponseFilters) ([]*models.Response, int64, error)
	GetByUser(ctx context.Context, userID string, filters ResponseFilters) ([]*models.Response, int64, error)
	GetLatestByQuizAndUser(ctx context.Context, quizID uint, userID string) (*models.Response, error)

	// Attempt accounting
	CountByQuizAndUser(ctx context.Context, quizID uint, userID string) (int64, error)
	CountByQuiz(ctx context.Context, quizID uint) (int64, error)

	// Ranking
	Leaderboard(ctx context.Context, quizID uint, limit int) ([]*LeaderboardEntry, error)
	// CountBetter counts responses in the same quiz that beat the given one:
	// strictly higher score, or equal score with a strictly faster time.
	CountBetter(ctx context.Context, response *models.Response) (int64, error)

	// Aggregates over completed responses
	GetStatistics(ctx context.Context, quizID uint) (*QuizStatistics, error)
}
