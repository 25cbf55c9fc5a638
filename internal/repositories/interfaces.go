package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/quizdeck/quiz-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories. Services depend on this
// interface; the postgres package provides the gorm-backed implementation.
type Repository interface {
	Quiz() QuizRepository
	Question() QuestionRepository
	Response() ResponseRepository
}

// TransactionRepository is implemented by repositories that can scope all
// operations to a single transaction. Begin returns a Repository bound to
// the transaction; Commit/Rollback finish it.
type TransactionRepository interface {
	Repository
	Begin(ctx context.Context) (Repository, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ===== SHARED FILTER STRUCTS =====

type QuizFilters struct {
	Status   *models.QuizStatus `json:"status"`
	IsPublic *bool              `json:"is_public"`
	// CreatorID restricts to quizzes owned by this user.
	CreatorID *string `json:"creator_id"`
	// AccessibleBy widens the listing to quizzes the user may read:
	// their own plus live public ones.
	AccessibleBy *string `json:"accessible_by"`
	Limit        int     `json:"limit"`
	Offset       int     `json:"offset"`
}

type ResponseFilters struct {
	Completed *bool   `json:"completed"`
	UserID    *string `json:"user_id"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

// ===== SHARED HELPER STRUCTS =====

type QuestionOrder struct {
	QuestionID uint `json:"questionId" validate:"required"`
	OrderIndex int  `json:"orderIndex" validate:"min=0"`
}

// LeaderboardEntry is one row of a quiz leaderboard: completed responses
// ordered by score descending, ties broken by faster time.
type LeaderboardEntry struct {
	UserID      string    `json:"userId"`
	Score       int       `json:"score"`
	TotalPoints int       `json:"totalPoints"`
	Percentage  float64   `json:"percentage"`
	TimeTaken   *int      `json:"timeTaken,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// ===== SHARED STATISTICS STRUCTS =====

type QuizStatistics struct {
	TotalResponses    int     `json:"totalResponses"`
	AverageScore      float64 `json:"averageScore"`
	AveragePercentage float64 `json:"averagePercentage"`
	AverageTime       float64 `json:"averageTime"`
	HighestScore      int     `json:"highestScore"`
	LowestScore       int     `json:"lowestScore"`
	PassRate          float64 `json:"passRate"`
}

type QuestionAggregates struct {
	TotalQuestions int `json:"totalQuestions"`
	TotalPoints    int `json:"totalPoints"`
}

// IsNotFoundError reports whether a repository error means the record is
// absent rather than the query having failed.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether a write collided with a unique index.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
