package repositories

import (
	"context"

	"github.com/quizdeck/quiz-service/internal/models"
)

// QuizRepository interface for quiz record operations
type QuizRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetByCreator(ctx context.Context, creatorID string, filters QuizFilters) ([]*models.Quiz, int64, error)

	// Derived stats. UpdateStats writes the recomputed question count and
	// point sum; callers recompute from the live question set first.
	UpdateStats(ctx context.Context, id uint, totalQuestions, totalPoints int) error
}
