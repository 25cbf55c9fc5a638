package repositories

import (
	"context"

	"github.com/quizdeck/quiz-service/internal/models"
)

// QuestionRepository interface for question record operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	// Query operations
	GetByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error) // Ordered by order_index
	DeleteByQuiz(ctx context.Context, quizID uint) error

	// Ordering
	MaxOrderIndex(ctx context.Context, quizID uint) (int, error)
	UpdateOrder(ctx context.Context, orders []QuestionOrder) error

	// Aggregation over the current question set of a quiz
	GetAggregates(ctx context.Context, quizID uint) (*QuestionAggregates, error)
}
