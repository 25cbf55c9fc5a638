package postgres

import (
	"context"

	"github.com/quizdeck/quiz-service/internal/models"
	"github.com/quizdeck/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db   *gorm.DB
	isTx bool

	quiz     repositories.QuizRepository
	question repositories.QuestionRepository
	response repositories.ResponseRepository
}

// NewRepository creates a gorm-backed repository aggregate. The returned
// value also implements repositories.TransactionRepository.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:       db,
		quiz:     NewQuizPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		response: NewResponsePostgreSQL(db),
	}
}

func (r *gormRepository) Quiz() repositories.QuizRepository {
	return r.quiz
}

func (r *gormRepository) Question() repositories.QuestionRepository {
	return r.question
}

func (r *gormRepository) Response() repositories.ResponseRepository {
	return r.response
}

func (r *gormRepository) Begin(ctx context.Context) (repositories.Repository, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	repo := NewRepository(tx).(*gormRepository)
	repo.isTx = true
	return repo, nil
}

func (r *gormRepository) Commit(ctx context.Context) error {
	if !r.isTx {
		return gorm.ErrInvalidTransaction
	}
	return r.db.Commit().Error
}

func (r *gormRepository) Rollback(ctx context.Context) error {
	if !r.isTx {
		return gorm.ErrInvalidTransaction
	}
	return r.db.Rollback().Error
}

// Migrate creates or updates the quiz service tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Quiz{},
		&models.Question{},
		&models.Response{},
	)
}
