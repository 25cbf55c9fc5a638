package postgres

import (
	"context"
	"errors"

	"github.com/quizdeck/quiz-service/internal/models"
	"github.com/quizdeck/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}

	return &question, nil
}

func (q QuestionPostgreSQL) Update(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Save(question).Error
}

func (q QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	return q.db.WithContext(ctx).Delete(&models.Question{}, id).Error
}

func (q QuestionPostgreSQL) GetByQuiz(ctx context.Context, quizID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("order_index ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (q QuestionPostgreSQL) DeleteByQuiz(ctx context.Context, quizID uint) error {
	return q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Delete(&models.Question{}).Error
}

func (q QuestionPostgreSQL) MaxOrderIndex(ctx context.Context, quizID uint) (int, error) {
	var question models.Question
	err := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("order_index DESC").
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return -1, nil
		}
		return 0, err
	}

	return question.OrderIndex, nil
}

func (q QuestionPostgreSQL) UpdateOrder(ctx context.Context, orders []repositories.QuestionOrder) error {
	for _, order := range orders {
		if err := q.db.WithContext(ctx).
			Model(&models.Question{}).
			Where("id = ?", order.QuestionID).
			Update("order_index", order.OrderIndex).Error; err != nil {
			return err
		}
	}
	return nil
}

func (q QuestionPostgreSQL) GetAggregates(ctx context.Context, quizID uint) (*repositories.QuestionAggregates, error) {
	var aggregates repositories.QuestionAggregates
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Select("COUNT(*) AS total_questions, COALESCE(SUM(points), 0) AS total_points").
		Where("quiz_id = ?", quizID).
		Scan(&aggregates).Error
	if err != nil {
		return nil, err
	}

	return &aggregates, nil
}
