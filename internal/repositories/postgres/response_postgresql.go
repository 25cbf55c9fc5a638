package postgres

import (
	"context"

	"github.com/quizdeck/quiz-service/internal/models"
	"github.com/quizdeck/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

func (r ResponsePostgreSQL) Create(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func (r ResponsePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).First(&response, id).Error; err != nil {
		return nil, err
	}

	return &response, nil
}

func (r ResponsePostgreSQL) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Response{}, id).Error
}

func (r ResponsePostgreSQL) DeleteByQuiz(ctx context.Context, quizID uint) error {
	return r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Delete(&models.Response{}).Error
}

func (r ResponsePostgreSQL) GetByQuiz(ctx context.Context, quizID uint, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	var responses []*models.Response
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("quiz_id = ?", quizID)
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applyPagination(query, filters)

	if err := query.Order("score DESC, submitted_at DESC").Find(&responses).Error; err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

func (r ResponsePostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	var responses []*models.Response
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("user_id = ?", userID)
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applyPagination(query, filters)

	if err := query.Order("submitted_at DESC").Find(&responses).Error; err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

func (r ResponsePostgreSQL) GetLatestByQuizAndUser(ctx context.Context, quizID uint, userID string) (*models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("submitted_at DESC").
		First(&response).Error; err != nil {
		return nil, err
	}

	return &response, nil
}

func (r ResponsePostgreSQL) CountByQuizAndUser(ctx context.Context, quizID uint, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error

	return count, err
}

func (r ResponsePostgreSQL) CountByQuiz(ctx context.Context, quizID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error

	return count, err
}

func (r ResponsePostgreSQL) Leaderboard(ctx context.Context, quizID uint, limit int) ([]*repositories.LeaderboardEntry, error) {
	var entries []*repositories.LeaderboardEntry
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Select("user_id, score, total_points, percentage, time_taken, submitted_at").
		Where("quiz_id = ? AND is_completed", quizID).
		Order("score DESC, time_taken ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r ResponsePostgreSQL) CountBetter(ctx context.Context, response *models.Response) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("quiz_id = ? AND id <> ?", response.QuizID, response.ID)

	if response.TimeTaken != nil {
		// Equal scores lose on slower time; NULL times never win a tie.
		query = query.Where(
			"score > ? OR (score = ? AND time_taken < ?)",
			response.Score, response.Score, *response.TimeTaken,
		)
	} else {
		query = query.Where("score > ?", response.Score)
	}

	var count int64
	err := query.Count(&count).Error

	return count, err
}

func (r ResponsePostgreSQL) GetStatistics(ctx context.Context, quizID uint) (*repositories.QuizStatistics, error) {
	var stats repositories.QuizStatistics
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Select(`COUNT(*) AS total_responses,
			COALESCE(AVG(score), 0) AS average_score,
			COALESCE(AVG(percentage), 0) AS average_percentage,
			COALESCE(AVG(time_taken), 0) AS average_time,
			COALESCE(MAX(score), 0) AS highest_score,
			COALESCE(MIN(score), 0) AS lowest_score,
			COALESCE(100.0 * COUNT(*) FILTER (WHERE percentage >= 60) / NULLIF(COUNT(*), 0), 0) AS pass_rate`).
		Where("quiz_id = ? AND is_completed", quizID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r ResponsePostgreSQL) applyFilters(query *gorm.DB, filters repositories.ResponseFilters) *gorm.DB {
	if filters.Completed != nil {
		query = query.Where("is_completed = ?", *filters.Completed)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	return query
}

func (r ResponsePostgreSQL) applyPagination(query *gorm.DB, filters repositories.ResponseFilters) *gorm.DB {
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
