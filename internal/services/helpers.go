package services

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/quizdeck/quiz-service/internal/models"
	"github.com/quizdeck/quiz-service/internal/repositories"
)

// recomputeQuizStats re-aggregates the quiz's question count and point sum
// from the live question set and persists them. Called after every question
// write, inside the same transaction as the write itself so readers never
// see stale totals. Returns the fresh aggregates so callers holding an
// in-memory quiz can apply them too.
func recomputeQuizStats(ctx context.Context, repo repositories.Repository, quizID uint) (*repositories.QuestionAggregates, error) {
	aggregates, err := repo.Question().GetAggregates(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate questions: %w", err)
	}

	if err := repo.Quiz().UpdateStats(ctx, quizID, aggregates.TotalQuestions, aggregates.TotalPoints); err != nil {
		return nil, fmt.Errorf("failed to update quiz stats: %w", err)
	}

	return aggregates, nil
}

// applyQuestionDefaults fills in the option map for true/false questions
// and the default point value before validation runs.
func applyQuestionDefaults(question *models.Question) {
	if question.Points == 0 {
		question.Points = 1
	}
	if question.Type == models.TrueFalse && len(question.Options.Data()) == 0 {
		question.Options = datatypes.NewJSONType(map[string]string{
			"true":  "True",
			"false": "False",
		})
	}
}

// normalizeLimit clamps page sizes to something the database can serve.
func normalizeLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
