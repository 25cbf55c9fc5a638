package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/quizdeck/quiz-service/internal/auth"
	"github.com/quizdeck/quiz-service/internal/events"
	"github.com/quizdeck/quiz-service/internal/models"
	"github.com/quizdeck/quiz-service/internal/repositories"
	"github.com/quizdeck/quiz-service/internal/validator"
)

func newQuizServiceForTest(repo *MockRepository) (QuizService, *events.MockEventPublisher) {
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	return NewQuizService(repo, logger, validator.New(), publisher, newFakeCache()), publisher
}

func creatorIdentity() *auth.Identity {
	return &auth.Identity{ID: "creator-1", Role: models.RoleCreator}
}

func takerIdentity() *auth.Identity {
	return &auth.Identity{ID: "user-2", Role: models.RoleTaker}
}

func TestQuizService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creator can create a draft quiz", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		repo.quiz.On("Create", ctx, mock.AnythingOfType("*models.Quiz")).Run(func(args mock.Arguments) {
			quiz := args.Get(1).(*models.Quiz)
			quiz.ID = 1
			assert.Equal(t, models.QuizDraft, quiz.Status)
			assert.Equal(t, 1, quiz.MaxAttempts)
		}).Return(nil)
		repo.quiz.On("GetByID", ctx, uint(1)).Return(&models.Quiz{ID: 1, CreatorID: "creator-1", Status: models.QuizDraft}, nil)
		repo.question.On("GetByQuiz", ctx, uint(1)).Return([]*models.Question{}, nil)

		result, err := svc.Create(ctx, &CreateQuizRequest{Title: "Geography Basics"}, creatorIdentity())
		assert.NoError(t, err)
		assert.True(t, result.IsOwner)
	})

	t.Run("takers cannot create quizzes", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		_, err := svc.Create(ctx, &CreateQuizRequest{Title: "Nope"}, takerIdentity())
		var permErr *PermissionError
		assert.ErrorAs(t, err, &permErr)
	})

	t.Run("missing title rejected", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		_, err := svc.Create(ctx, &CreateQuizRequest{}, creatorIdentity())
		var validationErrors ValidationErrors
		assert.ErrorAs(t, err, &validationErrors)
	})
}

func TestQuizService_GetByID(t *testing.T) {
	ctx := context.Background()

	quiz := &models.Quiz{ID: 1, CreatorID: "creator-1", Status: models.QuizLive, IsPublic: true}
	questions := []*models.Question{
		{ID: 10, QuizID: 1, CorrectAnswer: "b", Explanation: "because", Points: 5},
	}

	t.Run("owner sees answers", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		repo.quiz.On("GetByID", ctx, uint(1)).Return(quiz, nil)
		repo.question.On("GetByQuiz", ctx, uint(1)).Return(questions, nil)

		result, err := svc.GetByID(ctx, 1, "creator-1")
		assert.NoError(t, err)
		assert.True(t, result.IsOwner)
		assert.Equal(t, "b", result.Questions[0].CorrectAnswer)
	})

	t.Run("takers get sanitized questions", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		repo.quiz.On("GetByID", ctx, uint(1)).Return(quiz, nil)
		repo.question.On("GetByQuiz", ctx, uint(1)).Return([]*models.Question{
			{ID: 10, QuizID: 1, CorrectAnswer: "b", Explanation: "because", Points: 5},
		}, nil)

		result, err := svc.GetByID(ctx, 1, "user-2")
		assert.NoError(t, err)
		assert.False(t, result.IsOwner)
		assert.Empty(t, result.Questions[0].CorrectAnswer)
		assert.Empty(t, result.Questions[0].Explanation)
	})

	t.Run("draft hidden from strangers", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		draft := &models.Quiz{ID: 2, CreatorID: "creator-1", Status: models.QuizDraft, IsPublic: true}
		repo.quiz.On("GetByID", ctx, uint(2)).Return(draft, nil)

		_, err := svc.GetByID(ctx, 2, "user-2")
		var permErr *PermissionError
		assert.ErrorAs(t, err, &permErr)
	})
}

func TestQuizService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("publishing recomputes stats and emits an event", func(t *testing.T) {
		repo := newMockRepository()
		svc, publisher := newQuizServiceForTest(repo)

		quiz := &models.Quiz{ID: 1, Title: "Geography", CreatorID: "creator-1", Status: models.QuizDraft}
		repo.quiz.On("GetByID", ctx, uint(1)).Return(quiz, nil)
		repo.quiz.On("Update", ctx, mock.AnythingOfType("*models.Quiz")).Return(nil)
		repo.question.On("GetAggregates", ctx, uint(1)).Return(&repositories.QuestionAggregates{TotalQuestions: 3, TotalPoints: 8}, nil)
		repo.quiz.On("UpdateStats", ctx, uint(1), 3, 8).Return(nil)

		live := models.QuizLive
		updated, err := svc.Update(ctx, 1, &UpdateQuizRequest{Status: &live}, "creator-1")
		assert.NoError(t, err)
		assert.Equal(t, models.QuizLive, updated.Status)
		assert.Equal(t, 3, updated.TotalQuestions)
		assert.Equal(t, 8, updated.TotalPoints)

		published := publisher.GetPublishedEvents()
		if assert.Len(t, published, 1) {
			assert.Equal(t, events.EventQuizPublished, published[0].Type)
			data := published[0].Data.(events.QuizPublishedEvent)
			assert.Equal(t, 3, data.TotalQuestions)
			assert.Equal(t, 8, data.TotalPoints)
		}
	})

	t.Run("archiving emits an event without recomputing stats", func(t *testing.T) {
		repo := newMockRepository()
		svc, publisher := newQuizServiceForTest(repo)

		quiz := &models.Quiz{ID: 1, Title: "Geography", CreatorID: "creator-1", Status: models.QuizLive}
		repo.quiz.On("GetByID", ctx, uint(1)).Return(quiz, nil)
		repo.quiz.On("Update", ctx, mock.AnythingOfType("*models.Quiz")).Return(nil)

		archived := models.QuizArchived
		_, err := svc.Update(ctx, 1, &UpdateQuizRequest{Status: &archived}, "creator-1")
		assert.NoError(t, err)

		repo.question.AssertNotCalled(t, "GetAggregates", mock.Anything, mock.Anything)
		published := publisher.GetPublishedEvents()
		if assert.Len(t, published, 1) {
			assert.Equal(t, events.EventQuizArchived, published[0].Type)
		}
	})

	t.Run("non-owners cannot update", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		quiz := &models.Quiz{ID: 1, CreatorID: "creator-1", Status: models.QuizLive}
		repo.quiz.On("GetByID", ctx, uint(1)).Return(quiz, nil)

		title := "Hijacked"
		_, err := svc.Update(ctx, 1, &UpdateQuizRequest{Title: &title}, "user-2")
		var permErr *PermissionError
		assert.ErrorAs(t, err, &permErr)
	})
}

func TestQuizService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to questions and responses", func(t *testing.T) {
		repo := newMockRepository()
		svc, publisher := newQuizServiceForTest(repo)

		quiz := &models.Quiz{ID: 1, Title: "Geography", CreatorID: "creator-1"}
		repo.quiz.On("GetByID", ctx, uint(1)).Return(quiz, nil)
		repo.response.On("CountByQuiz", ctx, uint(1)).Return(int64(4), nil)
		repo.question.On("DeleteByQuiz", ctx, uint(1)).Return(nil)
		repo.response.On("DeleteByQuiz", ctx, uint(1)).Return(nil)
		repo.quiz.On("Delete", ctx, uint(1)).Return(nil)

		err := svc.Delete(ctx, 1, "creator-1")
		assert.NoError(t, err)
		repo.assertExpectations(t)

		published := publisher.GetPublishedEvents()
		if assert.Len(t, published, 1) {
			assert.Equal(t, events.EventQuizDeleted, published[0].Type)
			data := published[0].Data.(events.QuizDeletedEvent)
			assert.Equal(t, int64(4), data.ResponsesDeleted)
		}
	})

	t.Run("missing quiz", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		repo.quiz.On("GetByID", ctx, uint(9)).Return(nil, gorm.ErrRecordNotFound)

		err := svc.Delete(ctx, 9, "creator-1")
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})
}

func TestQuizService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("creators see accessible quizzes", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		repo.quiz.On("List", ctx, mock.MatchedBy(func(f repositories.QuizFilters) bool {
			return f.AccessibleBy != nil && *f.AccessibleBy == "creator-1" && f.IsPublic == nil
		})).Return([]*models.Quiz{}, int64(0), nil)

		_, err := svc.List(ctx, &ListQuizzesRequest{}, creatorIdentity())
		assert.NoError(t, err)
		repo.assertExpectations(t)
	})

	t.Run("takers only see live public quizzes", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		repo.quiz.On("List", ctx, mock.MatchedBy(func(f repositories.QuizFilters) bool {
			return f.AccessibleBy == nil &&
				f.Status != nil && *f.Status == models.QuizLive &&
				f.IsPublic != nil && *f.IsPublic
		})).Return([]*models.Quiz{}, int64(0), nil)

		_, err := svc.List(ctx, &ListQuizzesRequest{}, takerIdentity())
		assert.NoError(t, err)
		repo.assertExpectations(t)
	})
}

func TestQuizService_GetByCreator(t *testing.T) {
	ctx := context.Background()

	t.Run("summaries carry response counts and averages", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		quizzes := []*models.Quiz{
			{ID: 1, Title: "Geography", CreatorID: "creator-1"},
			{ID: 2, Title: "History", CreatorID: "creator-1"},
		}
		repo.quiz.On("GetByCreator", ctx, "creator-1", mock.AnythingOfType("repositories.QuizFilters")).
			Return(quizzes, int64(2), nil)
		repo.response.On("GetStatistics", ctx, uint(1)).Return(&repositories.QuizStatistics{
			TotalResponses:    5,
			AverageScore:      6.4,
			AveragePercentage: 80,
		}, nil)
		repo.response.On("GetStatistics", ctx, uint(2)).Return(&repositories.QuizStatistics{}, nil)

		result, err := svc.GetByCreator(ctx, "creator-1", &ListQuizzesRequest{})
		assert.NoError(t, err)
		if assert.Len(t, result.Quizzes, 2) {
			assert.Equal(t, int64(5), result.Quizzes[0].ResponseCount)
			assert.Equal(t, 6.4, result.Quizzes[0].AverageScore)
			assert.Equal(t, 80.0, result.Quizzes[0].AveragePercentage)
			assert.Zero(t, result.Quizzes[1].ResponseCount)
			assert.Zero(t, result.Quizzes[1].AverageScore)
		}
		assert.Equal(t, int64(2), result.Total)
		repo.assertExpectations(t)
	})
}

func TestQuizService_GetStatistics(t *testing.T) {
	ctx := context.Background()

	quiz := &models.Quiz{ID: 1, Title: "Geography", CreatorID: "creator-1", TotalQuestions: 3, TotalPoints: 8}

	t.Run("owner gets aggregates", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		repo.quiz.On("GetByID", ctx, uint(1)).Return(quiz, nil)
		repo.response.On("GetStatistics", ctx, uint(1)).Return(&repositories.QuizStatistics{
			TotalResponses:    4,
			AverageScore:      5.5,
			AveragePercentage: 68.75,
			HighestScore:      8,
			LowestScore:       3,
			PassRate:          75,
		}, nil)

		stats, err := svc.GetStatistics(ctx, 1, "creator-1")
		assert.NoError(t, err)
		assert.Equal(t, 4, stats.TotalResponses)
		assert.Equal(t, 3, stats.TotalQuestions)
		assert.InDelta(t, 68.75, stats.AveragePercentage, 0.0001)
	})

	t.Run("statistics are creator-only", func(t *testing.T) {
		repo := newMockRepository()
		svc, _ := newQuizServiceForTest(repo)

		repo.quiz.On("GetByID", ctx, uint(1)).Return(quiz, nil)

		_, err := svc.GetStatistics(ctx, 1, "user-2")
		var permErr *PermissionError
		assert.ErrorAs(t, err, &permErr)
	})
}
