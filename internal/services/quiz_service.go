package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quizdeck/quiz-service/internal/auth"
	"github.com/quizdeck/quiz-service/internal/cache"
	"github.com/quizdeck/quiz-service/internal/events"
	"github.com/quizdeck/quiz-service/internal/models"
	"github.com/quizdeck/quiz-service/internal/repositories"
	"github.com/quizdeck/quiz-service/internal/validator"
)

// ===== REQUEST / RESPONSE TYPES =====

type CreateQuizRequest struct {
	Title       string                   `json:"title" validate:"required,min=1,max=255"`
	Description string                   `json:"description" validate:"omitempty,max=1000"`
	TimeLimit   *int                     `json:"timeLimit" validate:"omitempty,min=1,max=480"`
	MaxAttempts *int                     `json:"maxAttempts" validate:"omitempty,min=1"`
	IsPublic    *bool                    `json:"isPublic"`
	Questions   []*CreateQuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type UpdateQuizRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	TimeLimit   *int               `json:"timeLimit" validate:"omitempty,min=1,max=480"`
	MaxAttempts *int               `json:"maxAttempts" validate:"omitempty,min=1"`
	IsPublic    *bool              `json:"isPublic"`
	Status      *models.QuizStatus `json:"status" validate:"omitempty,quiz_status"`
}

type ListQuizzesRequest struct {
	Status *models.QuizStatus `json:"status" validate:"omitempty,quiz_status"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// QuizDetailResponse is a quiz together with its question set. Questions are
// sanitized for callers that do not own the quiz.
type QuizDetailResponse struct {
	Quiz      *models.Quiz       `json:"quiz"`
	Questions []*models.Question `json:"questions"`
	IsOwner   bool               `json:"isOwner"`
}

type QuizListResponse struct {
	Quizzes []*models.Quiz `json:"quizzes"`
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

// QuizSummary is one row of the creator dashboard listing.
type QuizSummary struct {
	*models.Quiz
	ResponseCount     int64   `json:"responseCount"`
	AverageScore      float64 `json:"averageScore"`
	AveragePercentage float64 `json:"averagePercentage"`
}

type QuizSummaryListResponse struct {
	Quizzes []*QuizSummary `json:"quizzes"`
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}

type QuizStatisticsResponse struct {
	QuizID         uint   `json:"quizId"`
	Title          string `json:"title"`
	TotalQuestions int    `json:"totalQuestions"`
	TotalPoints    int    `json:"totalPoints"`
	repositories.QuizStatistics
}

// ===== SERVICE INTERFACE =====

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, identity *auth.Identity) (*QuizDetailResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*QuizDetailResponse, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID string) (*models.Quiz, error)
	Delete(ctx context.Context, id uint, userID string) error

	List(ctx context.Context, req *ListQuizzesRequest, identity *auth.Identity) (*QuizListResponse, error)
	GetByCreator(ctx context.Context, creatorID string, req *ListQuizzesRequest) (*QuizSummaryListResponse, error)

	GetStatistics(ctx context.Context, id uint, userID string) (*QuizStatisticsResponse, error)
	CanAccess(ctx context.Context, id uint, userID string) (bool, error)
}

type quizService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	cache     cache.CacheService
}

func NewQuizService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, cacheService cache.CacheService) QuizService {
	return &quizService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
		cache:     cacheService,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, identity *auth.Identity) (*QuizDetailResponse, error) {
	s.logger.Info("Creating quiz", "creator_id", identity.ID, "title", req.Title)

	if !identity.IsCreator() {
		return nil, NewPermissionError(identity.ID, 0, "quiz", "create", "creator role required")
	}

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   identity.ID,
		Status:      models.QuizDraft,
		TimeLimit:   req.TimeLimit,
		MaxAttempts: 1,
		IsPublic:    req.IsPublic != nil && *req.IsPublic,
	}
	if req.MaxAttempts != nil {
		quiz.MaxAttempts = *req.MaxAttempts
	}

	// Begin transaction
	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	if err = txRepo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	// Create initial questions if provided
	if len(req.Questions) > 0 {
		for i, questionReq := range req.Questions {
			question := buildQuestion(quiz.ID, questionReq, i)
			applyQuestionDefaults(question)
			if err = s.validator.Validate(question); err != nil {
				return nil, err
			}
			if err = txRepo.Question().Create(ctx, question); err != nil {
				return nil, fmt.Errorf("failed to create question: %w", err)
			}
		}
		if _, err = recomputeQuizStats(ctx, txRepo, quiz.ID); err != nil {
			return nil, err
		}
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Quiz created successfully", "quiz_id", quiz.ID)

	return s.GetByID(ctx, quiz.ID, identity.ID)
}

func (s *quizService) GetByID(ctx context.Context, id uint, userID string) (*QuizDetailResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.CanAccess(userID) {
		return nil, NewPermissionError(userID, id, "quiz", "read", "quiz is not publicly available")
	}

	questions, err := s.repo.Question().GetByQuiz(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	isOwner := quiz.IsOwner(userID)
	if !isOwner {
		// Takers never see answers or explanations before submitting.
		for i, question := range questions {
			questions[i] = question.Public()
		}
	}

	return &QuizDetailResponse{
		Quiz:      quiz,
		Questions: questions,
		IsOwner:   isOwner,
	}, nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest, userID string) (*models.Quiz, error) {
	s.logger.Info("Updating quiz", "quiz_id", id, "user_id", userID)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.IsOwner(userID) {
		return nil, NewPermissionError(userID, id, "quiz", "update", "only the creator can update a quiz")
	}

	previousStatus := quiz.Status

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = req.TimeLimit
	}
	if req.MaxAttempts != nil {
		quiz.MaxAttempts = *req.MaxAttempts
	}
	if req.IsPublic != nil {
		quiz.IsPublic = *req.IsPublic
	}
	if req.Status != nil {
		quiz.Status = *req.Status
	}

	// Begin transaction
	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	if err = txRepo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	// Publishing snapshots the question totals so takers see accurate
	// counts the moment the quiz goes live. The fresh aggregates are applied
	// to the in-memory quiz too, so the returned value and the published
	// event carry the post-recompute totals.
	if quiz.Status == models.QuizLive && previousStatus != models.QuizLive {
		var aggregates *repositories.QuestionAggregates
		if aggregates, err = recomputeQuizStats(ctx, txRepo, quiz.ID); err != nil {
			return nil, err
		}
		quiz.TotalQuestions = aggregates.TotalQuestions
		quiz.TotalPoints = aggregates.TotalPoints
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publishStatusEvents(ctx, quiz, previousStatus)

	s.logger.Info("Quiz updated successfully", "quiz_id", quiz.ID, "status", quiz.Status)

	return quiz, nil
}

func (s *quizService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting quiz", "quiz_id", id, "user_id", userID)

	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.IsOwner(userID) {
		return NewPermissionError(userID, id, "quiz", "delete", "only the creator can delete a quiz")
	}

	responseCount, err := s.repo.Response().CountByQuiz(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count responses: %w", err)
	}

	// Begin transaction
	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	// Cascade: questions and responses go with the quiz.
	if err = txRepo.Question().DeleteByQuiz(ctx, id); err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	if err = txRepo.Response().DeleteByQuiz(ctx, id); err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	if err = txRepo.Quiz().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	if cacheErr := s.cache.DeletePattern(ctx, leaderboardCachePattern(id)); cacheErr != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "quiz_id", id, "error", cacheErr)
	}

	if pubErr := s.publisher.PublishQuizEvent(ctx, events.NewQuizDeletedEvent(id, quiz.Title, quiz.CreatorID, responseCount)); pubErr != nil {
		s.logger.Warn("Failed to publish quiz deleted event", "quiz_id", id, "error", pubErr)
	}

	s.logger.Info("Quiz deleted successfully", "quiz_id", id, "responses_deleted", responseCount)

	return nil
}

// ===== QUERY OPERATIONS =====

// List returns the quizzes visible to the caller: creators see their own
// quizzes plus live public ones, takers only live public ones.
func (s *quizService) List(ctx context.Context, req *ListQuizzesRequest, identity *auth.Identity) (*QuizListResponse, error) {
	filters := repositories.QuizFilters{
		Status: req.Status,
		Limit:  normalizeLimit(req.Limit, 20, 100),
		Offset: req.Offset,
	}

	if identity.IsCreator() {
		filters.AccessibleBy = &identity.ID
	} else {
		live := models.QuizLive
		public := true
		filters.Status = &live
		filters.IsPublic = &public
	}

	quizzes, total, err := s.repo.Quiz().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	return &QuizListResponse{
		Quizzes: quizzes,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

func (s *quizService) GetByCreator(ctx context.Context, creatorID string, req *ListQuizzesRequest) (*QuizSummaryListResponse, error) {
	filters := repositories.QuizFilters{
		Status: req.Status,
		Limit:  normalizeLimit(req.Limit, 20, 100),
		Offset: req.Offset,
	}

	quizzes, total, err := s.repo.Quiz().GetByCreator(ctx, creatorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes by creator: %w", err)
	}

	summaries := make([]*QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		stats, err := s.repo.Response().GetStatistics(ctx, quiz.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get statistics for quiz %d: %w", quiz.ID, err)
		}
		summaries = append(summaries, &QuizSummary{
			Quiz:              quiz,
			ResponseCount:     int64(stats.TotalResponses),
			AverageScore:      stats.AverageScore,
			AveragePercentage: stats.AveragePercentage,
		})
	}

	return &QuizSummaryListResponse{
		Quizzes: summaries,
		Total:   total,
		Limit:   filters.Limit,
		Offset:  filters.Offset,
	}, nil
}

// ===== STATISTICS =====

func (s *quizService) GetStatistics(ctx context.Context, id uint, userID string) (*QuizStatisticsResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.IsOwner(userID) {
		return nil, NewPermissionError(userID, id, "quiz", "read_statistics", "only the creator can view quiz statistics")
	}

	stats, err := s.repo.Response().GetStatistics(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz statistics: %w", err)
	}

	return &QuizStatisticsResponse{
		QuizID:         quiz.ID,
		Title:          quiz.Title,
		TotalQuestions: quiz.TotalQuestions,
		TotalPoints:    quiz.TotalPoints,
		QuizStatistics: *stats,
	}, nil
}

func (s *quizService) CanAccess(ctx context.Context, id uint, userID string) (bool, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrQuizNotFound
		}
		return false, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz.CanAccess(userID), nil
}

// ===== HELPERS =====

func (s *quizService) publishStatusEvents(ctx context.Context, quiz *models.Quiz, previousStatus models.QuizStatus) {
	if quiz.Status == previousStatus {
		return
	}

	var event *events.QuizEvent
	switch quiz.Status {
	case models.QuizLive:
		event = events.NewQuizPublishedEvent(quiz.ID, quiz.Title, quiz.CreatorID, quiz.IsPublic, quiz.TotalQuestions, quiz.TotalPoints, quiz.TimeLimit, quiz.MaxAttempts)
	case models.QuizArchived:
		event = events.NewQuizArchivedEvent(quiz.ID, quiz.Title, quiz.CreatorID)
	default:
		return
	}

	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish quiz status event", "quiz_id", quiz.ID, "status", quiz.Status, "error", err)
	}
}
