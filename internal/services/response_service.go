package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"github.com/quizdeck/quiz-service/internal/cache"
	"github.com/quizdeck/quiz-service/internal/events"
	"github.com/quizdeck/quiz-service/internal/models"
	"github.com/quizdeck/quiz-service/internal/repositories"
	"github.com/quizdeck/quiz-service/internal/validator"
)

// ===== REQUEST / RESPONSE TYPES =====

type SubmitResponseRequest struct {
	// Question ID (decimal string) to the submitted answer text. Questions
	// absent from the map are graded as unanswered.
	Answers   map[string]string `json:"answers" validate:"required"`
	StartedAt *time.Time        `json:"startedAt"`
}

type SubmitResponseResult struct {
	Response          *models.Response `json:"response"`
	AttemptsRemaining int              `json:"attemptsRemaining"`
}

// ResponseDetail is a single graded attempt along with its standing among
// all completed attempts for the quiz.
type ResponseDetail struct {
	Response *models.Response `json:"response"`
	Rank     int64            `json:"rank"`
}

type ResponseListResponse struct {
	Responses []*models.Response `json:"responses"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// UserResponseListResponse is the caller's own attempt history, each entry
// carrying its current standing on the quiz it belongs to.
type UserResponseListResponse struct {
	Responses []*ResponseDetail `json:"responses"`
	Total     int64             `json:"total"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

// ===== SERVICE INTERFACE =====

type ResponseService interface {
	Submit(ctx context.Context, quizID uint, req *SubmitResponseRequest, userID string) (*SubmitResponseResult, error)
	GetByID(ctx context.Context, id uint, userID string) (*ResponseDetail, error)
	GetByQuiz(ctx context.Context, quizID uint, filters repositories.ResponseFilters, userID string) (*ResponseListResponse, error)
	GetByUser(ctx context.Context, userID string, filters repositories.ResponseFilters) (*UserResponseListResponse, error)
	GetLatestForQuiz(ctx context.Context, quizID uint, userID string) (*ResponseDetail, error)
	Delete(ctx context.Context, id uint, userID string) error
}

type responseService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	cache     cache.CacheService
}

func NewResponseService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, cacheService cache.CacheService) ResponseService {
	return &responseService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
		cache:     cacheService,
	}
}

// ===== SUBMISSION =====

// Submit grades a quiz attempt. The checks run in a fixed order so callers
// always get the most specific rejection: missing quiz, then access, then
// lifecycle state, then the attempt limit.
func (s *responseService) Submit(ctx context.Context, quizID uint, req *SubmitResponseRequest, userID string) (*SubmitResponseResult, error) {
	s.logger.Info("Submitting response", "quiz_id", quizID, "user_id", userID)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	if len(req.Answers) == 0 {
		return nil, ErrNoAnswers
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.CanAccess(userID) {
		return nil, NewPermissionError(userID, quizID, "quiz", "submit", "quiz is not publicly available")
	}

	if quiz.Status != models.QuizLive {
		return nil, ErrQuizNotLive
	}

	questions, err := s.repo.Question().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	submittedAt := time.Now()

	// Begin transaction. The attempt count and the insert happen inside the
	// same transaction, and the unique index on (quiz_id, user_id,
	// attempt_number) turns a racing duplicate into a constraint error
	// instead of an over-limit write.
	txRepo, err := s.repo.(repositories.TransactionRepository).Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			txRepo.(repositories.TransactionRepository).Rollback(ctx)
		}
	}()

	attemptCount, err := txRepo.Response().CountByQuizAndUser(ctx, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if attemptCount >= int64(quiz.MaxAttempts) {
		err = ErrAttemptLimitExceeded
		return nil, err
	}

	response := s.grade(quiz, questions, req, userID, submittedAt)
	response.AttemptNumber = int(attemptCount) + 1

	if err = txRepo.Response().Create(ctx, response); err != nil {
		if repositories.IsDuplicateError(err) {
			err = ErrDuplicateSubmission
			return nil, err
		}
		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if cacheErr := s.cache.DeletePattern(ctx, leaderboardCachePattern(quizID)); cacheErr != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "quiz_id", quizID, "error", cacheErr)
	}

	event := events.NewResponseSubmittedEvent(response.ID, quizID, quiz.Title, userID, response.AttemptNumber, response.Score, response.TotalPoints, response.Percentage, response.TimeTaken, response.SubmittedAt)
	if pubErr := s.publisher.PublishQuizEvent(ctx, event); pubErr != nil {
		s.logger.Warn("Failed to publish response submitted event", "response_id", response.ID, "error", pubErr)
	}

	s.logger.Info("Response submitted successfully",
		"response_id", response.ID,
		"quiz_id", quizID,
		"user_id", userID,
		"score", response.Score,
		"total_points", response.TotalPoints,
		"attempt", response.AttemptNumber)

	return &SubmitResponseResult{
		Response:          response,
		AttemptsRemaining: quiz.MaxAttempts - response.AttemptNumber,
	}, nil
}

// grade scores every question of the quiz against the submitted answers.
// The feedback slice carries one entry per question in question order;
// unanswered questions score zero with an empty user answer.
func (s *responseService) grade(quiz *models.Quiz, questions []*models.Question, req *SubmitResponseRequest, userID string, submittedAt time.Time) *models.Response {
	score := 0
	totalPoints := 0
	feedback := make([]models.FeedbackEntry, 0, len(questions))

	for _, question := range questions {
		totalPoints += question.Points

		submitted := req.Answers[strconv.FormatUint(uint64(question.ID), 10)]
		result := question.Grade(submitted)
		score += result.PointsEarned

		feedback = append(feedback, models.FeedbackEntry{
			QuestionID:    question.ID,
			UserAnswer:    submitted,
			CorrectAnswer: result.CorrectAnswer,
			IsCorrect:     result.IsCorrect,
			Points:        result.PointsEarned,
			Explanation:   result.Explanation,
		})
	}

	var timeTaken *int
	if req.StartedAt != nil && !req.StartedAt.After(submittedAt) {
		seconds := int(submittedAt.Sub(*req.StartedAt).Seconds())
		timeTaken = &seconds
	}

	return &models.Response{
		QuizID:      quiz.ID,
		UserID:      userID,
		Answers:     datatypes.NewJSONType(req.Answers),
		Score:       score,
		TotalPoints: totalPoints,
		Percentage:  models.ScorePercentage(score, totalPoints),
		TimeTaken:   timeTaken,
		StartedAt:   req.StartedAt,
		SubmittedAt: submittedAt,
		IsCompleted: true,
		Feedback:    datatypes.NewJSONSlice(feedback),
	}
}

// ===== QUERY OPERATIONS =====

func (s *responseService) GetByID(ctx context.Context, id uint, userID string) (*ResponseDetail, error) {
	response, err := s.repo.Response().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}

	// Visible to the submitter and to the quiz owner.
	if response.UserID != userID {
		quiz, quizErr := s.repo.Quiz().GetByID(ctx, response.QuizID)
		if quizErr != nil {
			return nil, fmt.Errorf("failed to get quiz: %w", quizErr)
		}
		if !quiz.IsOwner(userID) {
			return nil, NewPermissionError(userID, id, "response", "read", "not the submitter or quiz creator")
		}
	}

	rank, err := s.rank(ctx, response)
	if err != nil {
		return nil, err
	}

	return &ResponseDetail{Response: response, Rank: rank}, nil
}

func (s *responseService) GetByQuiz(ctx context.Context, quizID uint, filters repositories.ResponseFilters, userID string) (*ResponseListResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.IsOwner(userID) {
		return nil, NewPermissionError(userID, quizID, "quiz", "read_responses", "only the creator can list quiz responses")
	}

	filters.Limit = normalizeLimit(filters.Limit, 20, 100)

	responses, total, err := s.repo.Response().GetByQuiz(ctx, quizID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}

	return &ResponseListResponse{
		Responses: responses,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

func (s *responseService) GetByUser(ctx context.Context, userID string, filters repositories.ResponseFilters) (*UserResponseListResponse, error) {
	filters.Limit = normalizeLimit(filters.Limit, 20, 100)

	responses, total, err := s.repo.Response().GetByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}

	details := make([]*ResponseDetail, 0, len(responses))
	for _, response := range responses {
		rank, err := s.rank(ctx, response)
		if err != nil {
			return nil, err
		}
		details = append(details, &ResponseDetail{Response: response, Rank: rank})
	}

	return &UserResponseListResponse{
		Responses: details,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

func (s *responseService) GetLatestForQuiz(ctx context.Context, quizID uint, userID string) (*ResponseDetail, error) {
	response, err := s.repo.Response().GetLatestByQuizAndUser(ctx, quizID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get latest response: %w", err)
	}

	rank, err := s.rank(ctx, response)
	if err != nil {
		return nil, err
	}

	return &ResponseDetail{Response: response, Rank: rank}, nil
}

// ===== DELETION =====

// Delete removes an attempt so the user can retake the quiz. Only the
// submitter may delete, and only when the quiz actually allows retakes.
func (s *responseService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting response", "response_id", id, "user_id", userID)

	response, err := s.repo.Response().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrResponseNotFound
		}
		return fmt.Errorf("failed to get response: %w", err)
	}

	if response.UserID != userID {
		return NewPermissionError(userID, id, "response", "delete", "only the submitter can delete a response")
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, response.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.MaxAttempts == 1 {
		return ErrRetakeNotAllowed
	}

	if err := s.repo.Response().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete response: %w", err)
	}

	if cacheErr := s.cache.DeletePattern(ctx, leaderboardCachePattern(response.QuizID)); cacheErr != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", "quiz_id", response.QuizID, "error", cacheErr)
	}

	if pubErr := s.publisher.PublishQuizEvent(ctx, events.NewResponseDeletedEvent(id, response.QuizID, userID)); pubErr != nil {
		s.logger.Warn("Failed to publish response deleted event", "response_id", id, "error", pubErr)
	}

	s.logger.Info("Response deleted successfully", "response_id", id, "quiz_id", response.QuizID)

	return nil
}

// ===== HELPERS =====

// rank is 1 plus the number of completed responses that beat this one:
// higher score, or equal score with a faster time.
func (s *responseService) rank(ctx context.Context, response *models.Response) (int64, error) {
	better, err := s.repo.Response().CountBetter(ctx, response)
	if err != nil {
		return 0, fmt.Errorf("failed to compute rank: %w", err)
	}
	return better + 1, nil
}
