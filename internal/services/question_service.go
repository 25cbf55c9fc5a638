package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/quizdeck/quiz-service/internal/models"
	"github.com/quizdeck/quiz-service/internal/repositories"
	"github.com/quizdeck/quiz-service/internal/validator"
)

// ===== REQUEST / RESPONSE TYPES =====

type CreateQuestionRequest struct {
	Type          models.QuestionType `json:"type" validate:"required,question_type"`
	Content       string              `json:"content" validate:"required,min=1"`
	Options       map[string]string   `json:"options"`
	CorrectAnswer string              `json:"correctAnswer" validate:"required"`
	Points        *int                `json:"points" validate:"omitempty,min=1,max=100"`
	Explanation   string              `json:"explanation" validate:"omitempty,max=500"`
	OrderIndex    *int                `json:"orderIndex" validate:"omitempty,min=0"`
}

type UpdateQuestionRequest struct {
	Content       *string           `json:"content" validate:"omitempty,min=1"`
	Options       map[string]string `json:"options"`
	CorrectAnswer *string           `json:"correctAnswer" validate:"omitempty,min=1"`
	Points        *int              `json:"points" validate:"omitempty,min=1,max=100"`
	Explanation   *string           `json:"explanation" validate:"omitempty,max=500"`
	OrderIndex    *int              `json:"orderIndex" validate:"omitempty,min=0"`
}

type ReorderQuestionsRequest struct {
	Orders []repositories.QuestionOrder `json:"orders" validate:"required,min=1,dive"`
}

// ===== SERVICE INTERFACE =====

type QuestionService interface {
	Add(ctx context.Context, quizID uint, req *CreateQuestionRequest, userID string) (*models.Question, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.Question, error)
	GetByQuiz(ctx context.Context, quizID uint, userID string) ([]*models.Question, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string) (*models.Question, error)
	Delete(ctx context.Context, id uint, userID string) error
	Reorder(ctx context.Context, quizID uint, req *ReorderQuestionsRequest, userID string) error
}

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *questionService) Add(ctx context.Context, quizID uint, req *CreateQuestionRequest, userID string) (*models.Question, error) {
	s.logger.Info("Adding question", "quiz_id", quizID, "user_id", userID, "type", req.Type)

	quiz, err := s.getOwnedQuiz(ctx, quizID, userID, "add_question")
	if err != nil {
		return nil, err
	}

	question := buildQuestion(quiz.ID, req, 0)
	applyQuestionDefaults(question)

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

	// New questions land at the end of the quiz unless an explicit position
	// was requested.
	if req.OrderIndex != nil {
		question.OrderIndex = *req.OrderIndex
	} else {
		maxIndex, orderErr := txRepo.Question().MaxOrderIndex(ctx, quizID)
		if orderErr != nil {
			err = fmt.Errorf("failed to determine question order: %w", orderErr)
			return nil, err
		}
		question.OrderIndex = maxIndex + 1
	}

	if err = s.validator.Validate(question); err != nil {
		return nil, err
	}

	if err = txRepo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	if _, err = recomputeQuizStats(ctx, txRepo, quizID); err != nil {
		return nil, err
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Question added successfully", "question_id", question.ID, "quiz_id", quizID)

	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint, userID string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, question.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.CanAccess(userID) {
		return nil, NewPermissionError(userID, id, "question", "read", "quiz is not publicly available")
	}

	if !quiz.IsOwner(userID) {
		question = question.Public()
	}

	return question, nil
}

func (s *questionService) GetByQuiz(ctx context.Context, quizID uint, userID string) ([]*models.Question, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.CanAccess(userID) {
		return nil, NewPermissionError(userID, quizID, "quiz", "read", "quiz is not publicly available")
	}

	questions, err := s.repo.Question().GetByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	if !quiz.IsOwner(userID) {
		for i, question := range questions {
			questions[i] = question.Public()
		}
	}

	return questions, nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string) (*models.Question, error) {
	s.logger.Info("Updating question", "question_id", id, "user_id", userID)

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if _, err = s.getOwnedQuiz(ctx, question.QuizID, userID, "update_question"); err != nil {
		return nil, err
	}

	if req.Content != nil {
		question.Content = *req.Content
	}
	if req.Options != nil {
		question.Options = datatypes.NewJSONType(req.Options)
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Points != nil {
		question.Points = *req.Points
	}
	if req.Explanation != nil {
		question.Explanation = *req.Explanation
	}
	if req.OrderIndex != nil {
		question.OrderIndex = *req.OrderIndex
	}

	if err = s.validator.Validate(question); err != nil {
		return nil, err
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

	if err = txRepo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	// Point changes shift the quiz totals.
	if _, err = recomputeQuizStats(ctx, txRepo, question.QuizID); err != nil {
		return nil, err
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Question updated successfully", "question_id", question.ID)

	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting question", "question_id", id, "user_id", userID)

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if _, err = s.getOwnedQuiz(ctx, question.QuizID, userID, "delete_question"); err != nil {
		return err
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

	if err = txRepo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	if _, err = recomputeQuizStats(ctx, txRepo, question.QuizID); err != nil {
		return err
	}

	if err = txRepo.(repositories.TransactionRepository).Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Question deleted successfully", "question_id", id, "quiz_id", question.QuizID)

	return nil
}

// ===== ORDERING =====

func (s *questionService) Reorder(ctx context.Context, quizID uint, req *ReorderQuestionsRequest, userID string) error {
	s.logger.Info("Reordering questions", "quiz_id", quizID, "user_id", userID, "count", len(req.Orders))

	if err := s.validator.ValidateStruct(req); err != nil {
		return err
	}

	if _, err := s.getOwnedQuiz(ctx, quizID, userID, "reorder_questions"); err != nil {
		return err
	}

	// Every referenced question must belong to this quiz.
	questions, err := s.repo.Question().GetByQuiz(ctx, quizID)
	if err != nil {
		return fmt.Errorf("failed to get questions: %w", err)
	}
	known := make(map[uint]bool, len(questions))
	for _, question := range questions {
		known[question.ID] = true
	}
	for _, order := range req.Orders {
		if !known[order.QuestionID] {
			return NewValidationError("orders", fmt.Sprintf("question %d does not belong to quiz %d", order.QuestionID, quizID), order.QuestionID)
		}
	}

	if err := s.repo.Question().UpdateOrder(ctx, req.Orders); err != nil {
		return fmt.Errorf("failed to reorder questions: %w", err)
	}

	return nil
}

// ===== HELPERS =====

// getOwnedQuiz loads a quiz and enforces that the caller created it.
func (s *questionService) getOwnedQuiz(ctx context.Context, quizID uint, userID, action string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.IsOwner(userID) {
		return nil, NewPermissionError(userID, quizID, "quiz", action, "only the creator can modify quiz questions")
	}

	return quiz, nil
}

func buildQuestion(quizID uint, req *CreateQuestionRequest, orderIndex int) *models.Question {
	question := &models.Question{
		QuizID:        quizID,
		Type:          req.Type,
		Content:       req.Content,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		OrderIndex:    orderIndex,
	}
	if req.Options != nil {
		question.Options = datatypes.NewJSONType(req.Options)
	}
	if req.Points != nil {
		question.Points = *req.Points
	}
	if req.OrderIndex != nil {
		question.OrderIndex = *req.OrderIndex
	}
	return question
}
