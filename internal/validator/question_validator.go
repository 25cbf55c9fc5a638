package validator

import (
	"github.com/quizdeck/quiz-service/internal/models"
)

// QuestionValidator enforces the per-type rules for question options and
// correct answers. These run at write time; grading trusts stored questions.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) ValidationErrors {
	var errs ValidationErrors

	if question.Content == "" {
		errs = append(errs, *NewValidationError("content", "is required", question.Content))
	}

	if question.Points < 1 || question.Points > 100 {
		errs = append(errs, *NewValidationErrorWithRule("points", "must be between 1 and 100", "points_range", question.Points))
	}

	if question.OrderIndex < 0 {
		errs = append(errs, *NewValidationError("orderIndex", "must not be negative", question.OrderIndex))
	}

	errs = append(errs, v.validateOptions(question)...)

	return errs
}

func (v *QuestionValidator) validateOptions(question *models.Question) ValidationErrors {
	var errs ValidationErrors
	options := question.Options.Data()

	switch question.Type {
	case models.MultipleChoice:
		if len(options) < 2 {
			errs = append(errs, *NewValidationError("options", "must have at least 2 entries", len(options)))
			return errs
		}
		for key, text := range options {
			if text == "" {
				errs = append(errs, *NewValidationError("options", "option text cannot be empty", key))
			}
		}
		if _, ok := options[question.CorrectAnswer]; !ok {
			errs = append(errs, *NewValidationError("correctAnswer", "must be one of the option keys", question.CorrectAnswer))
		}

	case models.TrueFalse:
		_, hasTrue := options["true"]
		_, hasFalse := options["false"]
		if len(options) != 2 || !hasTrue || !hasFalse {
			errs = append(errs, *NewValidationError("options", "must contain exactly the true and false keys", options))
		}
		if question.CorrectAnswer != "true" && question.CorrectAnswer != "false" {
			errs = append(errs, *NewValidationError("correctAnswer", "must be \"true\" or \"false\"", question.CorrectAnswer))
		}

	case models.ShortAnswer:
		// Free text answer, options are ignored.

	default:
		errs = append(errs, *NewValidationErrorWithRule("type", "must be a valid question type (mcq, true_false, short_answer)", "question_type", question.Type))
	}

	return errs
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) ValidationErrors {
	var errs ValidationErrors
	for _, question := range questions {
		errs = append(errs, v.ValidateQuestion(question)...)
	}
	return errs
}
