package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/quizdeck/quiz-service/internal/models"
)

func mcqQuestion() *models.Question {
	return &models.Question{
		QuizID:  1,
		Type:    models.MultipleChoice,
		Content: "Pick the even number",
		Options: datatypes.NewJSONType(map[string]string{
			"a": "3",
			"b": "4",
		}),
		CorrectAnswer: "b",
		Points:        1,
	}
}

func TestQuestionValidator_ValidateQuestion(t *testing.T) {
	v := NewQuestionValidator()

	t.Run("valid mcq passes", func(t *testing.T) {
		assert.Empty(t, v.ValidateQuestion(mcqQuestion()))
	})

	t.Run("empty content rejected", func(t *testing.T) {
		question := mcqQuestion()
		question.Content = ""
		errs := v.ValidateQuestion(question)
		assert.NotEmpty(t, errs)
		assert.Equal(t, "content", errs[0].Field)
	})

	t.Run("points out of range rejected", func(t *testing.T) {
		for _, points := range []int{0, -5, 101} {
			question := mcqQuestion()
			question.Points = points
			errs := v.ValidateQuestion(question)
			assert.NotEmpty(t, errs, "points %d", points)
			assert.Equal(t, "points", errs[0].Field)
		}
	})

	t.Run("mcq needs at least two options", func(t *testing.T) {
		question := mcqQuestion()
		question.Options = datatypes.NewJSONType(map[string]string{"a": "only one"})
		question.CorrectAnswer = "a"
		errs := v.ValidateQuestion(question)
		assert.NotEmpty(t, errs)
		assert.Equal(t, "options", errs[0].Field)
	})

	t.Run("mcq correct answer must be an option key", func(t *testing.T) {
		question := mcqQuestion()
		question.CorrectAnswer = "z"
		errs := v.ValidateQuestion(question)
		assert.NotEmpty(t, errs)
		assert.Equal(t, "correctAnswer", errs[0].Field)
	})

	t.Run("mcq option text cannot be empty", func(t *testing.T) {
		question := mcqQuestion()
		question.Options = datatypes.NewJSONType(map[string]string{"a": "", "b": "4"})
		errs := v.ValidateQuestion(question)
		assert.NotEmpty(t, errs)
	})

	t.Run("true false requires exact keys", func(t *testing.T) {
		question := &models.Question{
			Type:          models.TrueFalse,
			Content:       "The sky is blue",
			CorrectAnswer: "true",
			Points:        1,
			Options: datatypes.NewJSONType(map[string]string{
				"yes": "Yes",
				"no":  "No",
			}),
		}
		errs := v.ValidateQuestion(question)
		assert.NotEmpty(t, errs)
		assert.Equal(t, "options", errs[0].Field)
	})

	t.Run("true false answer must be true or false", func(t *testing.T) {
		question := &models.Question{
			Type:          models.TrueFalse,
			Content:       "The sky is blue",
			CorrectAnswer: "yes",
			Points:        1,
			Options: datatypes.NewJSONType(map[string]string{
				"true":  "True",
				"false": "False",
			}),
		}
		errs := v.ValidateQuestion(question)
		assert.NotEmpty(t, errs)
		assert.Equal(t, "correctAnswer", errs[0].Field)
	})

	t.Run("short answer needs no options", func(t *testing.T) {
		question := &models.Question{
			Type:          models.ShortAnswer,
			Content:       "Name the capital of France",
			CorrectAnswer: "Paris",
			Points:        5,
		}
		assert.Empty(t, v.ValidateQuestion(question))
	})
}

func TestQuestionValidator_ValidateBatch(t *testing.T) {
	v := NewQuestionValidator()

	good := mcqQuestion()
	bad := mcqQuestion()
	bad.Content = ""

	errs := v.ValidateBatch([]*models.Question{good, bad})
	assert.Len(t, errs, 1)
}
