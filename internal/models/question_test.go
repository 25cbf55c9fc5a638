package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestion_Grade(t *testing.T) {
	question := &Question{
		Type:          ShortAnswer,
		Content:       "What is the capital of France?",
		CorrectAnswer: "Paris",
		Points:        5,
		Explanation:   "Paris has been the capital since 987.",
	}

	t.Run("exact match earns full points", func(t *testing.T) {
		result := question.Grade("Paris")
		assert.True(t, result.IsCorrect)
		assert.Equal(t, 5, result.PointsEarned)
		assert.Equal(t, "Paris", result.CorrectAnswer)
	})

	t.Run("comparison is case insensitive", func(t *testing.T) {
		for _, submitted := range []string{"paris", "PARIS", "pArIs"} {
			result := question.Grade(submitted)
			assert.True(t, result.IsCorrect, "submitted %q", submitted)
			assert.Equal(t, 5, result.PointsEarned)
		}
	})

	t.Run("whitespace is not trimmed", func(t *testing.T) {
		result := question.Grade(" Paris")
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0, result.PointsEarned)

		result = question.Grade("Paris ")
		assert.False(t, result.IsCorrect)
	})

	t.Run("wrong answer earns zero", func(t *testing.T) {
		result := question.Grade("Lyon")
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0, result.PointsEarned)
		assert.Equal(t, "Paris", result.CorrectAnswer)
	})

	t.Run("empty answer earns zero", func(t *testing.T) {
		result := question.Grade("")
		assert.False(t, result.IsCorrect)
		assert.Equal(t, 0, result.PointsEarned)
	})

	t.Run("true false grading", func(t *testing.T) {
		tf := &Question{Type: TrueFalse, CorrectAnswer: "true", Points: 1}
		assert.True(t, tf.Grade("true").IsCorrect)
		assert.True(t, tf.Grade("TRUE").IsCorrect)
		assert.False(t, tf.Grade("false").IsCorrect)
	})
}

func TestQuestion_Public(t *testing.T) {
	question := &Question{
		ID:            7,
		QuizID:        3,
		Type:          MultipleChoice,
		Content:       "Pick one",
		CorrectAnswer: "a",
		Points:        2,
		Explanation:   "Because a.",
		OrderIndex:    1,
	}

	public := question.Public()

	assert.Empty(t, public.CorrectAnswer)
	assert.Empty(t, public.Explanation)
	assert.Equal(t, question.ID, public.ID)
	assert.Equal(t, question.Content, public.Content)
	assert.Equal(t, question.Points, public.Points)

	// The original is untouched.
	assert.Equal(t, "a", question.CorrectAnswer)
	assert.Equal(t, "Because a.", question.Explanation)
}
