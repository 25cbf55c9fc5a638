package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "mcq"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

type Question struct {
	ID      uint         `json:"id" gorm:"primaryKey"`
	QuizID  uint         `json:"quizId" gorm:"not null;index:idx_questions_quiz_order,priority:1"`
	Type    QuestionType `json:"type" gorm:"not null;default:mcq" validate:"required,question_type"`
	Content string       `json:"content" gorm:"not null;type:text" validate:"required,min=1"`

	// Option key to display text. MCQ requires at least two entries,
	// true/false exactly the "true" and "false" keys, short answer none.
	// CorrectAnswer is validated against the key set at write time.
	Options datatypes.JSONType[map[string]string] `json:"options,omitempty" gorm:"type:jsonb"`

	CorrectAnswer string `json:"correctAnswer,omitempty" gorm:"not null" validate:"required"`
	Points        int    `json:"points" gorm:"not null;default:1" validate:"omitempty,min=1,max=100"`
	Explanation   string `json:"explanation,omitempty" validate:"omitempty,max=500"`
	OrderIndex    int    `json:"orderIndex" gorm:"not null;index:idx_questions_quiz_order,priority:2" validate:"min=0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Question) TableName() string {
	return "questions"
}

// GradeResult is the outcome of grading a single submitted answer.
type GradeResult struct {
	IsCorrect     bool   `json:"isCorrect"`
	PointsEarned  int    `json:"pointsEarned"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
}

// Grade compares a submitted answer against the correct one: a
// case-insensitive exact string match with no whitespace normalization,
// for every question type. Full points on a match, zero otherwise.
func (q *Question) Grade(submitted string) GradeResult {
	isCorrect := strings.EqualFold(submitted, q.CorrectAnswer)

	points := 0
	if isCorrect {
		points = q.Points
	}

	return GradeResult{
		IsCorrect:     isCorrect,
		PointsEarned:  points,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
	}
}

// Public returns a copy safe to serve to quiz takers before submission:
// the correct answer and explanation are stripped.
func (q *Question) Public() *Question {
	pub := *q
	pub.CorrectAnswer = ""
	pub.Explanation = ""
	return &pub
}
