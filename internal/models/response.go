package models

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// FeedbackEntry is the per-question grading outcome attached to a response.
// A response carries exactly one entry per quiz question, in question order,
// including questions the user never answered.
type FeedbackEntry struct {
	QuestionID    uint   `json:"questionId"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Points        int    `json:"points"`
	Explanation   string `json:"explanation,omitempty"`
}

type Response struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	QuizID uint   `json:"quizId" gorm:"not null;index:idx_responses_quiz_user,priority:1;uniqueIndex:idx_responses_attempt,priority:1"`
	UserID string `json:"userId" gorm:"not null;size:255;index:idx_responses_quiz_user,priority:2;uniqueIndex:idx_responses_attempt,priority:2"`

	// AttemptNumber is assigned inside the submit transaction. The unique
	// index on (quiz_id, user_id, attempt_number) makes two racing
	// submissions collide instead of both slipping past the attempt count.
	AttemptNumber int `json:"attemptNumber" gorm:"not null;default:1;uniqueIndex:idx_responses_attempt,priority:3"`

	// Question ID (decimal string) to submitted answer text.
	Answers datatypes.JSONType[map[string]string] `json:"answers" gorm:"type:jsonb"`

	Score       int        `json:"score" gorm:"not null;default:0"`
	TotalPoints int        `json:"totalPoints" gorm:"not null;default:0"`
	Percentage  float64    `json:"percentage"`
	TimeTaken   *int       `json:"timeTaken,omitempty"` // Seconds
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	SubmittedAt time.Time  `json:"submittedAt"`
	IsCompleted bool       `json:"isCompleted" gorm:"not null;default:true;index"`

	Feedback datatypes.JSONSlice[FeedbackEntry] `json:"feedback" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Response) TableName() string {
	return "responses"
}

// ScorePercentage returns score over total as a percentage rounded to two
// decimals, or zero when there are no points to earn.
func ScorePercentage(score, totalPoints int) float64 {
	if totalPoints <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(totalPoints)*100*100) / 100
}
