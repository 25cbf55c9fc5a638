package models

import (
	"time"
)

type QuizStatus string

const (
	QuizDraft    QuizStatus = "draft"
	QuizLive     QuizStatus = "live"
	QuizArchived QuizStatus = "archived"
)

type Quiz struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:255;index" validate:"required,min=1,max=255"`
	Description string     `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	CreatorID   string     `json:"creatorId" gorm:"not null;size:255;index"`
	Status      QuizStatus `json:"status" gorm:"not null;default:draft;index" validate:"omitempty,quiz_status"`
	TimeLimit   *int       `json:"timeLimit,omitempty" validate:"omitempty,min=1,max=480"` // Minutes
	MaxAttempts int        `json:"maxAttempts" gorm:"not null;default:1" validate:"omitempty,min=1"`
	IsPublic    bool       `json:"isPublic" gorm:"not null;default:false;index"`

	// Derived from the current question set, recomputed on every question
	// write. Never hand-edited.
	TotalQuestions int `json:"totalQuestions" gorm:"not null;default:0"`
	TotalPoints    int `json:"totalPoints" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	Responses []Response `json:"-" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// CanAccess reports whether a user may view or attempt this quiz. The
// creator always has access regardless of status; everyone else only
// sees live public quizzes.
func (q *Quiz) CanAccess(userID string) bool {
	if q.CreatorID == userID {
		return true
	}
	return q.Status == QuizLive && q.IsPublic
}

// IsOwner reports whether the user created this quiz. Mutation, statistics
// and response listing require ownership, not just access.
func (q *Quiz) IsOwner(userID string) bool {
	return q.CreatorID == userID
}
