package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents different types of domain events
type EventType string

const (
	// Quiz lifecycle events
	EventQuizPublished EventType = "quiz.published"
	EventQuizArchived  EventType = "quiz.archived"
	EventQuizDeleted   EventType = "quiz.deleted"

	// Response events
	EventResponseSubmitted EventType = "response.submitted"
	EventResponseDeleted   EventType = "response.deleted"
)

// QuizEvent is the base envelope for all events emitted by the service
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const eventSource = "quiz-service"

// Quiz lifecycle event payloads

type QuizPublishedEvent struct {
	QuizID         uint   `json:"quiz_id"`
	Title          string `json:"title"`
	CreatorID      string `json:"creator_id"`
	IsPublic       bool   `json:"is_public"`
	TotalQuestions int    `json:"total_questions"`
	TotalPoints    int    `json:"total_points"`
	TimeLimit      *int   `json:"time_limit,omitempty"` // minutes
	MaxAttempts    int    `json:"max_attempts"`
}

type QuizArchivedEvent struct {
	QuizID     uint      `json:"quiz_id"`
	Title      string    `json:"title"`
	CreatorID  string    `json:"creator_id"`
	ArchivedAt time.Time `json:"archived_at"`
}

type QuizDeletedEvent struct {
	QuizID           uint   `json:"quiz_id"`
	Title            string `json:"title"`
	CreatorID        string `json:"creator_id"`
	ResponsesDeleted int64  `json:"responses_deleted"`
}

// Response event payloads

type ResponseSubmittedEvent struct {
	ResponseID    uint      `json:"response_id"`
	QuizID        uint      `json:"quiz_id"`
	QuizTitle     string    `json:"quiz_title"`
	UserID        string    `json:"user_id"`
	AttemptNumber int       `json:"attempt_number"`
	Score         int       `json:"score"`
	TotalPoints   int       `json:"total_points"`
	Percentage    float64   `json:"percentage"`
	TimeTaken     *int      `json:"time_taken,omitempty"` // seconds
	SubmittedAt   time.Time `json:"submitted_at"`
}

type ResponseDeletedEvent struct {
	ResponseID uint   `json:"response_id"`
	QuizID     uint   `json:"quiz_id"`
	UserID     string `json:"user_id"`
}

// Event factory functions

func NewQuizPublishedEvent(quizID uint, title, creatorID string, isPublic bool, totalQuestions, totalPoints int, timeLimit *int, maxAttempts int) *QuizEvent {
	return &QuizEvent{
		ID:        watermill.NewUUID(),
		Type:      EventQuizPublished,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: QuizPublishedEvent{
			QuizID:         quizID,
			Title:          title,
			CreatorID:      creatorID,
			IsPublic:       isPublic,
			TotalQuestions: totalQuestions,
			TotalPoints:    totalPoints,
			TimeLimit:      timeLimit,
			MaxAttempts:    maxAttempts,
		},
	}
}

func NewQuizArchivedEvent(quizID uint, title, creatorID string) *QuizEvent {
	return &QuizEvent{
		ID:        watermill.NewUUID(),
		Type:      EventQuizArchived,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: QuizArchivedEvent{
			QuizID:     quizID,
			Title:      title,
			CreatorID:  creatorID,
			ArchivedAt: time.Now(),
		},
	}
}

func NewQuizDeletedEvent(quizID uint, title, creatorID string, responsesDeleted int64) *QuizEvent {
	return &QuizEvent{
		ID:        watermill.NewUUID(),
		Type:      EventQuizDeleted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: QuizDeletedEvent{
			QuizID:           quizID,
			Title:            title,
			CreatorID:        creatorID,
			ResponsesDeleted: responsesDeleted,
		},
	}
}

func NewResponseSubmittedEvent(responseID, quizID uint, quizTitle, userID string, attemptNumber, score, totalPoints int, percentage float64, timeTaken *int, submittedAt time.Time) *QuizEvent {
	return &QuizEvent{
		ID:        watermill.NewUUID(),
		Type:      EventResponseSubmitted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: ResponseSubmittedEvent{
			ResponseID:    responseID,
			QuizID:        quizID,
			QuizTitle:     quizTitle,
			UserID:        userID,
			AttemptNumber: attemptNumber,
			Score:         score,
			TotalPoints:   totalPoints,
			Percentage:    percentage,
			TimeTaken:     timeTaken,
			SubmittedAt:   submittedAt,
		},
	}
}

func NewResponseDeletedEvent(responseID, quizID uint, userID string) *QuizEvent {
	return &QuizEvent{
		ID:        watermill.NewUUID(),
		Type:      EventResponseDeleted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data: ResponseDeletedEvent{
			ResponseID: responseID,
			QuizID:     quizID,
			UserID:     userID,
		},
	}
}
