package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuiz_CanAccess(t *testing.T) {
	tests := []struct {
		name     string
		status   QuizStatus
		isPublic bool
		userID   string
		want     bool
	}{
		{"owner sees own draft", QuizDraft, false, "creator-1", true},
		{"owner sees own archived", QuizArchived, true, "creator-1", true},
		{"stranger sees live public", QuizLive, true, "user-2", true},
		{"stranger blocked from live private", QuizLive, false, "user-2", false},
		{"stranger blocked from draft public", QuizDraft, true, "user-2", false},
		{"stranger blocked from archived public", QuizArchived, true, "user-2", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiz := &Quiz{CreatorID: "creator-1", Status: tt.status, IsPublic: tt.isPublic}
			assert.Equal(t, tt.want, quiz.CanAccess(tt.userID))
		})
	}
}

func TestQuiz_IsOwner(t *testing.T) {
	quiz := &Quiz{CreatorID: "creator-1"}
	assert.True(t, quiz.IsOwner("creator-1"))
	assert.False(t, quiz.IsOwner("user-2"))
	assert.False(t, quiz.IsOwner(""))
}
