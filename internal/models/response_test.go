package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorePercentage(t *testing.T) {
	tests := []struct {
		name        string
		score       int
		totalPoints int
		want        float64
	}{
		{"perfect score", 6, 6, 100},
		{"partial score rounds to two decimals", 5, 6, 83.33},
		{"one third", 1, 3, 33.33},
		{"two thirds rounds up", 2, 3, 66.67},
		{"zero score", 0, 10, 0},
		{"no points to earn", 3, 0, 0},
		{"negative total treated as empty", 3, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScorePercentage(tt.score, tt.totalPoints), 0.0001)
		})
	}
}
