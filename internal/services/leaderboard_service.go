package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizdeck/quiz-service/internal/cache"
	"github.com/quizdeck/quiz-service/internal/repositories"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	leaderboardCacheTTL     = 60 * time.Second
)

func leaderboardCacheKey(quizID uint, limit int) string {
	return fmt.Sprintf("leaderboard:quiz:%d:limit:%d", quizID, limit)
}

// leaderboardCachePattern matches every cached variant for a quiz. Used to
// invalidate after submissions and deletions.
func leaderboardCachePattern(quizID uint) string {
	return fmt.Sprintf("leaderboard:quiz:%d:*", quizID)
}

// ===== RESPONSE TYPES =====

type RankedEntry struct {
	Rank int `json:"rank"`
	repositories.LeaderboardEntry
}

type LeaderboardResponse struct {
	QuizID  uint           `json:"quizId"`
	Title   string         `json:"title"`
	Entries []*RankedEntry `json:"entries"`
}

// ===== SERVICE INTERFACE =====

type LeaderboardService interface {
	Get(ctx context.Context, quizID uint, limit int, userID string) (*LeaderboardResponse, error)
}

type leaderboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
	cache  cache.CacheService
}

func NewLeaderboardService(repo repositories.Repository, logger *slog.Logger, cacheService cache.CacheService) LeaderboardService {
	return &leaderboardService{
		repo:   repo,
		logger: logger,
		cache:  cacheService,
	}
}

// Get returns the top completed responses for a quiz, best score first and
// ties broken by faster time. The board of a public quiz is visible in any
// status; private boards only to the creator.
func (s *leaderboardService) Get(ctx context.Context, quizID uint, limit int, userID string) (*LeaderboardResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.IsPublic && !quiz.IsOwner(userID) {
		return nil, NewPermissionError(userID, quizID, "leaderboard", "read", "leaderboard of a private quiz is creator-only")
	}

	limit = normalizeLimit(limit, defaultLeaderboardLimit, maxLeaderboardLimit)

	key := leaderboardCacheKey(quizID, limit)
	var cached LeaderboardResponse
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Leaderboard cache read failed", "quiz_id", quizID, "error", err)
	}

	entries, err := s.repo.Response().Leaderboard(ctx, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	ranked := make([]*RankedEntry, 0, len(entries))
	for i, entry := range entries {
		ranked = append(ranked, &RankedEntry{
			Rank:             i + 1,
			LeaderboardEntry: *entry,
		})
	}

	response := &LeaderboardResponse{
		QuizID:  quizID,
		Title:   quiz.Title,
		Entries: ranked,
	}

	if err := s.cache.Set(ctx, key, response, leaderboardCacheTTL); err != nil {
		s.logger.Warn("Leaderboard cache write failed", "quiz_id", quizID, "error", err)
	}

	return response, nil
}
