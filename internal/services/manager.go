package services

import (
	"log/slog"

	"github.com/quizdeck/quiz-service/internal/cache"
	"github.com/quizdeck/quiz-service/internal/events"
	"github.com/quizdeck/quiz-service/internal/repositories"
	"github.com/quizdeck/quiz-service/internal/validator"
)

// ServiceManager bundles the domain services so handlers can be wired from
// a single dependency.
type ServiceManager interface {
	Quiz() QuizService
	Question() QuestionService
	Response() ResponseService
	Leaderboard() LeaderboardService
	Export() ExportService
}

type serviceManager struct {
	quiz        QuizService
	question    QuestionService
	response    ResponseService
	leaderboard LeaderboardService
	export      ExportService
}

func NewServiceManager(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, cacheService cache.CacheService) ServiceManager {
	return &serviceManager{
		quiz:        NewQuizService(repo, logger, v, publisher, cacheService),
		question:    NewQuestionService(repo, logger, v),
		response:    NewResponseService(repo, logger, v, publisher, cacheService),
		leaderboard: NewLeaderboardService(repo, logger, cacheService),
		export:      NewExportService(repo, logger),
	}
}

func (m *serviceManager) Quiz() QuizService               { return m.quiz }
func (m *serviceManager) Question() QuestionService       { return m.question }
func (m *serviceManager) Response() ResponseService       { return m.response }
func (m *serviceManager) Leaderboard() LeaderboardService { return m.leaderboard }
func (m *serviceManager) Export() ExportService           { return m.export }
