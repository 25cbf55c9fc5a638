package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quizdeck/quiz-service/internal/auth"
	"github.com/quizdeck/quiz-service/internal/services"
	"github.com/quizdeck/quiz-service/internal/utils"
)

type HandlerManager struct {
	quizHandler     *QuizHandler
	questionHandler *QuestionHandler
	responseHandler *ResponseHandler
	resolver        auth.IdentityResolver
	logger          utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	resolver auth.IdentityResolver,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:     NewQuizHandler(serviceManager.Quiz(), serviceManager.Leaderboard(), serviceManager.Export(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), logger),
		responseHandler: NewResponseHandler(serviceManager.Response(), logger),
		resolver:        resolver,
		logger:          logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
	}))

	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes, all authenticated
	v1 := router.Group("/api/v1")
	v1.Use(auth.Middleware(hm.resolver, utils.ToSlogLogger(hm.logger)))
	{
		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.CreateQuiz)
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/mine", hm.quizHandler.GetMyQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
			quizzes.GET("/:id/statistics", hm.quizHandler.GetQuizStatistics)
			quizzes.GET("/:id/leaderboard", hm.quizHandler.GetLeaderboard)
			quizzes.GET("/:id/export", hm.quizHandler.ExportQuizResults)

			// Question management within a quiz
			quizzes.POST("/:id/questions", hm.questionHandler.AddQuestion)
			quizzes.GET("/:id/questions", hm.questionHandler.GetQuizQuestions)
			quizzes.PUT("/:id/questions/reorder", hm.questionHandler.ReorderQuestions)

			// Submissions
			quizzes.POST("/:id/responses", hm.responseHandler.SubmitResponse)
			quizzes.GET("/:id/responses", hm.responseHandler.GetQuizResponses)
			quizzes.GET("/:id/responses/mine", hm.responseHandler.GetMyLatestResponse)
		}

		// Question routes
		questions := v1.Group("/questions")
		{
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		// Response routes
		responses := v1.Group("/responses")
		{
			responses.GET("/mine", hm.responseHandler.GetMyResponses)
			responses.GET("/:id", hm.responseHandler.GetResponse)
			responses.DELETE("/:id", hm.responseHandler.DeleteResponse)
		}
	}
}
