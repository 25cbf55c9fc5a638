package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizdeck/quiz-service/internal/repositories"
	"github.com/quizdeck/quiz-service/internal/services"
	"github.com/quizdeck/quiz-service/internal/utils"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, logger utils.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// SubmitResponse submits and grades a quiz attempt
// @Summary Submit response
// @Description Grades the submitted answers and records the attempt
// @Tags responses
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param submission body services.SubmitResponseRequest true "Submitted answers"
// @Success 201 {object} services.SubmitResponseResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /quizzes/{id}/responses [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	var req services.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		return
	}

	result, err := h.responseService.Submit(c.Request.Context(), quizID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetQuizResponses lists all responses for a quiz (creator only)
// @Summary List quiz responses
// @Tags responses
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Param completed query bool false "Filter by completion state"
// @Success 200 {object} services.ResponseListResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/responses [get]
func (h *ResponseHandler) GetQuizResponses(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		return
	}

	filters := repositories.ResponseFilters{
		Completed: parseQueryBool(c, "completed"),
		Limit:     parseQueryInt(c, "limit", 0),
		Offset:    parseQueryInt(c, "offset", 0),
	}

	result, err := h.responseService.GetByQuiz(c.Request.Context(), quizID, filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyLatestResponse returns the caller's most recent attempt on a quiz
// @Summary My latest response
// @Tags responses
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} services.ResponseDetail
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id}/responses/mine [get]
func (h *ResponseHandler) GetMyLatestResponse(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		return
	}

	detail, err := h.responseService.GetLatestForQuiz(c.Request.Context(), quizID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetMyResponses lists the caller's responses across all quizzes
// @Summary My responses
// @Tags responses
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.UserResponseListResponse
// @Router /responses/mine [get]
func (h *ResponseHandler) GetMyResponses(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}

	filters := repositories.ResponseFilters{
		Limit:  parseQueryInt(c, "limit", 0),
		Offset: parseQueryInt(c, "offset", 0),
	}

	result, err := h.responseService.GetByUser(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResponse retrieves a single graded attempt with its rank
// @Summary Get response
// @Description Visible to the submitter and to the quiz creator
// @Tags responses
// @Produce json
// @Param id path uint true "Response ID"
// @Success 200 {object} services.ResponseDetail
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id} [get]
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		return
	}

	detail, err := h.responseService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteResponse deletes an attempt so the quiz can be retaken
// @Summary Delete response
// @Description Submitter-only; rejected when the quiz allows a single attempt
// @Tags responses
// @Produce json
// @Param id path uint true "Response ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /responses/{id} [delete]
func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := currentUserID(c)
	if userID == "" {
		return
	}

	if err := h.responseService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Response deleted successfully",
	})
}
