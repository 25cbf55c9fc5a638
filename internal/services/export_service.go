package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/quizdeck/quiz-service/internal/models"
	"github.com/quizdeck/quiz-service/internal/repositories"
)

// ===== SERVICE INTERFACE =====

// ExportService renders the responses of a quiz as a downloadable file.
// Results belong to the quiz creator; nobody else can export them.
type ExportService interface {
	ExportResultsToExcel(ctx context.Context, quizID uint, userID string) ([]byte, error)
	ExportResultsToCSV(ctx context.Context, quizID uint, userID string) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

var resultHeaders = []string{
	"User ID", "Attempt", "Score", "Total Points", "Percentage",
	"Time Taken (s)", "Started At", "Submitted At", "Completed",
}

func (s *exportService) ExportResultsToExcel(ctx context.Context, quizID uint, userID string) ([]byte, error) {
	responses, err := s.getResultsForExport(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range resultHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, response := range responses {
		for colIndex, value := range resultRow(response) {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported quiz results to Excel", "quiz_id", quizID, "rows", len(responses))

	return buf.Bytes(), nil
}

func (s *exportService) ExportResultsToCSV(ctx context.Context, quizID uint, userID string) ([]byte, error) {
	responses, err := s.getResultsForExport(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(resultHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, response := range responses {
		record := make([]string, 0, len(resultHeaders))
		for _, value := range resultRow(response) {
			record = append(record, fmt.Sprintf("%v", value))
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.Info("Exported quiz results to CSV", "quiz_id", quizID, "rows", len(responses))

	return buf.Bytes(), nil
}

// ===== HELPERS =====

func (s *exportService) getResultsForExport(ctx context.Context, quizID uint, userID string) ([]*models.Response, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.IsOwner(userID) {
		return nil, NewPermissionError(userID, quizID, "quiz", "export_results", "only the creator can export quiz results")
	}

	responses, _, err := s.repo.Response().GetByQuiz(ctx, quizID, repositories.ResponseFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to get responses: %w", err)
	}

	return responses, nil
}

func resultRow(response *models.Response) []interface{} {
	timeTaken := ""
	if response.TimeTaken != nil {
		timeTaken = strconv.Itoa(*response.TimeTaken)
	}

	startedAt := ""
	if response.StartedAt != nil {
		startedAt = response.StartedAt.Format("2006-01-02 15:04:05")
	}

	return []interface{}{
		response.UserID,
		response.AttemptNumber,
		response.Score,
		response.TotalPoints,
		response.Percentage,
		timeTaken,
		startedAt,
		response.SubmittedAt.Format("2006-01-02 15:04:05"),
		response.IsCompleted,
	}
}
