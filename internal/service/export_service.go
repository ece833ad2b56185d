package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorlink-api/internal/dto"
	"github.com/noah-isme/tutorlink-api/internal/models"
	appErrors "github.com/noah-isme/tutorlink-api/pkg/errors"
	"github.com/noah-isme/tutorlink-api/pkg/export"
)

type applicantRanker interface {
	RankApplicants(ctx context.Context, requestID string) ([]models.RankedApplication, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// ExportResult is a rendered ranking ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

var rankingHeaders = []string{"Rank", "Application", "Tutor", "Score", "Expertise", "Availability", "Format", "Budget", "Rating Bonus", "Applied At"}

// ExportService renders ranked applicant lists.
type ExportService struct {
	ranker    applicantRanker
	renderers map[string]datasetRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(ranker applicantRanker, csv, pdf datasetRenderer, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		ranker: ranker,
		renderers: map[string]datasetRenderer{
			dto.ExportFormatCSV: csv,
			dto.ExportFormatPDF: pdf,
		},
		validator: validate,
		logger:    logger,
	}
}

// ExportRanking ranks the request's applicants and renders them in the requested format.
// Ranking persists scores exactly as RankApplicants does.
func (s *ExportService) ExportRanking(ctx context.Context, requestID string, query dto.RankingExportQuery) (*ExportResult, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	format := query.Format
	if format == "" {
		format = dto.ExportFormatCSV
	}

	ranked, err := s.ranker.RankApplicants(ctx, requestID)
	if err != nil {
		return nil, err
	}

	renderer := s.renderers[format]
	body, err := renderer.Render(rankingDataset(requestID, ranked))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ranking export")
	}

	s.logger.Debug("ranking exported", zap.String("tutoring_request_id", requestID), zap.String("format", format), zap.Int("rows", len(ranked)))
	return &ExportResult{
		Filename:    fmt.Sprintf("ranking-%s.%s", requestID, format),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func rankingDataset(requestID string, ranked []models.RankedApplication) export.Dataset {
	rows := make([]map[string]string, 0, len(ranked))
	for i, app := range ranked {
		name := app.TutorProfile.DisplayName
		if name == "" {
			name = app.TutorProfile.ID
		}
		rows = append(rows, map[string]string{
			"Rank":         strconv.Itoa(i + 1),
			"Application":  app.ID,
			"Tutor":        name,
			"Score":        formatScore2(app.ScoreOrZero()),
			"Expertise":    formatScore2(app.Breakdown.Expertise),
			"Availability": formatScore2(app.Breakdown.Availability),
			"Format":       formatScore2(app.Breakdown.Format),
			"Budget":       formatScore2(app.Breakdown.Budget),
			"Rating Bonus": formatScore2(app.Breakdown.RatingBonus),
			"Applied At":   app.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Applicant ranking for request %s", requestID),
		Notes:   []string{fmt.Sprintf("Generated %s", time.Now().UTC().Format(time.RFC1123))},
		Headers: rankingHeaders,
		Rows:    rows,
	}
}

func formatScore2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
