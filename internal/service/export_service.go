package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/civic-triage-api/internal/dto"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
	"github.com/noah-isme/civic-triage-api/pkg/export"
)

var registerHeaders = []string{"ID", "Created", "Department", "Topic", "Location", "Status", "Priority", "Upvotes", "Score"}

var registerColumnWeights = []float64{2.2, 1.6, 1.4, 2.4, 2.2, 1.1, 0.8, 0.8, 0.8}

type municipalityComplaintLister interface {
	ListByMunicipality(ctx context.Context, municipalityID string) ([]models.Complaint, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, weights ...float64) ([]byte, error)
}

// ExportService renders a municipality's complaint register.
type ExportService struct {
	complaints     municipalityComplaintLister
	municipalities municipalityFinder
	authorizer     *MunicipalityAuthorizer
	csv            csvRenderer
	pdf            pdfRenderer
	logger         *zap.Logger
	now            func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers default to the pkg/export implementations.
func NewExportService(complaints municipalityComplaintLister, municipalities municipalityFinder, authorizer *MunicipalityAuthorizer, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if authorizer == nil {
		authorizer = NewMunicipalityAuthorizer(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		complaints:     complaints,
		municipalities: municipalities,
		authorizer:     authorizer,
		csv:            csv,
		pdf:            pdf,
		logger:         logger,
		now:            time.Now,
	}
}

// ExportComplaints renders every complaint of the municipality with its current score.
func (s *ExportService) ExportComplaints(ctx context.Context, municipalityID string, format dto.ExportFormat, actor *models.JWTClaims) (*dto.ExportFile, error) {
	format = dto.ExportFormat(strings.ToLower(string(format)))
	if format == "" {
		format = dto.ExportFormatCSV
	}
	if format != dto.ExportFormatCSV && format != dto.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err := s.authorizer.Authorize(ctx, actor, &municipalityID); err != nil {
		return nil, err
	}
	municipality, err := s.municipalities.FindByID(ctx, municipalityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "municipality not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load municipality")
	}
	complaints, err := s.complaints.ListByMunicipality(ctx, municipalityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints for export")
	}

	now := s.now()
	dataset := buildRegisterDataset(complaints, now)
	stamp := now.UTC().Format("20060102")

	var (
		content     []byte
		contentType string
	)
	switch format {
	case dto.ExportFormatPDF:
		title := fmt.Sprintf("Complaint register - %s", municipality.Name)
		content, err = s.pdf.Render(dataset, title, registerColumnWeights...)
		contentType = "application/pdf"
	default:
		content, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render complaint register")
	}
	s.logger.Info("complaint register exported",
		zap.String("municipality_id", municipalityID),
		zap.String("format", string(format)),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("complaints-%s-%s.%s", municipalityID, stamp, format),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func buildRegisterDataset(complaints []models.Complaint, now time.Time) export.Dataset {
	rows := make([]map[string]string, 0, len(complaints))
	for _, c := range complaints {
		rows = append(rows, map[string]string{
			"ID":         c.ID,
			"Created":    c.CreatedAt.UTC().Format("2006-01-02 15:04"),
			"Department": string(c.Department),
			"Topic":      c.Topic,
			"Location":   c.Location,
			"Status":     string(c.Status),
			"Priority":   c.Priority.StringFixed(2),
			"Upvotes":    strconv.Itoa(c.UpvoteCount),
			"Score":      strconv.FormatFloat(ScoreComplaint(c, now), 'f', 2, 64),
		})
	}
	return export.Dataset{Headers: registerHeaders, Rows: rows}
}
