package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/availability-api/internal/dto"
	"github.com/noah-isme/availability-api/pkg/dateutil"
	appErrors "github.com/noah-isme/availability-api/pkg/errors"
	"github.com/noah-isme/availability-api/pkg/export"
	"github.com/noah-isme/availability-api/pkg/timenum"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var overlayExportHeaders = []string{"Day", "Date", "Start", "End", "Hours Offset", "Hours Length", "Summary"}

type overlayResolver interface {
	GetEventOverlay(ctx context.Context, q dto.OverlayQuery) (*dto.OverlayResponse, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult is a rendered overlay ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders event overlays as CSV or PDF tables.
type ExportService struct {
	overlays overlayResolver
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get the defaults.
func NewExportService(overlays overlayResolver, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{overlays: overlays, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export resolves the overlay for q and renders it in the requested format.
func (s *ExportService) Export(ctx context.Context, q dto.OverlayExportQuery) (*ExportResult, error) {
	format := strings.ToLower(strings.TrimSpace(q.Format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	resp, _, err := s.overlays.GetEventOverlay(ctx, q.OverlayQuery)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(resp.Timezone)
	if err != nil {
		loc = time.UTC
	}
	dataset := overlayDataset(resp, loc)

	var payload []byte
	contentType := "text/csv"
	switch format {
	case ExportFormatPDF:
		contentType = "application/pdf"
		payload, err = s.pdf.Render(dataset, fmt.Sprintf("Availability %s", resp.Label))
	default:
		payload, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to render export")
	}

	s.logger.Info("overlay exported",
		zap.String("event_id", resp.EventID),
		zap.String("format", format),
		zap.Int("rows", len(dataset.Rows)),
	)
	return &ExportResult{
		Filename:    s.buildFilename(resp.EventID, q.WeekOffset, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

// overlayDataset flattens per-day slots into one row per clipped block. Days
// without busy blocks still get a row so the table lists every day.
func overlayDataset(resp *dto.OverlayResponse, loc *time.Location) export.Dataset {
	rows := make([]map[string]string, 0, resp.Total+len(resp.Days))
	for i, day := range resp.Days {
		dayLabel := fmt.Sprintf("%d", i+1)
		if len(day) == 0 {
			rows = append(rows, map[string]string{"Day": dayLabel, "Summary": "free"})
			continue
		}
		for _, block := range day {
			start := block.Start.In(loc)
			end := block.End.In(loc)
			rows = append(rows, map[string]string{
				"Day":          dayLabel,
				"Date":         dateutil.WeekdayAbbreviation(start.Weekday()) + " " + dateutil.ISODate(start, false),
				"Start":        timenum.Text(timenum.FromTime(start, loc)),
				"End":          timenum.Text(timenum.FromTime(end, loc)),
				"Hours Offset": fmt.Sprintf("%.2f", block.HoursOffset),
				"Hours Length": fmt.Sprintf("%.2f", block.HoursLength),
				"Summary":      block.Summary,
			})
		}
	}
	caption := fmt.Sprintf("Busy blocks %s to %s (%s)",
		resp.TimeMin.In(loc).Format("2006-01-02 15:04"),
		resp.TimeMax.In(loc).Format("2006-01-02 15:04"),
		loc.String())
	return export.Dataset{Headers: overlayExportHeaders, Rows: rows, Caption: caption}
}

func (s *ExportService) buildFilename(eventID string, weekOffset int, format string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("overlay_%s_w%d_%s.%s", sanitizeFilename(eventID), weekOffset, timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
