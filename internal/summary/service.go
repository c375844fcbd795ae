package summary

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"medsummary/internal/chart"
)

// PDFContentType is the only MIME type accepted for uploads.
const PDFContentType = "application/pdf"

var (
	ErrInvalidFileType = errors.New("summary: file is not a PDF")
	ErrMissingFile     = errors.New("summary: no file provided")
	ErrFileTooLarge    = errors.New("summary: file exceeds the upload limit")
)

type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// SummarizerClient talks to the external summarization service.
type SummarizerClient interface {
	Summarize(ctx context.Context, fileName string, pdf []byte) (json.RawMessage, error)
}

// ReportRenderer exports a results view as a document.
type ReportRenderer interface {
	Render(ctx context.Context, v View) ([]byte, error)
}

type Service interface {
	ProcessUpload(ctx context.Context, upload Upload) (json.RawMessage, error)
	BuildView(raw []byte) (View, error)
	BuildReport(ctx context.Context, raw []byte) ([]byte, error)
}

type service struct {
	client      SummarizerClient
	report      ReportRenderer
	renderChart ChartRenderFunc
	log         *zap.Logger
}

func NewService(client SummarizerClient, report ReportRenderer, log *zap.Logger) Service {
	return &service{
		client:      client,
		report:      report,
		renderChart: chart.RenderSpec,
		log:         log,
	}
}

// ProcessUpload forwards a PDF to the summarizer and returns its response as-is.
// Anything that is not declared as application/pdf is rejected before any
// network traffic.
func (s *service) ProcessUpload(ctx context.Context, upload Upload) (json.RawMessage, error) {
	if upload.ContentType != PDFContentType {
		return nil, ErrInvalidFileType
	}

	raw, err := s.client.Summarize(ctx, upload.FileName, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("summarize %q: %w", upload.FileName, err)
	}
	return raw, nil
}

func (s *service) BuildView(raw []byte) (View, error) {
	sum, err := Decode(raw)
	if err != nil {
		return View{}, err
	}
	if len(sum.Dropped) > 0 {
		s.log.Debug("summary fields skipped", zap.Strings("fields", sum.Dropped))
	}

	v, errs := BuildView(sum, s.renderChart)
	for _, err := range errs {
		s.log.Warn("chart skipped", zap.Error(err))
	}
	return v, nil
}

func (s *service) BuildReport(ctx context.Context, raw []byte) ([]byte, error) {
	sum, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	// charts are interactive HTML and have no place in the document
	v, _ := BuildView(sum, nil)

	doc, err := s.report.Render(ctx, v)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return doc, nil
}
