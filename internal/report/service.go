package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/signintech/gopdf"
	"go.uber.org/zap"

	"medsummary/internal/summary"
)

const (
	fontFamily = "DejaVu"

	marginX     = 40.0
	marginTop   = 40.0
	pageBottom  = 800.0
	textWidth   = 515.0
	lineHeight  = 14.0
	blockGap    = 10.0
	headingSize = 14
	bodySize    = 11
)

var ErrNoFont = errors.New("report: no font could be loaded")

// Service renders a results view as a PDF document.
type Service struct {
	fontPaths []string
	log       *zap.Logger
	now       func() time.Time
}

func NewService(fontPaths []string, log *zap.Logger) *Service {
	return &Service{
		fontPaths: fontPaths,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) Render(ctx context.Context, v summary.View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := s.loadFont(pdf); err != nil {
		return nil, err
	}

	d := &document{pdf: pdf}
	d.setY(marginTop)
	d.font(20)
	d.line("Medical Report Summary")
	d.br(8)
	d.font(9)
	d.line(fmt.Sprintf("Generated: %s", s.now().Format("02.01.2006 15:04")))
	d.br(blockGap)

	writeView(d, v)

	if d.err != nil {
		return nil, fmt.Errorf("failed to lay out PDF: %w", d.err)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// loadFont registers the first font file that loads.
func (s *Service) loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont(fontFamily, path); err != nil {
			lastErr = err
			continue
		}
		s.log.Debug("report font loaded", zap.String("path", path))
		return nil
	}
	if lastErr == nil {
		return ErrNoFont
	}
	return fmt.Errorf("%w: %v", ErrNoFont, lastErr)
}

func writeView(d *document, v summary.View) {
	if v.InsufficientData {
		d.heading("Not Enough Medical Data")
		d.paragraph(summary.MsgNotEnoughData)
		return
	}
	if v.Empty() {
		d.paragraph("No sections found in summary.")
		return
	}

	if p := v.Profile; p != nil {
		d.heading("Patient Profile")
		if p.Name != "" {
			d.paragraph(p.Name)
		}
		d.rows(p.Rows)
	}
	if v.ChiefComplaint != "" {
		d.heading("Chief Complaint")
		d.paragraph(v.ChiefComplaint)
	}
	if v.DiagnosisDetails != "" {
		d.heading("Diagnosis")
		d.paragraph(v.DiagnosisDetails)
	}
	if len(v.KeyFindings) > 0 {
		d.heading("Key Findings")
		for _, f := range v.KeyFindings {
			text := f.Text
			if f.Page != "" {
				text += " (p. " + f.Page + ")"
			}
			d.paragraph("- " + text)
		}
	}
	if len(v.TreatmentPlan) > 0 {
		d.heading("Treatment Plan")
		for i, step := range v.TreatmentPlan {
			d.paragraph(fmt.Sprintf("%d. %s", i+1, step))
		}
	}
	if len(v.Vitals) > 0 {
		d.heading("Vital Signs")
		d.rows(v.Vitals)
	}
	if len(v.Medications) > 0 {
		d.heading("Medications")
		for _, m := range v.Medications {
			details := make([]string, 0, len(m.Details))
			for _, r := range m.Details {
				details = append(details, r.Label+": "+r.Value)
			}
			line := "- " + m.Name
			if len(details) > 0 {
				line += " (" + strings.Join(details, ", ") + ")"
			}
			d.paragraph(line)
		}
	}
	if len(v.Timeline) > 0 {
		d.heading("Timeline")
		for _, e := range v.Timeline {
			if e.Date != "" {
				d.paragraph(e.Date + ": " + e.Event)
			} else {
				d.paragraph(e.Event)
			}
		}
	}
	if g := v.Guidance; g != nil {
		d.heading("Personalized Guidance")
		for _, step := range g.NextSteps {
			d.paragraph("- " + step)
		}
		for _, tip := range g.Tips {
			switch {
			case tip.Topic != "" && tip.Advice != "":
				d.paragraph(tip.Topic + ": " + tip.Advice)
			default:
				d.paragraph(tip.Topic + tip.Advice)
			}
		}
		for _, qa := range g.FAQ {
			d.paragraph("Q: " + qa.Question)
			if qa.Answer != "" {
				d.paragraph("A: " + qa.Answer)
			}
		}
	}
	for _, block := range v.Legacy {
		d.heading(block.Title)
		for _, p := range block.Points {
			text := p.Text
			if len(p.Pages) > 0 {
				text += " (p. " + strings.Join(p.Pages, ", ") + ")"
			}
			d.paragraph("- " + text)
		}
	}
	if v.RawSummary != "" {
		d.heading("Summary")
		for _, para := range strings.Split(v.RawSummary, "\n") {
			if strings.TrimSpace(para) != "" {
				d.paragraph(para)
			}
		}
		if v.Note != "" {
			d.font(9)
			d.paragraph(v.Note)
		}
	}
}

// document wraps gopdf with page breaks and keeps the first layout error.
type document struct {
	pdf *gopdf.GoPdf
	err error
}

func (d *document) font(size int) {
	if d.err != nil {
		return
	}
	d.err = d.pdf.SetFont(fontFamily, "", size)
}

func (d *document) setY(y float64) {
	d.pdf.SetX(marginX)
	d.pdf.SetY(y)
}

func (d *document) br(h float64) {
	d.pdf.Br(h)
	d.pdf.SetX(marginX)
	if d.pdf.GetY() > pageBottom {
		d.pdf.AddPage()
		d.setY(marginTop)
	}
}

func (d *document) line(text string) {
	if d.err != nil {
		return
	}
	d.pdf.SetX(marginX)
	d.err = d.pdf.Cell(nil, text)
	d.br(lineHeight)
}

func (d *document) heading(title string) {
	d.br(blockGap)
	d.font(headingSize)
	d.line(title)
	d.br(2)
	d.font(bodySize)
}

func (d *document) paragraph(text string) {
	if d.err != nil {
		return
	}
	lines, err := d.pdf.SplitText(text, textWidth)
	if err != nil {
		// SplitText fails on text it cannot measure; keep the raw line
		lines = []string{text}
	}
	for _, l := range lines {
		d.line(l)
	}
	d.br(2)
}

func (d *document) rows(rows []summary.Row) {
	for _, r := range rows {
		d.paragraph(r.Label + ": " + r.Value)
	}
}
