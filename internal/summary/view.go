package summary

import (
	"fmt"
	"html/template"

	"medsummary/internal/chart"
)

// ChartRenderFunc renders one chart spec. An empty result means the chart is skipped.
type ChartRenderFunc func(chart.Spec) (template.HTML, error)

type Row struct {
	Label string
	Value string
}

type ProfileCard struct {
	Name string
	Rows []Row
}

type FindingItem struct {
	Text string
	Page string
}

type MedicationItem struct {
	Name    string
	Details []Row
}

type TimelineItem struct {
	Event string
	Date  string
}

type ChartItem struct {
	Title string
	HTML  template.HTML
}

type TipItem struct {
	Topic  string
	Advice string
}

type QAItem struct {
	Question string
	Answer   string
}

type GuidanceBlock struct {
	NextSteps []string
	Tips      []TipItem
	FAQ       []QAItem
}

type LegacyBlock struct {
	ID     string
	Title  string
	Points []LegacyPointItem
}

type LegacyPointItem struct {
	Text  string
	Pages []string
}

type Anchor struct {
	ID    string
	Title string
}

// View is the results dashboard. A nil or empty field means the block is not shown.
type View struct {
	InsufficientData bool

	Profile          *ProfileCard
	ChiefComplaint   string
	DiagnosisDetails string
	KeyFindings      []FindingItem
	TreatmentPlan    []string
	Vitals           []Row
	Medications      []MedicationItem
	Timeline         []TimelineItem
	Charts           []ChartItem
	Guidance         *GuidanceBlock
	Legacy           []LegacyBlock
	RawSummary       string
	Note             string

	// Contents lists the rendered blocks in page order.
	Contents []Anchor
}

// Empty reports whether there is no block to show.
func (v View) Empty() bool {
	return len(v.Contents) == 0
}

// BuildView maps a decoded summary onto the dashboard, leaving out every absent,
// null or sentinel value. Chart rendering errors skip the chart and are returned.
func BuildView(s *Summary, renderChart ChartRenderFunc) (View, []error) {
	if s == nil {
		return View{}, nil
	}
	if s.InsufficientData {
		return View{InsufficientData: true}, nil
	}

	var v View
	var errs []error
	add := func(id, title string) {
		v.Contents = append(v.Contents, Anchor{ID: id, Title: title})
	}

	if v.Profile = buildProfile(s.PatientProfile); v.Profile != nil {
		add("patient-profile", "Patient Profile")
	}

	if sec := s.Sections; sec != nil {
		if sec.ChiefComplaint.Present() {
			v.ChiefComplaint = sec.ChiefComplaint.String()
			add("chief-complaint", "Chief Complaint")
		}
		if sec.DiagnosisDetails.Present() {
			v.DiagnosisDetails = sec.DiagnosisDetails.String()
			add("diagnosis", "Diagnosis")
		}
		for _, f := range sec.KeyFindings {
			if !f.Text.Present() {
				continue
			}
			item := FindingItem{Text: f.Text.String()}
			if f.Page.Present() {
				item.Page = f.Page.String()
			}
			v.KeyFindings = append(v.KeyFindings, item)
		}
		if len(v.KeyFindings) > 0 {
			add("key-findings", "Key Findings")
		}
		if v.TreatmentPlan = presentStrings(sec.TreatmentPlan); len(v.TreatmentPlan) > 0 {
			add("treatment-plan", "Treatment Plan")
		}
		if v.Vitals = buildVitals(sec.VitalSigns); len(v.Vitals) > 0 {
			add("vital-signs", "Vital Signs")
		}
	}

	for _, m := range s.Medications {
		if !m.Name.Present() {
			continue
		}
		v.Medications = append(v.Medications, MedicationItem{
			Name: m.Name.String(),
			Details: presentRows(
				Row{"Dose", string(m.Dose)},
				Row{"Frequency", string(m.Frequency)},
				Row{"Type", string(m.Type)},
				Row{"Quantity", string(m.Quantity)},
			),
		})
	}
	if len(v.Medications) > 0 {
		add("medications", "Medications")
	}

	for _, e := range s.Timeline {
		if !e.Event.Present() {
			continue
		}
		item := TimelineItem{Event: e.Event.String()}
		if e.Date.Present() {
			item.Date = e.Date.String()
		}
		v.Timeline = append(v.Timeline, item)
	}
	if len(v.Timeline) > 0 {
		add("timeline", "Timeline")
	}

	if renderChart != nil {
		for i, spec := range s.Charts {
			spec = presentChart(spec)
			html, err := renderChart(spec)
			if err != nil {
				errs = append(errs, fmt.Errorf("chart %d: %w", i, err))
				continue
			}
			if html == "" {
				continue
			}
			v.Charts = append(v.Charts, ChartItem{Title: spec.Title, HTML: html})
		}
	}
	if len(v.Charts) > 0 {
		add("charts", "Charts")
	}

	if v.Guidance = buildGuidance(s.Guidance); v.Guidance != nil {
		add("guidance", "Personalized Guidance")
	}

	for i, sec := range s.Legacy {
		block := LegacyBlock{ID: fmt.Sprintf("section-%d", i)}
		if sec.Section.Present() {
			block.Title = sec.Section.String()
		}
		for _, p := range sec.Points {
			if !p.Text.Present() {
				continue
			}
			block.Points = append(block.Points, LegacyPointItem{
				Text:  p.Text.String(),
				Pages: presentStrings(p.Pages),
			})
		}
		if len(block.Points) == 0 {
			continue
		}
		if block.Title == "" {
			block.Title = fmt.Sprintf("Section %d", i+1)
		}
		v.Legacy = append(v.Legacy, block)
		add(block.ID, block.Title)
	}

	if s.RawSummary.Present() {
		v.RawSummary = s.RawSummary.String()
		if s.Note.Present() {
			v.Note = s.Note.String()
		}
		add("raw-summary", "Summary")
	}

	return v, errs
}

func buildProfile(p *PatientProfile) *ProfileCard {
	if p == nil {
		return nil
	}
	card := &ProfileCard{
		Rows: presentRows(
			Row{"Gender", string(p.Gender)},
			Row{"Age", string(p.Age)},
			Row{"Doctor", string(p.Doctor)},
			Row{"Phone", string(p.Phone)},
			Row{"Location", string(p.Location)},
			Row{"Primary Diagnosis", string(p.PrimaryDiagnosis)},
		),
	}
	if p.Name.Present() {
		card.Name = p.Name.String()
	}
	if card.Name == "" && len(card.Rows) == 0 {
		return nil
	}
	return card
}

func buildVitals(vs *VitalSigns) []Row {
	if vs == nil {
		return nil
	}
	return presentRows(
		Row{"Blood Pressure", string(vs.BP)},
		Row{"Heart Rate", string(vs.HR)},
		Row{"Temperature", string(vs.Temp)},
		Row{"SpO2", string(vs.SpO2)},
		Row{"Respiratory Rate", string(vs.Resp)},
	)
}

func buildGuidance(g *Guidance) *GuidanceBlock {
	if g == nil {
		return nil
	}
	block := &GuidanceBlock{NextSteps: presentStrings(g.NextSteps)}
	for _, tip := range g.LifestyleTips {
		if !tip.Topic.Present() && !tip.Advice.Present() {
			continue
		}
		item := TipItem{}
		if tip.Topic.Present() {
			item.Topic = tip.Topic.String()
		}
		if tip.Advice.Present() {
			item.Advice = tip.Advice.String()
		}
		block.Tips = append(block.Tips, item)
	}
	for _, qa := range g.FAQ {
		if !qa.Question.Present() {
			continue
		}
		item := QAItem{Question: qa.Question.String()}
		if qa.Answer.Present() {
			item.Answer = qa.Answer.String()
		}
		block.FAQ = append(block.FAQ, item)
	}
	if len(block.NextSteps) == 0 && len(block.Tips) == 0 && len(block.FAQ) == 0 {
		return nil
	}
	return block
}

// presentChart blanks the sentinel labels and keys of a chart so that nothing
// like "null" is drawn and missing keys fall back to their defaults.
func presentChart(spec chart.Spec) chart.Spec {
	for _, f := range []*string{
		&spec.ChartType,
		&spec.Title,
		&spec.XLabel,
		&spec.YLabel,
		&spec.XAxisKey,
		&spec.DataKey,
		&spec.DataKey2,
	} {
		*f = presentString(Text(*f))
	}
	return spec
}

// presentRows keeps the rows whose value is present.
func presentRows(rows ...Row) []Row {
	var out []Row
	for _, r := range rows {
		if t := Text(r.Value); t.Present() {
			out = append(out, Row{Label: r.Label, Value: t.String()})
		}
	}
	return out
}
