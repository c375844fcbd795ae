package summary

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/goccy/go-json"

	"medsummary/internal/chart"
)

var ErrNotObject = errors.New("summary: payload is not a JSON object")

// Decode parses a summary payload field by field. A field whose shape does not
// match is skipped and recorded in Summary.Dropped; only a payload that is not a
// JSON object fails.
func Decode(raw []byte) (*Summary, error) {
	fields, err := objectFields(raw)
	if err != nil {
		return nil, err
	}

	s := &Summary{}
	var sectionsRaw, guidanceRaw, chartsRaw, chartRaw json.RawMessage

	s.Dropped = decodeFields(fields, map[string]any{
		"patient_profile":       &s.PatientProfile,
		"sections":              &sectionsRaw,
		"medications":           &s.Medications,
		"timeline":              &s.Timeline,
		"dynamic_charts":        &chartsRaw,
		"dynamic_chart":         &chartRaw,
		"personalized_guidance": &guidanceRaw,
		"insufficient_data":     &s.InsufficientData,
		"summary":               &s.Legacy,
		"raw_summary":           &s.RawSummary,
		"note":                  &s.Note,
	})

	if sub, err := objectFields(sectionsRaw); err == nil {
		sections := &Sections{}
		dropped := decodeFields(sub, map[string]any{
			"chief_complaint":   &sections.ChiefComplaint,
			"diagnosis_details": &sections.DiagnosisDetails,
			"key_findings":      &sections.KeyFindings,
			"treatment_plan":    &sections.TreatmentPlan,
			"vital_signs":       &sections.VitalSigns,
		})
		s.Dropped = append(s.Dropped, prefixed("sections.", dropped)...)
		s.Sections = sections
	} else if !isNull(sectionsRaw) {
		s.Dropped = append(s.Dropped, "sections")
	}

	if sub, err := objectFields(guidanceRaw); err == nil {
		guidance := &Guidance{}
		dropped := decodeFields(sub, map[string]any{
			"next_steps":     &guidance.NextSteps,
			"lifestyle_tips": &guidance.LifestyleTips,
			"faq":            &guidance.FAQ,
		})
		s.Dropped = append(s.Dropped, prefixed("personalized_guidance.", dropped)...)
		s.Guidance = guidance
	} else if !isNull(guidanceRaw) {
		s.Dropped = append(s.Dropped, "personalized_guidance")
	}

	s.Charts = append(s.Charts, decodeCharts(chartsRaw, "dynamic_charts", &s.Dropped)...)
	if !isNull(chartRaw) {
		var spec chart.Spec
		if err := json.Unmarshal(chartRaw, &spec); err == nil {
			s.Charts = append(s.Charts, spec)
		} else {
			s.Dropped = append(s.Dropped, "dynamic_chart")
		}
	}

	sort.Strings(s.Dropped)
	return s, nil
}

func objectFields(raw []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if fields == nil {
		return nil, ErrNotObject
	}
	return fields, nil
}

// decodeFields unmarshals each present key into its target pointer and returns
// the keys that failed. A target is only assigned when its field decodes cleanly.
func decodeFields(fields map[string]json.RawMessage, targets map[string]any) []string {
	var dropped []string
	for key, target := range targets {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			continue
		}
		dst := reflect.ValueOf(target).Elem()
		tmp := reflect.New(dst.Type())
		if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
			dropped = append(dropped, key)
			continue
		}
		dst.Set(tmp.Elem())
	}
	return dropped
}

// decodeCharts decodes each chart entry on its own so one bad entry does not
// hide the others.
func decodeCharts(raw json.RawMessage, field string, dropped *[]string) []chart.Spec {
	if isNull(raw) {
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		*dropped = append(*dropped, field)
		return nil
	}

	var specs []chart.Spec
	for i, entry := range entries {
		var spec chart.Spec
		if err := json.Unmarshal(entry, &spec); err != nil {
			*dropped = append(*dropped, fmt.Sprintf("%s[%d]", field, i))
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func prefixed(prefix string, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, prefix+k)
	}
	return out
}
