package summary

import (
	"github.com/goccy/go-json"

	"medsummary/internal/chart"
)

// Summary is the decoded payload returned by the summarization service.
// Every field is optional.
type Summary struct {
	PatientProfile   *PatientProfile
	Sections         *Sections
	Medications      []Medication
	Timeline         []TimelineEvent
	Charts           []chart.Spec
	Guidance         *Guidance
	InsufficientData Flag

	// Legacy is the older {section, points} layout; RawSummary and Note are set
	// when the service could not produce structured JSON.
	Legacy     []LegacySection
	RawSummary Text
	Note       Text

	// Dropped lists the payload fields that were skipped because of their shape.
	Dropped []string
}

type PatientProfile struct {
	Name             Text `json:"name"`
	Gender           Text `json:"gender"`
	Age              Text `json:"age"`
	Doctor           Text `json:"doctor"`
	Phone            Text `json:"phone"`
	Location         Text `json:"location"`
	PrimaryDiagnosis Text `json:"primary_diagnosis"`
}

type Sections struct {
	ChiefComplaint   Text
	DiagnosisDetails Text
	KeyFindings      []Finding
	TreatmentPlan    []Text
	VitalSigns       *VitalSigns
}

type Finding struct {
	Text Text `json:"text"`
	Page Text `json:"page"`
}

func (f *Finding) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &f.Text)
	}
	type plain Finding
	return json.Unmarshal(b, (*plain)(f))
}

type VitalSigns struct {
	BP   Text `json:"bp"`
	HR   Text `json:"hr"`
	Temp Text `json:"temp"`
	SpO2 Text `json:"spo2"`
	Resp Text `json:"resp"`
}

type Medication struct {
	Name      Text `json:"name"`
	Dose      Text `json:"dose"`
	Frequency Text `json:"frequency"`
	Type      Text `json:"type"`
	Quantity  Text `json:"quantity"`
}

func (m *Medication) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &m.Name)
	}
	type plain Medication
	return json.Unmarshal(b, (*plain)(m))
}

type TimelineEvent struct {
	Event Text `json:"event"`
	Date  Text `json:"date"`
}

func (e *TimelineEvent) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &e.Event)
	}
	type plain TimelineEvent
	return json.Unmarshal(b, (*plain)(e))
}

type Guidance struct {
	NextSteps     []Text
	LifestyleTips []LifestyleTip
	FAQ           []GuidanceQA
}

type LifestyleTip struct {
	Topic  Text `json:"topic"`
	Advice Text `json:"advice"`
}

func (t *LifestyleTip) UnmarshalJSON(b []byte) error {
	if isJSONString(b) {
		return json.Unmarshal(b, &t.Advice)
	}
	type plain LifestyleTip
	return json.Unmarshal(b, (*plain)(t))
}

type GuidanceQA struct {
	Question Text `json:"question"`
	Answer   Text `json:"answer"`
}

type LegacySection struct {
	Section Text          `json:"section"`
	Points  []LegacyPoint `json:"points"`
}

type LegacyPoint struct {
	Text  Text   `json:"text"`
	Pages []Text `json:"pages"`
}
