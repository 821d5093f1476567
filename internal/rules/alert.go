package rules

import "github.com/verdanthealth/medguard/internal/catalog"

// Kind identifies which check produced an alert.
type Kind string

const (
	KindDrugInteraction  Kind = "DRUG_INTERACTION"
	KindDuplicateTherapy Kind = "DUPLICATE_THERAPY"
	KindAllergyAlert     Kind = "ALLERGY_ALERT"
	KindSymptomRedFlag   Kind = "SYMPTOM_RED_FLAG"
)

// Alert is one finding from a safety check. Alerts are created per
// request and never persisted, cached, or merged.
type Alert struct {
	Kind     Kind             `json:"type"`
	Severity catalog.Severity `json:"severity"`
	Message  string           `json:"message"`
}

// Input carries the per-request data the checks operate on. Every
// field is optional; absent fields skip the checks that need them.
type Input struct {
	DrugNames        []string `json:"drug_names,omitempty"`
	PatientAllergies []string `json:"patient_allergies,omitempty"`
	SymptomText      string   `json:"symptom_text,omitempty"`
}

// Report is the result of RunAllChecks: the ordered alerts plus the
// catalog degradation status, so "no alerts" and "could not check" are
// distinguishable.
type Report struct {
	Alerts   []Alert  `json:"alerts"`
	Degraded bool     `json:"degraded"`
	Missing  []string `json:"missing,omitempty"`
}
