package rules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verdanthealth/medguard/internal/catalog"
	"github.com/verdanthealth/medguard/internal/logging"
)

// Engine runs the safety checks against a loaded catalog.
//
// An Engine is safe for concurrent use: the catalog is read-only and
// the engine keeps no per-request state.
type Engine struct {
	catalog *catalog.Catalog
	logger  *logging.Logger
	metrics *Metrics
}

// NewEngine creates an Engine over the given catalog.
func NewEngine(cat *catalog.Catalog, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		catalog: cat,
		logger:  logger.Named("rules"),
		metrics: NewMetrics(logger.Underlying()),
	}
}

// Degraded reports whether the backing catalog failed to load any of
// its reference sources.
func (e *Engine) Degraded() bool { return e.catalog.Degraded() }

// Missing lists the catalog components that failed to load.
func (e *Engine) Missing() []string { return e.catalog.Missing() }

// resolveDrugs maps input names to catalog records, preserving input
// order. Names not found are silently skipped.
func (e *Engine) resolveDrugs(drugNames []string) []catalog.DrugRecord {
	resolved := make([]catalog.DrugRecord, 0, len(drugNames))
	for _, name := range drugNames {
		if rec, ok := e.catalog.LookupDrug(name); ok {
			resolved = append(resolved, rec)
		}
	}
	return resolved
}

// CheckDrugInteractions flags known interactions between the given
// drugs. Every unordered pair of resolved drugs is tested against the
// interaction catalog by identifier; each catalogued pair yields
// exactly one alert citing the stored severity and description.
func (e *Engine) CheckDrugInteractions(drugNames []string) []Alert {
	resolved := e.resolveDrugs(drugNames)
	if len(resolved) < 2 {
		return nil
	}

	var alerts []Alert
	for i := 0; i < len(resolved); i++ {
		for j := i + 1; j < len(resolved); j++ {
			a, b := resolved[i], resolved[j]
			if a.Identifier == b.Identifier {
				continue
			}
			rec, ok := e.catalog.Interaction(a.Identifier, b.Identifier)
			if !ok {
				continue
			}
			alerts = append(alerts, Alert{
				Kind:     KindDrugInteraction,
				Severity: rec.Severity,
				Message:  fmt.Sprintf("Interaction between %s and %s. Reason: %s", a.Name, b.Name, rec.Description),
			})
		}
	}
	return alerts
}

// CheckDuplicateTherapy flags multiple drugs from the same therapeutic
// class: one Medium alert per class, listing every drug in it. Classes
// are reported in first-seen input order so output is deterministic.
func (e *Engine) CheckDuplicateTherapy(drugNames []string) []Alert {
	var classOrder []string
	members := make(map[string][]string)
	for _, rec := range e.resolveDrugs(drugNames) {
		if rec.Class == "" {
			continue
		}
		if _, seen := members[rec.Class]; !seen {
			classOrder = append(classOrder, rec.Class)
		}
		members[rec.Class] = append(members[rec.Class], rec.Name)
	}

	var alerts []Alert
	for _, class := range classOrder {
		drugs := members[class]
		if len(drugs) < 2 {
			continue
		}
		alerts = append(alerts, Alert{
			Kind:     KindDuplicateTherapy,
			Severity: catalog.SeverityMedium,
			Message: fmt.Sprintf("Multiple drugs from the '%s' class found: %s. This may increase the risk of side effects.",
				class, strings.Join(drugs, ", ")),
		})
	}
	return alerts
}

// CheckAllergies flags drugs whose allergy triggers overlap the
// patient's known allergies. Matching is case-insensitive and ignores
// surrounding whitespace. One High alert per affected drug, even when
// several triggers match.
func (e *Engine) CheckAllergies(drugNames, patientAllergies []string) []Alert {
	allergies := make(map[string]struct{}, len(patientAllergies))
	for _, a := range patientAllergies {
		if norm := catalog.NormalizeName(a); norm != "" {
			allergies[norm] = struct{}{}
		}
	}
	if len(allergies) == 0 {
		return nil
	}

	var alerts []Alert
	for _, rec := range e.resolveDrugs(drugNames) {
		for _, trigger := range rec.AllergyTriggers {
			if _, hit := allergies[catalog.NormalizeName(trigger)]; hit {
				alerts = append(alerts, Alert{
					Kind:     KindAllergyAlert,
					Severity: catalog.SeverityHigh,
					Message:  fmt.Sprintf("Critical allergy alert: Patient is allergic to a substance in '%s'. Do not administer.", rec.Name),
				})
				break
			}
		}
	}
	return alerts
}

// CheckSymptomRedFlags scans free-text symptoms for critical phrases
// and stops at the first match, returning at most one Critical alert.
func (e *Engine) CheckSymptomRedFlags(symptomText string) []Alert {
	if symptomText == "" {
		return nil
	}
	text := strings.ToLower(symptomText)
	for _, flag := range symptomRedFlags {
		if strings.Contains(text, flag) {
			return []Alert{{
				Kind:     KindSymptomRedFlag,
				Severity: catalog.SeverityCritical,
				Message:  fmt.Sprintf("Detected critical symptom: '%s'. This may indicate a medical emergency.", flag),
			}}
		}
	}
	return nil
}

// RunAllChecks runs every check the input provides data for and
// concatenates the alerts in fixed order: interactions, duplicate
// therapy, allergies, symptom red flags.
func (e *Engine) RunAllChecks(ctx context.Context, in Input) Report {
	start := time.Now()
	alerts := []Alert{}

	if len(in.DrugNames) > 0 {
		alerts = append(alerts, e.CheckDrugInteractions(in.DrugNames)...)
		alerts = append(alerts, e.CheckDuplicateTherapy(in.DrugNames)...)
		if len(in.PatientAllergies) > 0 {
			alerts = append(alerts, e.CheckAllergies(in.DrugNames, in.PatientAllergies)...)
		}
	}
	if in.SymptomText != "" {
		alerts = append(alerts, e.CheckSymptomRedFlags(in.SymptomText)...)
	}

	report := Report{
		Alerts:   alerts,
		Degraded: e.catalog.Degraded(),
		Missing:  e.catalog.Missing(),
	}
	if len(report.Missing) == 0 {
		report.Missing = nil
	}

	e.metrics.RecordRun(ctx, time.Since(start), alerts, report.Degraded)
	e.logger.Debug(ctx, "safety checks complete",
		zap.Int("drugs", len(in.DrugNames)),
		zap.Int("alerts", len(alerts)),
		zap.Bool("degraded", report.Degraded),
	)
	return report
}
