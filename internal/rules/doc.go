// Package rules implements the deterministic clinical safety checks:
// drug-drug interactions, duplicate therapy, allergy conflicts, and
// symptom red flags.
//
// The engine is stateless: every check is a pure function of the
// injected catalog and the caller's inputs, performs no I/O, and
// cannot fail at call time. Unresolvable drug names are skipped, not
// reported. A degraded catalog silently yields fewer alerts; the
// degradation itself is surfaced on the Report so callers can tell
// "nothing found" from "could not check".
//
// Alert ordering is a contract: RunAllChecks always concatenates
// interaction, duplicate-therapy, allergy, and red-flag alerts in that
// order, and alerts are never deduplicated across checks.
package rules
