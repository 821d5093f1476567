package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/verdanthealth/medguard/internal/logging"
)

// Severity grades an interaction or alert.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// Missing-component names reported by Missing.
const (
	ComponentDrugs        = "drug_catalog"
	ComponentInteractions = "interaction_catalog"
)

// DrugRecord is one entry of the drug catalog. Records are immutable
// after load.
type DrugRecord struct {
	Name string `json:"name"`

	// Identifier is an opaque standardized code (RxCUI in the shipped
	// catalogs). Interaction lookups resolve through it, never through
	// the display name.
	Identifier string `json:"rxcui"`

	// Class is the therapeutic class, empty when unknown.
	Class string `json:"class,omitempty"`

	// AllergyTriggers lists substances and classes a patient allergy
	// can match against.
	AllergyTriggers []string `json:"allergies,omitempty"`
}

// InteractionRecord is one entry of the interaction catalog. The pair
// of identifiers is unordered: [a,b] and [b,a] are the same record.
type InteractionRecord struct {
	Drugs       [2]string `json:"drugs"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
}

// pairKey is the canonical form of an unordered identifier pair.
type pairKey struct {
	lo, hi string
}

func makePairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Catalog provides O(1) name→DrugRecord lookup and O(1)-amortized
// pair→InteractionRecord lookup.
type Catalog struct {
	byName       map[string]DrugRecord
	interactions map[pairKey]InteractionRecord
	missing      []string
}

// Load builds a Catalog from the two persisted catalog files.
//
// Load never fails: a missing or malformed source yields an empty
// piece of the catalog, logged at error level, and the piece is
// reported by Missing. Checks depending on a missing piece then find
// nothing, by design.
func Load(ctx context.Context, drugPath, interactionsPath string, logger *logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("catalog")

	c := &Catalog{
		byName:       make(map[string]DrugRecord),
		interactions: make(map[pairKey]InteractionRecord),
	}

	var drugs []DrugRecord
	if err := readJSON(drugPath, &drugs); err != nil {
		logger.Error(ctx, "drug catalog unavailable, drug checks disabled",
			zap.String("path", drugPath),
			zap.Error(err),
		)
		c.missing = append(c.missing, ComponentDrugs)
	} else {
		for _, d := range drugs {
			key := NormalizeName(d.Name)
			if key == "" {
				logger.Warn(ctx, "skipping drug record with empty name",
					zap.String("identifier", d.Identifier))
				continue
			}
			if prev, ok := c.byName[key]; ok {
				// Last write wins, but never silently.
				logger.Warn(ctx, "duplicate drug name in catalog",
					zap.String("name", d.Name),
					zap.String("kept_identifier", d.Identifier),
					zap.String("replaced_identifier", prev.Identifier),
				)
			}
			c.byName[key] = d
		}
		logger.Info(ctx, "drug catalog loaded", zap.Int("drugs", len(c.byName)))
	}

	var interactions []InteractionRecord
	if err := readJSON(interactionsPath, &interactions); err != nil {
		logger.Error(ctx, "interaction catalog unavailable, interaction checks disabled",
			zap.String("path", interactionsPath),
			zap.Error(err),
		)
		c.missing = append(c.missing, ComponentInteractions)
	} else {
		for _, rec := range interactions {
			c.interactions[makePairKey(rec.Drugs[0], rec.Drugs[1])] = rec
		}
		logger.Info(ctx, "interaction catalog loaded", zap.Int("interactions", len(c.interactions)))
	}

	return c
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// NormalizeName lower-cases and trims a drug name for lookup. No fuzzy
// matching happens at this layer: exact normalized-string match only.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LookupDrug resolves a drug by name, case-insensitively and ignoring
// surrounding whitespace.
func (c *Catalog) LookupDrug(name string) (DrugRecord, bool) {
	rec, ok := c.byName[NormalizeName(name)]
	return rec, ok
}

// Interaction looks up an interaction record by the unordered pair of
// drug identifiers.
func (c *Catalog) Interaction(idA, idB string) (InteractionRecord, bool) {
	rec, ok := c.interactions[makePairKey(idA, idB)]
	return rec, ok
}

// DrugCount returns the number of loaded drug records.
func (c *Catalog) DrugCount() int { return len(c.byName) }

// InteractionCount returns the number of loaded interaction records.
func (c *Catalog) InteractionCount() int { return len(c.interactions) }

// Degraded reports whether any catalog source failed to load.
func (c *Catalog) Degraded() bool { return len(c.missing) > 0 }

// Missing returns the names of the catalog pieces that failed to load,
// in load order. Empty when the catalog is fully loaded.
func (c *Catalog) Missing() []string {
	out := make([]string, len(c.missing))
	copy(out, c.missing)
	return out
}
