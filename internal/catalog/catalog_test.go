package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/verdanthealth/medguard/internal/logging"
)

const (
	drugDBPath       = "testdata/drug_db.json"
	interactionsPath = "testdata/interactions.json"
)

func TestLoad(t *testing.T) {
	tl := logging.NewTestLogger()

	c := Load(context.Background(), drugDBPath, interactionsPath, tl.Logger)

	assert.False(t, c.Degraded())
	assert.Empty(t, c.Missing())
	assert.Equal(t, 6, c.DrugCount())
	assert.Equal(t, 3, c.InteractionCount())
}

func TestLoad_MissingDrugCatalog(t *testing.T) {
	tl := logging.NewTestLogger()

	c := Load(context.Background(), "testdata/does_not_exist.json", interactionsPath, tl.Logger)

	assert.True(t, c.Degraded())
	assert.Equal(t, []string{ComponentDrugs}, c.Missing())
	assert.Equal(t, 0, c.DrugCount())
	// The interaction catalog still loads independently.
	assert.Equal(t, 3, c.InteractionCount())

	_, ok := c.LookupDrug("Aspirin")
	assert.False(t, ok)

	tl.AssertLogged(t, zapcore.ErrorLevel, "drug catalog unavailable")
}

func TestLoad_MalformedInteractionCatalog(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "interactions.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))
	tl := logging.NewTestLogger()

	c := Load(context.Background(), drugDBPath, bad, tl.Logger)

	assert.True(t, c.Degraded())
	assert.Equal(t, []string{ComponentInteractions}, c.Missing())
	assert.Equal(t, 6, c.DrugCount())
	tl.AssertLogged(t, zapcore.ErrorLevel, "interaction catalog unavailable")
}

func TestLoad_BothMissing(t *testing.T) {
	dir := t.TempDir()

	c := Load(context.Background(), filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json"), nil)

	assert.True(t, c.Degraded())
	assert.Equal(t, []string{ComponentDrugs, ComponentInteractions}, c.Missing())
}

func TestLoad_DuplicateDrugName(t *testing.T) {
	dup := filepath.Join(t.TempDir(), "drug_db.json")
	require.NoError(t, os.WriteFile(dup, []byte(`[
		{"name": "Aspirin", "rxcui": "1191"},
		{"name": "aspirin ", "rxcui": "9999"}
	]`), 0o600))
	tl := logging.NewTestLogger()

	c := Load(context.Background(), dup, interactionsPath, tl.Logger)

	// Last write wins, and the collision is flagged.
	rec, ok := c.LookupDrug("Aspirin")
	require.True(t, ok)
	assert.Equal(t, "9999", rec.Identifier)
	assert.Equal(t, 1, c.DrugCount())
	tl.AssertLogged(t, zapcore.WarnLevel, "duplicate drug name")
}

func TestLookupDrug_Normalization(t *testing.T) {
	c := Load(context.Background(), drugDBPath, interactionsPath, nil)

	for _, name := range []string{"warfarin", "WARFARIN", "  Warfarin  "} {
		rec, ok := c.LookupDrug(name)
		require.True(t, ok, "lookup %q", name)
		assert.Equal(t, "11289", rec.Identifier)
	}

	_, ok := c.LookupDrug("warfar")
	assert.False(t, ok, "no fuzzy matching")
}

func TestInteraction_UnorderedPair(t *testing.T) {
	c := Load(context.Background(), drugDBPath, interactionsPath, nil)

	fwd, okFwd := c.Interaction("1191", "11289")
	rev, okRev := c.Interaction("11289", "1191")

	require.True(t, okFwd)
	require.True(t, okRev)
	assert.Equal(t, fwd, rev)
	assert.Equal(t, SeverityHigh, fwd.Severity)
	assert.Contains(t, fwd.Description, "bleeding")

	_, ok := c.Interaction("1191", "5640")
	assert.False(t, ok, "no catalogued aspirin/ibuprofen interaction")
}
