package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem_CaseInsensitive(t *testing.T) {
	assert.Equal(t, Stem("Running"), Stem("running"))
	assert.Equal(t, Stem("RUNNING"), Stem("running"))
}

func TestStem_Deterministic(t *testing.T) {
	for _, tok := range []string{"running", "runs", "ran", "jump", "café", "アニャ"} {
		assert.Equal(t, Stem(tok), Stem(tok))
	}
}

func TestStem_CollapsesRelatedForms(t *testing.T) {
	// S3 relies on "running" and "runs" sharing a stem.
	assert.Equal(t, Stem("running"), Stem("runs"))
}

func TestStemAll_Collapses(t *testing.T) {
	tokens := map[string]struct{}{"running": {}, "runs": {}, "jump": {}}
	stems := StemAll(tokens)
	assert.Len(t, stems, 2)
	_, hasRun := stems[Stem("running")]
	_, hasJump := stems[Stem("jump")]
	assert.True(t, hasRun)
	assert.True(t, hasJump)
}
