package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	for _, op := range Operations {
		prompt, err := BuildPrompt(op, "Crocin")
		require.NoError(t, err, op)
		assert.True(t, strings.HasSuffix(prompt, "Respond ONLY with the JSON object."), op)
	}

	prompt, err := BuildPrompt(OpGenericLookup, "  Crocin 500  ")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Find generic alternatives for the medicine: Crocin 500.")

	prompt, err = BuildPrompt(OpStripVerification, "")
	require.NoError(t, err)
	for _, verdict := range []string{"SAFE MATCH", "MISMATCH DETECTED", "CRITICAL ALERT", "ASK DOCTOR", "NOT RECOMMENDED"} {
		assert.Contains(t, prompt, verdict)
	}
}

func TestBuildPrompt_Errors(t *testing.T) {
	_, err := BuildPrompt(OpGenericLookup, "   ")
	assert.Equal(t, ErrorMissingInput, KindOf(err))

	_, err = BuildPrompt(Operation("dosage_calculator"), "")
	assert.Error(t, err)
}
