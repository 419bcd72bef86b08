package common

import (
	"errors"
	"testing"

	"github.com/bosocmputer/medicine_scan_gemini/configs"
	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTokenCost(t *testing.T) {
	configs.MODEL_INPUT_PRICE_PER_MILLION = 0.10
	configs.MODEL_OUTPUT_PRICE_PER_MILLION = 0.40

	usage := CalculateTokenCost(1_000_000, 500_000)

	assert.Equal(t, 1_500_000, usage.TotalTokens)
	assert.InDelta(t, 0.30, usage.CostUSD, 1e-9)
}

func TestRequestContext_StepsAccumulateTokens(t *testing.T) {
	rc := NewRequestContext("single_medicine")
	require.NotEmpty(t, rc.RequestID)

	rc.StartStep("call_model")
	rc.EndStep("success", &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil)

	rc.StartStep("decode")
	rc.EndStep("failed", &TokenUsage{InputTokens: 99}, errors.New("bad json"))

	require.Len(t, rc.Steps, 2)
	assert.Equal(t, "call_model", rc.Steps[0].Name)
	assert.Equal(t, "bad json", rc.Steps[1].Error)
	// failed steps do not count towards usage
	assert.Equal(t, 15, rc.TotalTokens.TotalTokens)
	assert.Equal(t, "", rc.CurrentStep)

}

func TestRequestContext_LogSummary(t *testing.T) {
	hook := test.NewLocal(logger.Logger)
	defer hook.Reset()

	rc := NewRequestContext("prescription")
	rc.StartStep("call_model")
	rc.EndStep("success", &TokenUsage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120, CostUSD: 0.5}, nil)

	rc.LogSummary()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Analysis request finished", entry.Message)
	assert.Equal(t, rc.RequestID, entry.Data["request_id"])
	assert.Equal(t, "prescription", entry.Data["operation"])
	assert.Equal(t, 1, entry.Data["total_steps"])
	assert.Equal(t, 120, entry.Data["total_tokens"])
	assert.Equal(t, "$0.50000", entry.Data["cost_usd"])
	assert.Contains(t, entry.Data["step_breakdown"], "call_model")
}
