// request_context.go - Request tracking and logging system

package common

import (
	"fmt"
	"time"

	"github.com/bosocmputer/medicine_scan_gemini/configs"
	"github.com/bosocmputer/medicine_scan_gemini/internal/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestContext tracks one analysis request with timing and token costs
type RequestContext struct {
	RequestID        string
	Operation        string
	StartTime        time.Time
	Steps            []StepLog
	TotalTokens      TokenUsage
	CurrentStep      string
	CurrentStepStart time.Time

	log *logrus.Entry
}

// StepLog represents a single processing step
type StepLog struct {
	Name      string      `json:"name"`
	StartTime time.Time   `json:"start_time"`
	Duration  int64       `json:"duration_ms"`
	Status    string      `json:"status"` // "success", "failed", "skipped"
	Tokens    *TokenUsage `json:"tokens,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// TokenUsage tracks API token consumption
type TokenUsage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// NewRequestContext creates a new request tracking context
func NewRequestContext(operation string) *RequestContext {
	reqID := uuid.New().String()
	entry := logger.WithFields(logrus.Fields{
		"request_id": reqID,
		"operation":  operation,
	})
	entry.Info("Analysis request received")

	return &RequestContext{
		RequestID: reqID,
		Operation: operation,
		StartTime: time.Now(),
		Steps:     []StepLog{},
		log:       entry,
	}
}

// StartStep begins tracking a new processing step
func (rc *RequestContext) StartStep(stepName string) {
	rc.CurrentStep = stepName
	rc.CurrentStepStart = time.Now()
	rc.log.WithField("step", stepName).Debug("Step started")
}

// EndStep completes the current step and records timing
func (rc *RequestContext) EndStep(status string, tokens *TokenUsage, err error) {
	duration := time.Since(rc.CurrentStepStart).Milliseconds()

	stepLog := StepLog{
		Name:      rc.CurrentStep,
		StartTime: rc.CurrentStepStart,
		Duration:  duration,
		Status:    status,
		Tokens:    tokens,
	}

	entry := rc.log.WithFields(logrus.Fields{
		"step":        rc.CurrentStep,
		"status":      status,
		"duration_ms": duration,
	})

	if err != nil {
		stepLog.Error = err.Error()
		entry.WithError(err).Warn("Step failed")
	} else {
		if tokens != nil {
			rc.TotalTokens.InputTokens += tokens.InputTokens
			rc.TotalTokens.OutputTokens += tokens.OutputTokens
			rc.TotalTokens.TotalTokens += tokens.TotalTokens
			rc.TotalTokens.CostUSD += tokens.CostUSD
			entry = entry.WithFields(logrus.Fields{
				"input_tokens":  tokens.InputTokens,
				"output_tokens": tokens.OutputTokens,
				"cost_usd":      fmt.Sprintf("$%.5f", tokens.CostUSD),
			})
		}
		entry.Debug("Step completed")
	}

	rc.Steps = append(rc.Steps, stepLog)
	rc.CurrentStep = ""
}

// CalculateTokenCost computes the USD cost of a model call from the configured pricing
func CalculateTokenCost(inputTokens, outputTokens int) TokenUsage {
	inputCost := float64(inputTokens) * configs.MODEL_INPUT_PRICE_PER_MILLION / 1_000_000
	outputCost := float64(outputTokens) * configs.MODEL_OUTPUT_PRICE_PER_MILLION / 1_000_000

	return TokenUsage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		CostUSD:      inputCost + outputCost,
	}
}

// LogSummary writes one closing entry for the request: total duration, per-step timings
// and accumulated token cost
func (rc *RequestContext) LogSummary() {
	stepBreakdown := make(map[string]int64, len(rc.Steps))
	for _, step := range rc.Steps {
		stepBreakdown[step.Name] = step.Duration
	}

	rc.log.WithFields(logrus.Fields{
		"total_duration_ms": time.Since(rc.StartTime).Milliseconds(),
		"total_steps":       len(rc.Steps),
		"step_breakdown":    stepBreakdown,
		"input_tokens":      rc.TotalTokens.InputTokens,
		"output_tokens":     rc.TotalTokens.OutputTokens,
		"total_tokens":      rc.TotalTokens.TotalTokens,
		"cost_usd":          fmt.Sprintf("$%.5f", rc.TotalTokens.CostUSD),
	}).Info("Analysis request finished")
}

// LogWarning logs warning-level message with request ID
func (rc *RequestContext) LogWarning(format string, args ...interface{}) {
	rc.log.Warnf(format, args...)
}

// Logger exposes the request-scoped log entry for structured fields
func (rc *RequestContext) Logger() *logrus.Entry {
	return rc.log
}
