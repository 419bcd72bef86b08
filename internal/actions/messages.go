// messages.go - Fixed user-facing messages keyed by error kind

package actions

import (
	"errors"

	"github.com/bosocmputer/medicine_scan_gemini/internal/ai"
)

const (
	MsgImageRequired       = "Image is required."
	MsgStripImagesRequired = "Both old and new strip images are required."
	MsgNameRequired        = "Medicine name is required."

	MsgRateLimited        = "API limit reached. Please wait 1 minute and try again."
	MsgServiceUnavailable = "AI service is busy. Please try again in a few seconds."
	MsgImageFailed        = "Failed to identify medicine. Please ensure the image is clear and try again."
	MsgGenericFailed      = "Generic search failed. Please try again."
)

// UserMessage maps a failure to the string shown to the user. Raw error detail never
// reaches this string.
func UserMessage(op ai.Operation, err error) string {
	switch ai.KindOf(err) {
	case ai.ErrorMissingInput:
		var analysisErr *ai.AnalysisError
		if errors.As(err, &analysisErr) && analysisErr.Message != "" {
			return analysisErr.Message
		}
		return MsgImageRequired
	case ai.ErrorRateLimited:
		return MsgRateLimited
	case ai.ErrorServiceUnavailable:
		return MsgServiceUnavailable
	}

	if op == ai.OpGenericLookup {
		return MsgGenericFailed
	}
	return MsgImageFailed
}
