// gateway_errors.go - Classifies provider failures into gateway error kinds

package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// kindForStatus maps a remote HTTP status to a gateway error kind
func kindForStatus(code int) ErrorKind {
	switch code {
	case http.StatusTooManyRequests:
		return ErrorRateLimited
	case http.StatusServiceUnavailable:
		return ErrorServiceUnavailable
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorUnauthenticated
	default:
		return ErrorUnknown
	}
}

// httpStatusForCode maps the gRPC codes Gemini uses onto their HTTP equivalents
func httpStatusForCode(code codes.Code) int {
	switch code {
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Internal:
		return http.StatusInternalServerError
	default:
		return 0
	}
}

func newGatewayError(statusCode int, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Kind:       kindForStatus(statusCode),
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// classifyGeminiError inspects first-attempt 503s, REST (*googleapi.Error), gax
// (*apierror.APIError) and raw gRPC status errors. Anything without a recognizable status
// is ErrorUnknown.
func classifyGeminiError(err error) *AnalysisError {
	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return analysisErr
	}

	var upstreamErr *upstreamStatusError
	if errors.As(err, &upstreamErr) {
		return newGatewayError(upstreamErr.StatusCode, fmt.Sprintf("Gemini API error: %s", upstreamErr.Message), err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return newGatewayError(apiErr.Code, fmt.Sprintf("Gemini API error: %s", apiErr.Message), err)
	}

	var gaxErr *apierror.APIError
	if errors.As(err, &gaxErr) {
		if code := gaxErr.HTTPCode(); code > 0 {
			return newGatewayError(code, "Gemini API error", err)
		}
		if st := gaxErr.GRPCStatus(); st != nil {
			return newGatewayError(httpStatusForCode(st.Code()), fmt.Sprintf("Gemini API error: %s", st.Code()), err)
		}
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown && st.Code() != codes.OK {
		return newGatewayError(httpStatusForCode(st.Code()), fmt.Sprintf("Gemini API error: %s", st.Code()), err)
	}

	return classifyTransportError(err)
}

// classifyOpenAIError inspects go-openai API and request errors
func classifyOpenAIError(err error) *AnalysisError {
	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return analysisErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return newGatewayError(apiErr.HTTPStatusCode, fmt.Sprintf("OpenAI API error: %s", apiErr.Message), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return newGatewayError(reqErr.HTTPStatusCode, "OpenAI request failed", err)
	}

	return classifyTransportError(err)
}

func classifyTransportError(err error) *AnalysisError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &AnalysisError{Kind: ErrorUnknown, Message: "model request timed out", Cause: err}
	case errors.Is(err, context.Canceled):
		return &AnalysisError{Kind: ErrorUnknown, Message: "model request canceled", Cause: err}
	default:
		return &AnalysisError{Kind: ErrorUnknown, Message: "model request failed", Cause: err}
	}
}
