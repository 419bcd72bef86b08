// analyzer.go - Orchestrates one analysis: normalize, prompt, model call, extract, decode

package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bosocmputer/medicine_scan_gemini/internal/ai"
	"github.com/bosocmputer/medicine_scan_gemini/internal/audit"
	"github.com/bosocmputer/medicine_scan_gemini/internal/common"
	"github.com/bosocmputer/medicine_scan_gemini/internal/metrics"
	"github.com/bosocmputer/medicine_scan_gemini/internal/processor"
	"github.com/bosocmputer/medicine_scan_gemini/internal/storage"
	"github.com/sirupsen/logrus"
)

const rawPreviewLimit = 500

// Uploader stores an image and returns its link, or nil when it could not
type Uploader interface {
	Upload(ctx context.Context, image ai.ImagePayload, fileName string) *storage.UploadedFile
}

// ResultLogger appends one audit row per analysis
type ResultLogger interface {
	LogScanResult(ctx context.Context, op ai.Operation, result *ai.AnalysisResult, imageLinks []string) error
}

// TaskRunner runs detached background work
type TaskRunner interface {
	Go(name string, task audit.Task) error
}

// ImagePreparer resizes or enhances an image before the model call
type ImagePreparer interface {
	Prepare(image ai.ImagePayload) (*processor.Result, error)
}

// Options wires the optional collaborators. Nil fields disable the matching feature.
type Options struct {
	Uploader     Uploader
	ResultLogger ResultLogger
	Tasks        TaskRunner
	Preprocessor ImagePreparer
	ModelTimeout time.Duration
}

// Response is what the HTTP layer returns: {success, data} or {error}
type Response struct {
	Success bool               `json:"success,omitempty"`
	Data    *ai.AnalysisResult `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`

	// Kind and RequestID stay server-side
	Kind      ai.ErrorKind `json:"-"`
	RequestID string       `json:"-"`
}

// Analyzer runs the four medicine analyses. It holds no per-request state and is safe
// for concurrent use.
type Analyzer struct {
	provider     ai.Provider
	uploader     Uploader
	resultLogger ResultLogger
	tasks        TaskRunner
	preprocessor ImagePreparer
	modelTimeout time.Duration
	now          func() time.Time
}

// NewAnalyzer creates an analyzer around a model provider
func NewAnalyzer(provider ai.Provider, opts Options) *Analyzer {
	return &Analyzer{
		provider:     provider,
		uploader:     opts.Uploader,
		resultLogger: opts.ResultLogger,
		tasks:        opts.Tasks,
		preprocessor: opts.Preprocessor,
		modelTimeout: opts.ModelTimeout,
		now:          time.Now,
	}
}

// ScanMedicine identifies a single medicine from one photo
func (a *Analyzer) ScanMedicine(ctx context.Context, image string) Response {
	return a.analyze(ctx, ai.OpSingleMedicine, "", []string{image}, MsgImageRequired)
}

// AnalyzePrescription reads the medicines off a prescription photo
func (a *Analyzer) AnalyzePrescription(ctx context.Context, image string) Response {
	return a.analyze(ctx, ai.OpPrescription, "", []string{image}, MsgImageRequired)
}

// FindGenerics looks up generic alternatives for a medicine name. No image is involved
// and nothing is written to the audit log.
func (a *Analyzer) FindGenerics(ctx context.Context, medicineName string) Response {
	rc := common.NewRequestContext(string(ai.OpGenericLookup))
	if strings.TrimSpace(medicineName) == "" {
		return a.fail(rc, ai.OpGenericLookup, ai.NewMissingInputError(MsgNameRequired))
	}
	return a.run(ctx, rc, ai.OpGenericLookup, medicineName, nil, nil)
}

// VerifyStrips compares an old strip against a new one in a single model call
func (a *Analyzer) VerifyStrips(ctx context.Context, oldImage, newImage string) Response {
	return a.analyze(ctx, ai.OpStripVerification, "", []string{oldImage, newImage}, MsgStripImagesRequired)
}

// analyze normalizes the images, rejecting the request before any remote call when one is missing
func (a *Analyzer) analyze(ctx context.Context, op ai.Operation, subject string, rawImages []string, missingMsg string) Response {
	rc := common.NewRequestContext(string(op))

	rc.StartStep("normalize_images")
	originals := make([]ai.ImagePayload, 0, len(rawImages))
	for _, raw := range rawImages {
		payload := ai.NormalizeImage(strings.TrimSpace(raw))
		if payload.IsEmpty() {
			err := ai.NewMissingInputError(missingMsg)
			rc.EndStep("failed", nil, err)
			return a.fail(rc, op, err)
		}
		originals = append(originals, payload)
	}
	rc.EndStep("success", nil, nil)

	prepared := originals
	if a.preprocessor != nil {
		prepared = a.prepareImages(rc, originals)
	}

	return a.run(ctx, rc, op, subject, prepared, originals)
}

// prepareImages is best-effort: any image that cannot be processed is sent as received
func (a *Analyzer) prepareImages(rc *common.RequestContext, images []ai.ImagePayload) []ai.ImagePayload {
	rc.StartStep("preprocess_images")
	out := make([]ai.ImagePayload, len(images))
	for i, img := range images {
		result, err := a.preprocessor.Prepare(img)
		if err != nil {
			rc.LogWarning("Image %d preprocessing failed, using original: %v", i+1, err)
			out[i] = img
			continue
		}
		if result.Oriented || result.Resized || result.Enhanced {
			rc.Logger().WithFields(logrus.Fields{
				"image":         i + 1,
				"oriented":      result.Oriented,
				"resized":       result.Resized,
				"enhanced":      result.Enhanced,
				"quality_score": fmt.Sprintf("%.1f", result.QualityScore),
			}).Debug("Image preprocessed")
		}
		out[i] = result.Payload
	}
	rc.EndStep("success", nil, nil)
	return out
}

func (a *Analyzer) run(ctx context.Context, rc *common.RequestContext, op ai.Operation, subject string, images, originals []ai.ImagePayload) Response {
	rc.StartStep("build_prompt")
	prompt, err := ai.BuildPrompt(op, subject)
	rc.EndStep(stepStatus(err), nil, err)
	if err != nil {
		return a.fail(rc, op, err)
	}

	completion, err := a.callModel(ctx, rc, op, prompt, images)
	if err != nil {
		return a.fail(rc, op, err)
	}

	rc.StartStep("decode_response")
	candidate := ai.ExtractJSON(completion.Text)
	result, err := ai.Decode(op, candidate, completion.Text)
	rc.EndStep(stepStatus(err), nil, err)
	if err != nil {
		return a.fail(rc, op, err)
	}

	if op != ai.OpGenericLookup {
		a.dispatchAudit(rc, op, result, originals)
	}

	metrics.RecordAnalysis(string(op), "success")
	rc.LogSummary()
	return Response{Success: true, Data: result, RequestID: rc.RequestID}
}

// callModel makes the single gateway call under the configured deadline
func (a *Analyzer) callModel(ctx context.Context, rc *common.RequestContext, op ai.Operation, prompt string, images []ai.ImagePayload) (*ai.Completion, error) {
	if a.modelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.modelTimeout)
		defer cancel()
	}

	provider := a.provider.GetProviderName()
	rc.StartStep("call_model")
	start := time.Now()
	completion, err := a.provider.Generate(ctx, prompt, images...)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordModelCall(provider, string(op), string(ai.KindOf(err)), duration)
		rc.EndStep("failed", nil, err)
		return nil, err
	}

	tokens := common.CalculateTokenCost(completion.PromptTokens, completion.CompletionTokens)
	metrics.RecordModelCall(provider, string(op), "success", duration)
	metrics.RecordTokens(completion.PromptTokens, completion.CompletionTokens)
	rc.EndStep("success", &tokens, nil)

	rc.Logger().WithFields(logrus.Fields{
		"provider":      provider,
		"model":         completion.ModelName,
		"response_size": len(completion.Text),
		"truncated":     completion.Truncated,
	}).Info("Model completion received")

	return completion, nil
}

// dispatchAudit hands logging to the background runner. Its outcome never reaches the caller.
func (a *Analyzer) dispatchAudit(rc *common.RequestContext, op ai.Operation, result *ai.AnalysisResult, images []ai.ImagePayload) {
	if a.tasks == nil || (a.uploader == nil && a.resultLogger == nil) {
		return
	}

	fileNames := auditFileNames(op, a.now(), rc.RequestID, images)
	task := func(ctx context.Context) error {
		var links []string
		if a.uploader != nil {
			for i, img := range images {
				if file := a.uploader.Upload(ctx, img, fileNames[i]); file != nil {
					links = append(links, file.Link)
				}
			}
		}
		if a.resultLogger == nil {
			return nil
		}
		return a.resultLogger.LogScanResult(ctx, op, result, links)
	}

	if err := a.tasks.Go("audit_"+string(op), task); err != nil {
		rc.LogWarning("Audit logging skipped: %v", err)
	}
}

func (a *Analyzer) fail(rc *common.RequestContext, op ai.Operation, err error) Response {
	kind := ai.KindOf(err)
	entry := rc.Logger().WithFields(logrus.Fields{
		"error_kind":  kind,
		"status_code": ai.StatusCodeOf(err),
	}).WithError(err)

	var analysisErr *ai.AnalysisError
	if kind == ai.ErrorMalformedResponse && errors.As(err, &analysisErr) {
		entry = entry.WithField("raw_preview", preview(analysisErr.Raw))
	}

	if kind == ai.ErrorMissingInput {
		entry.Warn("Analysis rejected")
	} else {
		entry.Error("Analysis failed")
	}

	metrics.RecordAnalysis(string(op), string(kind))
	rc.LogSummary()
	return Response{
		Error:     UserMessage(op, err),
		Kind:      kind,
		RequestID: rc.RequestID,
	}
}

func auditFileNames(op ai.Operation, now time.Time, requestID string, images []ai.ImagePayload) []string {
	labels := []string{"image"}
	if op == ai.OpStripVerification {
		labels = []string{"old_strip", "new_strip"}
	}

	shortID := requestID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	names := make([]string, len(images))
	for i, img := range images {
		label := fmt.Sprintf("image_%d", i+1)
		if i < len(labels) {
			label = labels[i]
		}
		names[i] = fmt.Sprintf("%s_%s_%s_%s.%s", op, label, now.UTC().Format("20060102T150405Z"), shortID, extension(img.MIMEType))
	}
	return names
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

func preview(raw string) string {
	if len(raw) > rawPreviewLimit {
		return raw[:rawPreviewLimit] + "... (truncated)"
	}
	return raw
}

func stepStatus(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
