// imageprocessor.go - Best-effort image preparation before a model call

package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/bosocmputer/medicine_scan_gemini/internal/ai"
	"github.com/disintegration/imaging"
)

// PreprocessMode defines how much enhancement is applied on top of resizing
type PreprocessMode int

const (
	// ResizeOnly: only shrink oversized photos
	ResizeOnly PreprocessMode = iota
	// AdaptiveMode: shrink, then enhance dark or flat photos based on a quality score
	AdaptiveMode
)

// lowQualityThreshold is the score below which a photo gets enhanced in AdaptiveMode
const lowQualityThreshold = 50

// Preprocessor shrinks phone photos of medicine strips before they are sent to the model
type Preprocessor struct {
	MaxDimension int
	Mode         PreprocessMode
	JPEGQuality  int
}

// NewPreprocessor creates a preprocessor with the given longest-side limit
func NewPreprocessor(maxDimension int, mode PreprocessMode) *Preprocessor {
	return &Preprocessor{
		MaxDimension: maxDimension,
		Mode:         mode,
		JPEGQuality:  90,
	}
}

// Result describes what Prepare did to an image
type Result struct {
	Payload      ai.ImagePayload
	Oriented     bool
	Resized      bool
	Enhanced     bool
	QualityScore float64
}

// Prepare decodes the payload, applies its EXIF orientation, resizes it to fit MaxDimension
// and optionally enhances it. When nothing needs to change the original payload is returned
// untouched.
func (p *Preprocessor) Prepare(payload ai.ImagePayload) (*Result, error) {
	data, err := payload.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	result := &Result{Payload: payload, Oriented: reoriented(data, img)}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if p.MaxDimension > 0 && (width > p.MaxDimension || height > p.MaxDimension) {
		if width > height {
			img = imaging.Resize(img, p.MaxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, p.MaxDimension, imaging.Lanczos)
		}
		result.Resized = true
	}

	if p.Mode == AdaptiveMode {
		result.QualityScore = analyzeImageQuality(img)
		if result.QualityScore < lowQualityThreshold {
			img = applyColorEnhancement(img)
			result.Enhanced = true
		}
	}

	if !result.Oriented && !result.Resized && !result.Enhanced {
		return result, nil
	}

	var buf bytes.Buffer
	mimeType := "image/jpeg"
	switch payload.MIMEType {
	case "image/png":
		err = png.Encode(&buf, img)
		mimeType = "image/png"
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.JPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode processed image: %w", err)
	}

	result.Payload = ai.EncodeImage(buf.Bytes(), mimeType)
	return result, nil
}

// reoriented reports whether imaging rotated or flipped img to honor an EXIF orientation.
// imaging only reads EXIF from JPEG, and image/jpeg never decodes to *image.NRGBA, so for a
// JPEG source that type only appears after a rotate or flip.
func reoriented(data []byte, img image.Image) bool {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || format != "jpeg" {
		return false
	}
	_, ok := img.(*image.NRGBA)
	return ok
}

// analyzeImageQuality returns a 0-100 score from sampled brightness and contrast
func analyzeImageQuality(img image.Image) float64 {
	bounds := img.Bounds()

	var totalBrightness float64
	var minBrightness float64 = 255
	var maxBrightness float64 = 0
	pixelCount := 0

	// every 10th pixel
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 10 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 10 {
			r, g, b, _ := img.At(x, y).RGBA()
			brightness := (float64(r>>8) + float64(g>>8) + float64(b>>8)) / 3.0

			totalBrightness += brightness
			if brightness < minBrightness {
				minBrightness = brightness
			}
			if brightness > maxBrightness {
				maxBrightness = brightness
			}
			pixelCount++
		}
	}
	if pixelCount == 0 {
		return 0
	}

	avgBrightness := totalBrightness / float64(pixelCount)
	contrast := maxBrightness - minBrightness

	// Ideal: avgBrightness = 128, contrast = 200+
	brightnessScore := 100.0 - math.Abs(avgBrightness-128.0)/1.28
	contrastScore := math.Min(contrast/2.0, 100.0)

	return (brightnessScore * 0.4) + (contrastScore * 0.6)
}

// applyColorEnhancement lifts dark, flat photos without converting to grayscale
func applyColorEnhancement(img image.Image) image.Image {
	result := img
	result = imaging.Sharpen(result, 2.0)
	result = imaging.AdjustContrast(result, 30)
	result = imaging.AdjustBrightness(result, 15)
	result = imaging.AdjustGamma(result, 1.1)
	return result
}
