// Package quality grades uploaded image metadata against a configurable rule set.
//
// The validator never touches pixel data or the network. Callers inspect the payload first
// (see s3.Inspect) and pass the extracted metadata here.
package quality

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"lodge/config"
)

const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatWEBP = "webp"
	FormatGIF  = "gif"

	maxAspectRatio = 3.0
	bytesPerMiB    = 1024 * 1024

	weightResolution = 0.6
	weightSize       = 0.2
	weightFormat     = 0.2
)

type Rules struct {
	MinWidth          int
	MinHeight         int
	RecommendedWidth  int
	RecommendedHeight int
	MaxBytes          int64
	AllowedFormats    []string
	AutoReject        bool
}

type Metadata struct {
	Width  int
	Height int
	Format string
	Bytes  int64
}

type Verdict struct {
	IsValid               bool     `json:"is_valid"`
	Errors                []string `json:"errors"`
	Warnings              []string `json:"warnings"`
	SuggestedImprovements []string `json:"suggested_improvements"`
	Score                 float64  `json:"score"`
}

func DefaultRules() Rules {
	return Rules{
		MinWidth:          800,
		MinHeight:         600,
		RecommendedWidth:  1920,
		RecommendedHeight: 1080,
		MaxBytes:          10 * bytesPerMiB,
		AllowedFormats:    []string{FormatJPEG, FormatPNG, FormatWEBP},
		AutoReject:        false,
	}
}

// RulesFromConfig falls back to DefaultRules for every zero-valued threshold.
func RulesFromConfig(cfg *config.Config) Rules {
	rules := DefaultRules()
	q := cfg.Image.Quality

	if q.MinWidth > 0 {
		rules.MinWidth = q.MinWidth
	}

	if q.MinHeight > 0 {
		rules.MinHeight = q.MinHeight
	}

	if q.RecommendedWidth > 0 {
		rules.RecommendedWidth = q.RecommendedWidth
	}

	if q.RecommendedHeight > 0 {
		rules.RecommendedHeight = q.RecommendedHeight
	}

	if q.MaxBytes > 0 {
		rules.MaxBytes = q.MaxBytes
	}

	if len(q.AllowedFormats) > 0 {
		formats := make([]string, 0, len(q.AllowedFormats))
		for _, f := range q.AllowedFormats {
			formats = append(formats, NormalizeFormat(f))
		}

		rules.AllowedFormats = formats
	}

	rules.AutoReject = q.AutoReject

	return rules
}

// NormalizeFormat lowercases a format name and folds "jpg" into "jpeg".
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	f = strings.TrimPrefix(f, ".")
	f = strings.TrimPrefix(f, "image/")

	if f == "jpg" {
		return FormatJPEG
	}

	return f
}

func Validate(meta Metadata, rules Rules) Verdict {
	format := NormalizeFormat(meta.Format)

	var failures, failureFixes, warnings, suggestions []string

	if meta.Width < rules.MinWidth || meta.Height < rules.MinHeight {
		failures = append(failures, fmt.Sprintf("image resolution %dx%d is below the minimum %dx%d", meta.Width, meta.Height, rules.MinWidth, rules.MinHeight))
		failureFixes = append(failureFixes, fmt.Sprintf("upload an image at least %dx%d pixels", rules.MinWidth, rules.MinHeight))
	}

	if rules.MaxBytes > 0 && meta.Bytes > rules.MaxBytes {
		failures = append(failures, fmt.Sprintf("file size %s exceeds the maximum %s", humanBytes(meta.Bytes), humanBytes(rules.MaxBytes)))
		failureFixes = append(failureFixes, "compress the image or reduce its dimensions")
	}

	if len(rules.AllowedFormats) > 0 && !slices.Contains(rules.AllowedFormats, format) {
		failures = append(failures, fmt.Sprintf("format %q is not allowed", format))
		failureFixes = append(failureFixes, "convert the image to one of: "+strings.Join(rules.AllowedFormats, ", "))
	}

	if meta.Width >= rules.MinWidth && meta.Height >= rules.MinHeight &&
		(meta.Width < rules.RecommendedWidth || meta.Height < rules.RecommendedHeight) {
		warnings = append(warnings, fmt.Sprintf("image resolution %dx%d is below the recommended %dx%d", meta.Width, meta.Height, rules.RecommendedWidth, rules.RecommendedHeight))
		suggestions = append(suggestions, fmt.Sprintf("use %dx%d or larger for sharp display on large screens", rules.RecommendedWidth, rules.RecommendedHeight))
	}

	if ratio := aspectRatio(meta.Width, meta.Height); ratio > maxAspectRatio {
		warnings = append(warnings, fmt.Sprintf("aspect ratio %.1f:1 is extreme and will be heavily cropped", ratio))
		suggestions = append(suggestions, "crop the image closer to 3:2 or 16:9")
	}

	verdict := Verdict{
		IsValid:               true,
		Errors:                []string{},
		Warnings:              []string{},
		SuggestedImprovements: []string{},
		Score:                 Score(meta, rules),
	}

	if rules.AutoReject && len(failures) > 0 {
		verdict.IsValid = false
		verdict.Errors = append(verdict.Errors, failures...)
	} else {
		verdict.Warnings = append(verdict.Warnings, failures...)
	}

	verdict.Warnings = append(verdict.Warnings, warnings...)
	verdict.SuggestedImprovements = append(verdict.SuggestedImprovements, failureFixes...)
	verdict.SuggestedImprovements = append(verdict.SuggestedImprovements, suggestions...)

	return verdict
}

// Reject builds the verdict for a payload that could not be read as an image.
func Reject(reason string) Verdict {
	return Verdict{
		IsValid:               false,
		Errors:                []string{reason},
		Warnings:              []string{},
		SuggestedImprovements: []string{"upload a JPEG, PNG or WebP image"},
		Score:                 0,
	}
}

// Score weighs resolution against the recommended size, byte size against the maximum and
// format membership. The result is rounded to two decimals.
func Score(meta Metadata, rules Rules) float64 {
	resolution := 0.0
	if rules.RecommendedWidth > 0 && rules.RecommendedHeight > 0 && meta.Width > 0 && meta.Height > 0 {
		resolution = math.Min(1, float64(meta.Width*meta.Height)/float64(rules.RecommendedWidth*rules.RecommendedHeight))
	}

	size := 1.0
	if rules.MaxBytes > 0 && meta.Bytes > rules.MaxBytes {
		size = 0
	}

	format := 0.0
	if len(rules.AllowedFormats) == 0 || slices.Contains(rules.AllowedFormats, NormalizeFormat(meta.Format)) {
		format = 1
	}

	score := weightResolution*resolution + weightSize*size + weightFormat*format

	return math.Round(score*100) / 100
}

func aspectRatio(width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}

	w, h := float64(width), float64(height)

	return math.Max(w, h) / math.Min(w, h)
}

func humanBytes(n int64) string {
	return fmt.Sprintf("%.1f MB", float64(n)/bytesPerMiB)
}
