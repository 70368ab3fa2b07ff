package quality_test

import (
	"testing"

	"lodge/config"
	"lodge/internal/domains/image/quality"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	strict := quality.DefaultRules()
	strict.AutoReject = true

	tests := []struct {
		name         string
		meta         quality.Metadata
		rules        quality.Rules
		wantValid    bool
		wantErrors   int
		wantWarnings int
	}{
		{
			name:      "small jpg rejected when auto reject is on",
			meta:      quality.Metadata{Width: 200, Height: 150, Format: "jpg", Bytes: 20_000},
			rules:     quality.Rules{MinWidth: 800, MinHeight: 600, AutoReject: true},
			wantValid: false, wantErrors: 1, wantWarnings: 0,
		},
		{
			name:      "small jpg accepted with warning when auto reject is off",
			meta:      quality.Metadata{Width: 200, Height: 150, Format: "jpg", Bytes: 20_000},
			rules:     quality.DefaultRules(),
			wantValid: true, wantErrors: 0, wantWarnings: 1,
		},
		{
			name:      "recommended size passes cleanly",
			meta:      quality.Metadata{Width: 1920, Height: 1080, Format: "jpeg", Bytes: 500_000},
			rules:     strict,
			wantValid: true, wantErrors: 0, wantWarnings: 0,
		},
		{
			name:      "between minimum and recommended only warns",
			meta:      quality.Metadata{Width: 1024, Height: 768, Format: "png", Bytes: 500_000},
			rules:     strict,
			wantValid: true, wantErrors: 0, wantWarnings: 1,
		},
		{
			name:      "oversized file rejected",
			meta:      quality.Metadata{Width: 1920, Height: 1080, Format: "png", Bytes: 11 * 1024 * 1024},
			rules:     strict,
			wantValid: false, wantErrors: 1, wantWarnings: 0,
		},
		{
			name:      "format outside allow list rejected",
			meta:      quality.Metadata{Width: 1920, Height: 1080, Format: "gif", Bytes: 1000},
			rules:     strict,
			wantValid: false, wantErrors: 1, wantWarnings: 0,
		},
		{
			name:      "extreme panorama warns",
			meta:      quality.Metadata{Width: 8000, Height: 2000, Format: "webp", Bytes: 1000},
			rules:     strict,
			wantValid: true, wantErrors: 0, wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := quality.Validate(tt.meta, tt.rules)

			assert.Equal(t, tt.wantValid, v.IsValid)
			assert.Len(t, v.Errors, tt.wantErrors)
			assert.Len(t, v.Warnings, tt.wantWarnings)
			assert.GreaterOrEqual(t, v.Score, 0.0)
			assert.LessOrEqual(t, v.Score, 1.0)

			if tt.wantErrors+tt.wantWarnings > 0 {
				assert.NotEmpty(t, v.SuggestedImprovements)
			}
		})
	}
}

func TestScore(t *testing.T) {
	rules := quality.DefaultRules()

	assert.Equal(t, 1.0, quality.Score(quality.Metadata{Width: 3840, Height: 2160, Format: "jpeg", Bytes: 1}, rules))
	assert.Equal(t, 0.4, quality.Score(quality.Metadata{Format: "jpeg"}, rules))
	assert.Equal(t, 0.2, quality.Score(quality.Metadata{Format: "bmp", Bytes: 1}, rules))
	assert.Equal(t, 0.0, quality.Score(quality.Metadata{Format: "bmp", Bytes: 11 * 1024 * 1024}, rules))
	assert.Equal(t, 0.7, quality.Score(quality.Metadata{Width: 1920, Height: 540, Format: "png", Bytes: 1}, rules))
}

func TestNormalizeFormat(t *testing.T) {
	assert.Equal(t, "jpeg", quality.NormalizeFormat("JPG"))
	assert.Equal(t, "jpeg", quality.NormalizeFormat(".jpg"))
	assert.Equal(t, "png", quality.NormalizeFormat("image/png"))
	assert.Equal(t, "webp", quality.NormalizeFormat(" webp "))
}

func TestReject(t *testing.T) {
	v := quality.Reject("not an image")

	assert.False(t, v.IsValid)
	assert.Equal(t, []string{"not an image"}, v.Errors)
	assert.Zero(t, v.Score)
}

func TestRulesFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Image.Quality.MinWidth = 1024
	cfg.Image.Quality.AllowedFormats = []string{"JPG", "png"}
	cfg.Image.Quality.AutoReject = true

	rules := quality.RulesFromConfig(cfg)

	assert.Equal(t, 1024, rules.MinWidth)
	assert.Equal(t, 600, rules.MinHeight)
	assert.Equal(t, []string{"jpeg", "png"}, rules.AllowedFormats)
	assert.True(t, rules.AutoReject)
	assert.Equal(t, int64(10*1024*1024), rules.MaxBytes)
}
