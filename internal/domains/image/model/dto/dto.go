package dto

import (
	"mime/multipart"

	"lodge/infras/s3"
	"lodge/internal/domains/image/model"
	"lodge/internal/domains/image/quality"
	gDto "lodge/shared/dto"
)

type UploadOptions struct {
	AltText     *string `json:"alt_text"    validate:"omitempty,max=255"`
	Title       *string `json:"title"       validate:"omitempty,max=255"`
	Description *string `json:"description"`
	IsCover     bool    `json:"is_cover"`
	SortOrder   int     `json:"sort_order"  validate:"omitempty,min=0"`
}

// UploadRequest carries one payload. Data is read from File by the handler.
type UploadRequest struct {
	EntityType string                `json:"entity_type" validate:"required,oneof=property room"`
	EntityID   string                `json:"entity_id"   validate:"required,uuid"`
	File       *multipart.FileHeader `json:"-"           validate:"required"`
	FileName   string                `json:"-"`
	Data       []byte                `json:"-"`
	Size       int64                 `json:"-"`
	UploadOptions
}

type BatchUploadRequest struct {
	EntityType string                  `json:"entity_type" validate:"required,oneof=property room"`
	EntityID   string                  `json:"entity_id"   validate:"required,uuid"`
	Files      []*multipart.FileHeader `json:"-"           validate:"required,min=1"`
	Payloads   []Payload               `json:"-"`
	// FirstAsCover marks the first accepted file of the batch as cover.
	FirstAsCover bool `json:"first_as_cover"`
}

// Payload is one file as received. Size is the declared length of the file; Data may hold
// fewer bytes when the reader stopped at the size ceiling.
type Payload struct {
	FileName string
	Data     []byte
	Size     int64
}

// Bytes is the real file size, never less than what was read.
func (p Payload) Bytes() int64 {
	return max(p.Size, int64(len(p.Data)))
}

// Partial reports a payload cut short by the reader.
func (p Payload) Partial() bool {
	return int64(len(p.Data)) < p.Size
}

type Validation struct {
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
	Errors      []string `json:"errors"`
	Score       float64  `json:"score"`
}

func (v *Validation) FromVerdict(verdict quality.Verdict) {
	v.Warnings = verdict.Warnings
	v.Suggestions = verdict.SuggestedImprovements
	v.Errors = verdict.Errors
	v.Score = verdict.Score
}

type UploadResult struct {
	FileName   string         `json:"file_name,omitempty"`
	Success    bool           `json:"success"`
	Image      *ImageResponse `json:"image,omitempty"`
	Validation Validation     `json:"validation"`
	Error      *string        `json:"error,omitempty"`
}

type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type BatchUploadResult struct {
	Results []UploadResult `json:"results"`
	Summary BatchSummary   `json:"summary"`
}

func (b *BatchUploadResult) Add(result UploadResult) {
	b.Results = append(b.Results, result)
	b.Summary.Total++

	if result.Success {
		b.Summary.Successful++
	} else {
		b.Summary.Failed++
	}
}

type UpdateImageRequest struct {
	AltText     *string `db:"alt_text"    json:"alt_text"    validate:"omitempty,max=255"`
	Title       *string `db:"title"       json:"title"       validate:"omitempty,max=255"`
	Description *string `db:"description" json:"description"`
	SortOrder   *int    `db:"sort_order"  json:"sort_order"  validate:"omitempty,min=0"`
	IsCover     *bool   `db:"-"           json:"is_cover"`
}

type TransformRequest struct {
	Width   int    `json:"width"   validate:"omitempty,min=1,max=4096"`
	Height  int    `json:"height"  validate:"omitempty,min=1,max=4096"`
	Quality int    `json:"quality" validate:"omitempty,min=1,max=100"`
	Format  string `json:"format"  validate:"omitempty,oneof=auto jpeg png webp avif"`
}

func (t TransformRequest) ToTransform() s3.Transform {
	return s3.Transform{
		Width:   t.Width,
		Height:  t.Height,
		Quality: t.Quality,
		Format:  t.Format,
	}
}

type TransformResponse struct {
	URL string `json:"url"`
}

type ImageResponse struct {
	ID           string   `json:"id"`
	EntityType   string   `json:"entity_type"`
	EntityID     string   `json:"entity_id"`
	PublicID     string   `json:"public_id"`
	SecureURL    string   `json:"secure_url"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Format       string   `json:"format"`
	Bytes        int64    `json:"bytes"`
	AltText      *string  `json:"alt_text,omitempty"`
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	IsCover      bool     `json:"is_cover"`
	SortOrder    int      `json:"sort_order"`
	QualityScore *float64 `json:"quality_score,omitempty"`
	gDto.Metadata
}

func (r *ImageResponse) FromModel(model model.Image) {
	r.ID = model.ID
	r.EntityType = string(model.EntityType)
	r.EntityID = model.EntityID
	r.PublicID = model.PublicID
	r.SecureURL = model.SecureURL
	r.Width = model.Width
	r.Height = model.Height
	r.Format = model.Format
	r.Bytes = model.Bytes
	r.AltText = model.AltText
	r.Title = model.Title
	r.Description = model.Description
	r.IsCover = model.IsCover
	r.SortOrder = model.SortOrder
	r.QualityScore = model.QualityScore
	r.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Image) []ImageResponse {
	res := make([]ImageResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}

type GetImagesResponse struct {
	Images []ImageResponse `json:"images"`
}
