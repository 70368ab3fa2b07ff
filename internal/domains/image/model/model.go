package model

import (
	"fmt"
	"time"

	"lodge/shared/model"
)

const (
	TableName  = "images"
	EntityName = "image"

	FieldID           = "id"
	FieldEntityType   = "entity_type"
	FieldEntityID     = "entity_id"
	FieldPublicID     = "public_id"
	FieldIsCover      = "is_cover"
	FieldSortOrder    = "sort_order"
	FieldAltText      = "alt_text"
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldQualityScore = "quality_score"
)

type EntityType string

const (
	EntityProperty EntityType = "property"
	EntityRoom     EntityType = "room"
)

func ParseEntityType(value string) (EntityType, error) {
	switch t := EntityType(value); t {
	case EntityProperty, EntityRoom:
		return t, nil
	default:
		return "", fmt.Errorf("unknown entity type %q", value)
	}
}

// Owner identifies the property or room an image belongs to.
type Owner struct {
	Type EntityType `json:"entity_type"`
	ID   string     `json:"entity_id"`
}

func (o Owner) String() string {
	return string(o.Type) + "/" + o.ID
}

type Image struct {
	ID           string     `db:"id"`
	EntityType   EntityType `db:"entity_type"`
	EntityID     string     `db:"entity_id"`
	PublicID     string     `db:"public_id"`
	SecureURL    string     `db:"secure_url"`
	Width        int        `db:"width"`
	Height       int        `db:"height"`
	Format       string     `db:"format"`
	Bytes        int64      `db:"bytes"`
	AltText      *string    `db:"alt_text"`
	Title        *string    `db:"title"`
	Description  *string    `db:"description"`
	IsCover      bool       `db:"is_cover"`
	SortOrder    int        `db:"sort_order"`
	QualityScore *float64   `db:"quality_score"`
	model.Metadata
}

func (i Image) Owner() Owner {
	return Owner{Type: i.EntityType, ID: i.EntityID}
}

// AssetCleanupEvent asks the worker to remove a remote asset whose local record is already gone.
type AssetCleanupEvent struct {
	PublicID string `json:"public_id"`
	ImageID  string `json:"image_id"`
	Owner    Owner  `json:"owner"`
	Reason   string `json:"reason"`
	Attempt  int    `json:"attempt"`

	// NotBefore delays a retried cleanup. Zero means immediately.
	NotBefore time.Time `json:"not_before,omitzero"`
}
