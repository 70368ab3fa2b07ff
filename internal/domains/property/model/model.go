package model

import (
	"lodge/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "properties"
	EntityName = "property"

	FieldID       = "id"
	FieldSlug     = "slug"
	FieldName     = "name"
	FieldType     = "type"
	FieldCity     = "city"
	FieldRegion   = "region"
	FieldStatus   = "status"
	FieldFeatured = "featured"
	FieldPriority = "priority"
	FieldOwnerID  = "owner_id"
)

const (
	TypeCabin = "cabin"
	TypeVilla = "villa"
	TypeLoft  = "loft"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDraft    = "draft"
)

type Property struct {
	ID           string         `db:"id"`
	Slug         string         `db:"slug"`
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	Type         string         `db:"type"`
	Address      string         `db:"address"`
	City         string         `db:"city"`
	Region       string         `db:"region"`
	CheckInTime  string         `db:"check_in_time"`
	CheckOutTime string         `db:"check_out_time"`
	MaxGuests    int            `db:"max_guests"`
	Amenities    pq.StringArray `db:"amenities"`
	Rating       float64        `db:"rating"`
	Status       string         `db:"status"`
	Featured     bool           `db:"featured"`
	Priority     int            `db:"priority"`
	IsSample     bool           `db:"is_sample"`
	OwnerID      string         `db:"owner_id"`
	model.Metadata
}
