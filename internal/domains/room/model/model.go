package model

import (
	"lodge/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID            = "id"
	FieldPropertyID    = "property_id"
	FieldName          = "name"
	FieldPricePerNight = "price_per_night"
	FieldAvailable     = "available"
)

type Room struct {
	ID            string         `db:"id"`
	PropertyID    string         `db:"property_id"`
	Name          string         `db:"name"`
	Description   string         `db:"description"`
	Capacity      int            `db:"capacity"`
	PricePerNight float64        `db:"price_per_night"`
	WeekendPrice  *float64       `db:"weekend_price"`
	HolidayPrice  *float64       `db:"holiday_price"`
	Size          float64        `db:"size"`
	Amenities     pq.StringArray `db:"amenities"`
	Available     bool           `db:"available"`
	MinStayNights int            `db:"min_stay_nights"`
	model.Metadata
}
