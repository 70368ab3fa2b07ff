package dto

import (
	"lodge/internal/domains/room/model"
	"lodge/shared"
	gDto "lodge/shared/dto"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CreateRoomRequest struct {
	PropertyID    string   `json:"property_id"     validate:"required,uuid"`
	Name          string   `json:"name"            validate:"required,max=100"`
	Description   string   `json:"description"`
	Capacity      int      `json:"capacity"        validate:"omitempty,min=1"`
	PricePerNight float64  `json:"price_per_night" validate:"min=0"`
	WeekendPrice  *float64 `json:"weekend_price"   validate:"omitempty,min=0"`
	HolidayPrice  *float64 `json:"holiday_price"   validate:"omitempty,min=0"`
	Size          float64  `json:"size"            validate:"omitempty,min=0"`
	Amenities     []string `json:"amenities"       validate:"omitempty,dive,required,max=50"`
	Available     *bool    `json:"available"`
	MinStayNights int      `json:"min_stay_nights" validate:"omitempty,min=1"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	now := timezone.Now()

	available := true
	if c.Available != nil {
		available = *c.Available
	}

	capacity := c.Capacity
	if capacity == 0 {
		capacity = 1
	}

	minStay := c.MinStayNights
	if minStay == 0 {
		minStay = 1
	}

	amenities := c.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	return model.Room{
		ID:            uuid.NewString(),
		PropertyID:    c.PropertyID,
		Name:          c.Name,
		Description:   c.Description,
		Capacity:      capacity,
		PricePerNight: c.PricePerNight,
		WeekendPrice:  c.WeekendPrice,
		HolidayPrice:  c.HolidayPrice,
		Size:          c.Size,
		Amenities:     pq.StringArray(amenities),
		Available:     available,
		MinStayNights: minStay,
		Metadata:      gModel.NewMetadata(user, now),
	}
}

type UpdateRoomRequest struct {
	Name          *string   `db:"name"            json:"name"            validate:"omitempty,min=1,max=100"`
	Description   *string   `db:"description"     json:"description"`
	Capacity      *int      `db:"capacity"        json:"capacity"        validate:"omitempty,min=1"`
	PricePerNight *float64  `db:"price_per_night" json:"price_per_night" validate:"omitempty,min=0"`
	WeekendPrice  *float64  `db:"weekend_price"   json:"weekend_price"   validate:"omitempty,min=0"`
	HolidayPrice  *float64  `db:"holiday_price"   json:"holiday_price"   validate:"omitempty,min=0"`
	Size          *float64  `db:"size"            json:"size"            validate:"omitempty,min=0"`
	Amenities     *[]string `db:"amenities"       json:"amenities"       validate:"omitempty,dive,required,max=50"`
	Available     *bool     `db:"available"       json:"available"`
	MinStayNights *int      `db:"min_stay_nights" json:"min_stay_nights" validate:"omitempty,min=1"`
}

type RoomResponse struct {
	ID            string   `json:"id"`
	PropertyID    string   `json:"property_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Capacity      int      `json:"capacity"`
	PricePerNight float64  `json:"price_per_night"`
	WeekendPrice  *float64 `json:"weekend_price,omitempty"`
	HolidayPrice  *float64 `json:"holiday_price,omitempty"`
	Size          float64  `json:"size"`
	Amenities     []string `json:"amenities"`
	Available     bool     `json:"available"`
	MinStayNights int      `json:"min_stay_nights"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.PropertyID = model.PropertyID
	r.Name = model.Name
	r.Description = model.Description
	r.Capacity = model.Capacity
	r.PricePerNight = model.PricePerNight
	r.WeekendPrice = model.WeekendPrice
	r.HolidayPrice = model.HolidayPrice
	r.Size = model.Size
	r.Amenities = append([]string{}, model.Amenities...)
	r.Available = model.Available
	r.MinStayNights = model.MinStayNights
	r.Metadata.FromModel(model.Metadata)
}

func FromModels(models []model.Room) []RoomResponse {
	res := make([]RoomResponse, len(models))
	for i, mod := range models {
		res[i].FromModel(mod)
	}

	return res
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)
	r.Rooms = FromModels(models)
}
