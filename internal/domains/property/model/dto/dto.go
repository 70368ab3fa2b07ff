package dto

import (
	imageDto "lodge/internal/domains/image/model/dto"
	"lodge/internal/domains/property/model"
	roomDto "lodge/internal/domains/room/model/dto"
	"lodge/shared"
	gDto "lodge/shared/dto"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	defaultCheckInTime  = "14:00"
	defaultCheckOutTime = "11:00"
)

type CreatePropertyRequest struct {
	Name         string   `json:"name"           validate:"required,max=150"`
	Slug         string   `json:"slug"           validate:"omitempty,slug,max=150"`
	Description  string   `json:"description"`
	Type         string   `json:"type"           validate:"required,oneof=cabin villa loft"`
	Address      string   `json:"address"        validate:"omitempty,max=255"`
	City         string   `json:"city"           validate:"required,max=100"`
	Region       string   `json:"region"         validate:"required,max=100"`
	CheckInTime  string   `json:"check_in_time"  validate:"omitempty,clock"`
	CheckOutTime string   `json:"check_out_time" validate:"omitempty,clock"`
	MaxGuests    int      `json:"max_guests"     validate:"omitempty,min=1"`
	Amenities    []string `json:"amenities"      validate:"omitempty,dive,required,max=50"`
	Rating       float64  `json:"rating"         validate:"omitempty,min=0,max=5"`
	Status       string   `json:"status"         validate:"omitempty,oneof=active inactive draft"`
	Featured     bool     `json:"featured"`
	Priority     int      `json:"priority"`
	IsSample     bool     `json:"is_sample"`
	OwnerID      string   `json:"owner_id"       validate:"required,uuid"`
}

func (c *CreatePropertyRequest) ToModel(user, slug string) model.Property {
	now := timezone.Now()

	status := c.Status
	if status == "" {
		status = model.StatusDraft
	}

	checkIn := c.CheckInTime
	if checkIn == "" {
		checkIn = defaultCheckInTime
	}

	checkOut := c.CheckOutTime
	if checkOut == "" {
		checkOut = defaultCheckOutTime
	}

	amenities := c.Amenities
	if amenities == nil {
		amenities = []string{}
	}

	return model.Property{
		ID:           uuid.NewString(),
		Slug:         slug,
		Name:         c.Name,
		Description:  c.Description,
		Type:         c.Type,
		Address:      c.Address,
		City:         c.City,
		Region:       c.Region,
		CheckInTime:  checkIn,
		CheckOutTime: checkOut,
		MaxGuests:    c.MaxGuests,
		Amenities:    pq.StringArray(amenities),
		Rating:       c.Rating,
		Status:       status,
		Featured:     c.Featured,
		Priority:     c.Priority,
		IsSample:     c.IsSample,
		OwnerID:      c.OwnerID,
		Metadata:     gModel.NewMetadata(user, now),
	}
}

type UpdatePropertyRequest struct {
	Name         *string   `db:"name"           json:"name"           validate:"omitempty,min=1,max=150"`
	Slug         *string   `db:"slug"           json:"slug"           validate:"omitempty,slug,max=150"`
	Description  *string   `db:"description"    json:"description"`
	Type         *string   `db:"type"           json:"type"           validate:"omitempty,oneof=cabin villa loft"`
	Address      *string   `db:"address"        json:"address"        validate:"omitempty,max=255"`
	City         *string   `db:"city"           json:"city"           validate:"omitempty,min=1,max=100"`
	Region       *string   `db:"region"         json:"region"         validate:"omitempty,min=1,max=100"`
	CheckInTime  *string   `db:"check_in_time"  json:"check_in_time"  validate:"omitempty,clock"`
	CheckOutTime *string   `db:"check_out_time" json:"check_out_time" validate:"omitempty,clock"`
	MaxGuests    *int      `db:"max_guests"     json:"max_guests"     validate:"omitempty,min=1"`
	Amenities    *[]string `db:"amenities"      json:"amenities"      validate:"omitempty,dive,required,max=50"`
	Rating       *float64  `db:"rating"         json:"rating"         validate:"omitempty,min=0,max=5"`
	Status       *string   `db:"status"         json:"status"         validate:"omitempty,oneof=active inactive draft"`
	Featured     *bool     `db:"featured"       json:"featured"`
	Priority     *int      `db:"priority"       json:"priority"`
	IsSample     *bool     `db:"is_sample"      json:"is_sample"`
	OwnerID      *string   `db:"owner_id"       json:"owner_id"       validate:"omitempty,uuid"`
}

type PropertyResponse struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Type         string   `json:"type"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	Region       string   `json:"region"`
	CheckInTime  string   `json:"check_in_time"`
	CheckOutTime string   `json:"check_out_time"`
	MaxGuests    int      `json:"max_guests"`
	Amenities    []string `json:"amenities"`
	Rating       float64  `json:"rating"`
	Status       string   `json:"status"`
	Featured     bool     `json:"featured"`
	Priority     int      `json:"priority"`
	IsSample     bool     `json:"is_sample"`
	OwnerID      string   `json:"owner_id"`
	gDto.Metadata
}

func (r *PropertyResponse) FromModel(model model.Property) {
	r.ID = model.ID
	r.Slug = model.Slug
	r.Name = model.Name
	r.Description = model.Description
	r.Type = model.Type
	r.Address = model.Address
	r.City = model.City
	r.Region = model.Region
	r.CheckInTime = model.CheckInTime
	r.CheckOutTime = model.CheckOutTime
	r.MaxGuests = model.MaxGuests
	r.Amenities = append([]string{}, model.Amenities...)
	r.Rating = model.Rating
	r.Status = model.Status
	r.Featured = model.Featured
	r.Priority = model.Priority
	r.IsSample = model.IsSample
	r.OwnerID = model.OwnerID
	r.Metadata.FromModel(model.Metadata)
}

// PropertyDetailResponse is the public page payload: the property with its rooms and images.
type PropertyDetailResponse struct {
	PropertyResponse
	Rooms  []roomDto.RoomResponse   `json:"rooms"`
	Images []imageDto.ImageResponse `json:"images"`
}

type GetPropertiesResponse struct {
	Properties []PropertyResponse `json:"properties"`
	TotalPage  int                `json:"total_page"`
	TotalData  int                `json:"total_data"`
}

func (r *GetPropertiesResponse) FromModels(models []model.Property, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Properties = make([]PropertyResponse, len(models))
	for i, mod := range models {
		r.Properties[i].FromModel(mod)
	}
}
