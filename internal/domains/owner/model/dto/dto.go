package dto

import (
	"lodge/internal/domains/owner/model"
	"lodge/shared"
	gDto "lodge/shared/dto"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"

	"github.com/google/uuid"
)

type CreateOwnerRequest struct {
	Name    string  `json:"name"    validate:"required,max=100"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Phone   *string `json:"phone"   validate:"omitempty,max=50"`
	Company *string `json:"company" validate:"omitempty,max=100"`
	Notes   *string `json:"notes"`
}

func (c *CreateOwnerRequest) ToModel(user string) model.Owner {
	now := timezone.Now()

	return model.Owner{
		ID:       uuid.NewString(),
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Company:  c.Company,
		Notes:    c.Notes,
		Metadata: gModel.NewMetadata(user, now),
	}
}

type UpdateOwnerRequest struct {
	Name    *string `db:"name"    json:"name"    validate:"omitempty,min=1,max=100"`
	Email   *string `db:"email"   json:"email"   validate:"omitempty,email"`
	Phone   *string `db:"phone"   json:"phone"   validate:"omitempty,max=50"`
	Company *string `db:"company" json:"company" validate:"omitempty,max=100"`
	Notes   *string `db:"notes"   json:"notes"`
}

type OwnerResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Company *string `json:"company,omitempty"`
	Notes   *string `json:"notes,omitempty"`
	gDto.Metadata
}

func (r *OwnerResponse) FromModel(model model.Owner) {
	r.ID = model.ID
	r.Name = model.Name
	r.Email = model.Email
	r.Phone = model.Phone
	r.Company = model.Company
	r.Notes = model.Notes
	r.Metadata.FromModel(model.Metadata)
}

type GetOwnersResponse struct {
	Owners    []OwnerResponse `json:"owners"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetOwnersResponse) FromModels(models []model.Owner, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Owners = make([]OwnerResponse, len(models))
	for i, mod := range models {
		r.Owners[i].FromModel(mod)
	}
}
