package model

import "lodge/shared/model"

const (
	TableName  = "owners"
	EntityName = "owner"

	FieldID      = "id"
	FieldName    = "name"
	FieldEmail   = "email"
	FieldCompany = "company"
)

// Owner is the business contact operating one or more properties. It is not a login.
type Owner struct {
	ID      string  `db:"id"`
	Name    string  `db:"name"`
	Email   *string `db:"email"`
	Phone   *string `db:"phone"`
	Company *string `db:"company"`
	Notes   *string `db:"notes"`
	model.Metadata
}
