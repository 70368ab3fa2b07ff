package model

import (
	"time"

	"lodge/shared/model"
)

const (
	TableName  = "user_sessions"
	EntityName = "session"

	FieldTokenID   = "token_id"
	FieldUserID    = "user_id"
	FieldExpiresAt = "expires_at"
)

// Session records an issued refresh token. A refresh token without a session row is revoked.
type Session struct {
	TokenID   string    `db:"token_id"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	UserAgent string    `db:"user_agent"`
	model.Metadata
}
