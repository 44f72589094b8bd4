package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"meetsync/core/entity"
)

// GrantStatus is the lifecycle state of a provider connection
type GrantStatus string

const (
	GrantStatusActive  GrantStatus = "active"
	GrantStatusRevoked GrantStatus = "revoked"
)

// Grant binds one user to one external calendar/email provider account.
// Grants are never hard-deleted; disconnecting marks them revoked.
type Grant struct {
	entity.BaseEntity
	CompanyID       uuid.UUID      `db:"company_id" json:"company_id"`
	UserID          uuid.UUID      `db:"user_id" json:"user_id"`
	Provider        string         `db:"provider" json:"provider"` // "google" | "microsoft" | "imap"
	GrantToken      string         `db:"grant_token" json:"-"`
	RefreshToken    string         `db:"refresh_token" json:"-"`
	TokenExpiresAt  time.Time      `db:"token_expires_at" json:"token_expires_at"`
	Status          GrantStatus    `db:"status" json:"status"`
	Email           string         `db:"email" json:"email"`
	Scopes          pq.StringArray `db:"scopes" json:"scopes"`
	LastValidatedAt *time.Time     `db:"last_validated_at" json:"last_validated_at,omitempty"`
}

// IsActive reports whether the grant can be used for provider calls
func (g *Grant) IsActive() bool {
	return g.Status == GrantStatusActive
}
