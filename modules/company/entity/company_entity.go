package entity

import (
	"time"

	"github.com/google/uuid"

	"meetsync/core/entity"
)

// Company is a tenant owning grants, meetings and secrets
type Company struct {
	entity.BaseEntity
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// APIKey is a machine credential for a company. Only the bcrypt hash is
// stored; the plaintext is shown once at issue time.
type APIKey struct {
	ID        uuid.UUID `db:"id" json:"id"`
	CompanyID uuid.UUID `db:"company_id" json:"company_id"`
	KeyHash   string    `db:"key_hash" json:"-"`
	Prefix    string    `db:"prefix" json:"prefix"`
	Revoked   bool      `db:"revoked" json:"revoked"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Secret is a company-scoped credential addressed by logical key name,
// e.g. "provider_api_token".
type Secret struct {
	ID          uuid.UUID `db:"id" json:"id"`
	CompanyID   uuid.UUID `db:"company_id" json:"company_id"`
	KeyName     string    `db:"key_name" json:"key_name"`
	SecretValue string    `db:"secret_value" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
