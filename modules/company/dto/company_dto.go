package dto

import "time"

// ===================== Request DTOs =====================

type CreateCompanyRequest struct {
	Name string `json:"name" validate:"required"`
}

type SetSecretRequest struct {
	KeyName string `json:"key_name" validate:"required"`
	Value   string `json:"value" validate:"required"`
}

// ===================== Response DTOs =====================

type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// IssuedAPIKeyResponse carries the plaintext key exactly once
type IssuedAPIKeyResponse struct {
	ID     string `json:"id"`
	APIKey string `json:"api_key"`
	Prefix string `json:"prefix"`
}
