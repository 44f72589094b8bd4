package dto

import "time"

// ===================== Request DTOs =====================

// ConnectCallbackRequest carries the authorization code from the provider's
// hosted auth redirect
type ConnectCallbackRequest struct {
	Provider string `json:"provider" validate:"required"`
	Code     string `json:"code" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// ===================== Response DTOs =====================

type GrantResponse struct {
	ID              string     `json:"id"`
	Provider        string     `json:"provider"`
	Email           string     `json:"email"`
	Status          string     `json:"status"`
	Scopes          []string   `json:"scopes"`
	LastValidatedAt *time.Time `json:"last_validated_at,omitempty"`
	ConnectedAt     time.Time  `json:"connected_at"`
}
