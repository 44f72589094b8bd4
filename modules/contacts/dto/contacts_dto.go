package dto

import "time"

// Contact is the normalized directory profile of a participant
type Contact struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// DirectoryResponse is the merged, de-duplicated company directory
type DirectoryResponse struct {
	Contacts []Contact `json:"contacts"`
	Total    int       `json:"total"`
	// GrantErrors lists grants whose directory query failed; their
	// contacts are simply absent.
	GrantErrors []string `json:"grant_errors,omitempty"`
}
