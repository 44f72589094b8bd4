package dto

type MarkAsReadRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// NotifyRequest is the internal shape other modules use to emit a
// notification.
type NotifyRequest struct {
	RecipientEmail string                 `json:"recipient_email"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	Type           string                 `json:"type"`
	Data           map[string]interface{} `json:"data,omitempty"`
}
