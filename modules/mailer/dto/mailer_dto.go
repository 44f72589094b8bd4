package dto

import "time"

// EmailKind selects the notification template
type EmailKind string

const (
	EmailKindInvite EmailKind = "invite"
	EmailKindUpdate EmailKind = "update"
	EmailKindCancel EmailKind = "cancel"
)

// LocationType mirrors the meeting location discriminator
type LocationType string

const (
	LocationVideo    LocationType = "video"
	LocationPhysical LocationType = "physical"
	LocationPhone    LocationType = "phone"
)

type Recipient struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// FieldChange describes one changed meeting attribute for update emails
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// MeetingEmail is everything template rendering needs from a meeting.
// The orchestrator maps its payload into this shape so rendering stays a
// pure function of its input.
type MeetingEmail struct {
	MeetingID      string        `json:"meeting_id"`
	Subject        string        `json:"subject"`
	Description    string        `json:"description,omitempty"`
	OrganizerName  string        `json:"organizer_name"`
	OrganizerEmail string        `json:"organizer_email"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Timezone       string        `json:"timezone"`
	LocationType   LocationType  `json:"location_type"`
	JoinURL        string        `json:"join_url,omitempty"`
	Address        string        `json:"address,omitempty"`
	DialInNumber   string        `json:"dial_in_number,omitempty"`
	HTMLLink       string        `json:"html_link,omitempty"`
	ICalUID        string        `json:"ical_uid,omitempty"`
	Recipients     []Recipient   `json:"recipients"`
	Changes        []FieldChange `json:"changes,omitempty"`
}

// SentEmail carries provider references merged back into the meeting
type SentEmail struct {
	MessageID string    `json:"message_id"`
	ThreadID  string    `json:"thread_id,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// BulkSendResult is a structured partial outcome: some recipients reached,
// some not, with per-recipient error strings
type BulkSendResult struct {
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// DeliverTaskPayload is the asynq payload for background delivery retries
type DeliverTaskPayload struct {
	CompanyID string       `json:"company_id"`
	Kind      EmailKind    `json:"kind"`
	Email     MeetingEmail `json:"email"`
}
