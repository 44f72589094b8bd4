package dto

import "time"

// ===================== Availability shapes =====================

// BusyInterval is a half-open [Start, End) interval in epoch seconds
type BusyInterval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// ParticipantBusy is one participant's busy set within a search window
type ParticipantBusy struct {
	Email string         `json:"email"`
	Busy  []BusyInterval `json:"busy"`
}

// TimeSlot is a candidate interval of the requested duration. Ephemeral,
// computed per request and never persisted.
type TimeSlot struct {
	Start                 string   `json:"start"` // RFC3339
	End                   string   `json:"end"`
	AvailableParticipants []string `json:"available_participants"`
	AllAvailable          bool     `json:"all_available"`
}

// ===================== Request DTOs =====================

type CheckAvailabilityRequest struct {
	OrganizerEmail    string   `json:"organizer_email" validate:"required,email"`
	ParticipantEmails []string `json:"participant_emails" validate:"required"`
	SearchStart       string   `json:"search_start"` // RFC3339
	SearchEnd         string   `json:"search_end"`
	DurationMinutes   int      `json:"duration_minutes" validate:"required,min=15,max=480"`
	// MinFree relaxes the all-must-be-free rule to "at least K free";
	// zero means everyone must be free.
	MinFree int `json:"min_free"`
}

// ===================== Response DTOs =====================

type CheckAvailabilityResponse struct {
	Slots []TimeSlot `json:"slots"`
	// UnreachableParticipants lists emails whose calendar fetch failed;
	// they were treated as free.
	UnreachableParticipants []string `json:"unreachable_participants,omitempty"`
}

// ===================== Normalized provider shapes =====================

// Event is the normalized internal copy of a provider calendar event.
// Internal code never reads raw provider JSON.
type Event struct {
	ID          string    `json:"id"`
	CalendarID  string    `json:"calendar_id"`
	ICalUID     string    `json:"ical_uid"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	HTMLLink    string    `json:"html_link"`
	StartTime   int64     `json:"start_time"` // epoch seconds
	EndTime     int64     `json:"end_time"`
	Timezone    string    `json:"timezone"`
	Location    string    `json:"location"`
	JoinURL     string    `json:"join_url"`
	Attendees   []string  `json:"attendees"`
	Busy        bool      `json:"busy"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// CreateEventInput is the agent-level event creation request
type CreateEventInput struct {
	Title        string
	Description  string
	StartTime    time.Time
	EndTime      time.Time
	Timezone     string
	Participants []EventParticipant
	LocationType string // "video" | "physical" | "phone"
	Address      string
	DialInNumber string
}

type EventParticipant struct {
	Name  string
	Email string
}

// CreatedEvent carries the provider-assigned references merged back into
// the meeting payload after creation
type CreatedEvent struct {
	EventID    string `json:"event_id"`
	HTMLLink   string `json:"html_link"`
	CalendarID string `json:"calendar_id"`
	ICalUID    string `json:"ical_uid"`
	JoinURL    string `json:"join_url,omitempty"`
}
