package entity

import (
	"time"

	"github.com/google/uuid"

	"meetsync/core/entity"
)

// MeetingStatus is monotonic: draft → scheduled → sent → confirmed.
// Cancellation is the only regression, and a cancelled meeting never
// changes again.
type MeetingStatus string

const (
	MeetingStatusDraft     MeetingStatus = "draft"
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusSent      MeetingStatus = "sent"
	MeetingStatusConfirmed MeetingStatus = "confirmed"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

var statusRank = map[MeetingStatus]int{
	MeetingStatusDraft:     0,
	MeetingStatusScheduled: 1,
	MeetingStatusSent:      2,
	MeetingStatusConfirmed: 3,
}

// CanAdvanceTo reports whether moving to next respects monotonicity.
func (s MeetingStatus) CanAdvanceTo(next MeetingStatus) bool {
	if s == MeetingStatusCancelled {
		return false
	}
	if next == MeetingStatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

// Meeting is the unit of work threaded through the scheduling pipeline.
// Calendar and email references start empty and are merged in as the
// corresponding stage completes.
type Meeting struct {
	CompanyID      uuid.UUID     `db:"company_id" json:"company_id"`
	OrganizerName  string        `db:"organizer_name" json:"organizer_name"`
	OrganizerEmail string        `db:"organizer_email" json:"organizer_email"`
	Subject        string        `db:"subject" json:"subject"`
	Description    *string       `db:"description" json:"description,omitempty"`
	StartTime      time.Time     `db:"start_time" json:"start_time"`
	EndTime        time.Time     `db:"end_time" json:"end_time"`
	Timezone       string        `db:"timezone" json:"timezone"`
	DurationMins   int           `db:"duration_minutes" json:"duration_minutes"`
	Status         MeetingStatus `db:"status" json:"status"`

	LocationType LocationType `db:"location_type" json:"location_type"`
	Address      *string      `db:"address" json:"address,omitempty"`
	DialInNumber *string      `db:"dial_in_number" json:"dial_in_number,omitempty"`
	JoinURL      *string      `db:"join_url" json:"join_url,omitempty"`

	CalendarEventID  *string `db:"calendar_event_id" json:"calendar_event_id,omitempty"`
	CalendarHTMLLink *string `db:"calendar_html_link" json:"calendar_html_link,omitempty"`
	CalendarID       *string `db:"calendar_id" json:"calendar_id,omitempty"`
	ICalUID          *string `db:"ical_uid" json:"ical_uid,omitempty"`

	EmailMessageID *string    `db:"email_message_id" json:"email_message_id,omitempty"`
	EmailThreadID  *string    `db:"email_thread_id" json:"email_thread_id,omitempty"`
	EmailSentAt    *time.Time `db:"email_sent_at" json:"email_sent_at,omitempty"`

	IdempotencyKey string `db:"idempotency_key" json:"idempotency_key"`
	ShareSlug      string `db:"share_slug" json:"share_slug"`
	Source         string `db:"source" json:"source"`
	Language       string `db:"language" json:"language"`

	entity.BaseEntity
}

// LocationType discriminates how participants join.
type LocationType string

const (
	LocationVideo    LocationType = "video"
	LocationPhysical LocationType = "physical"
	LocationPhone    LocationType = "phone"
)

type PaginatedMeetingEntity = entity.Pagination[Meeting]
