package entity

import (
	"github.com/google/uuid"

	"meetsync/core/entity"
)

type RSVPStatus string

const (
	RSVPPending  RSVPStatus = "pending"
	RSVPAccepted RSVPStatus = "accepted"
	RSVPDeclined RSVPStatus = "declined"
)

// MeetingParticipant is one invitee. Contact id, phone and company are
// filled by directory enrichment when the lookup succeeds.
type MeetingParticipant struct {
	MeetingID  uuid.UUID  `db:"meeting_id" json:"meeting_id"`
	ContactID  *string    `db:"contact_id" json:"contact_id,omitempty"`
	Name       string     `db:"name" json:"name"`
	Email      string     `db:"email" json:"email"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	Company    *string    `db:"company" json:"company,omitempty"`
	RSVPStatus RSVPStatus `db:"rsvp_status" json:"rsvp_status"`

	entity.BaseEntity
}
