package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"meetsync/core/entity"
)

// Notification kinds emitted by the scheduling pipeline.
const (
	TypeMeetingScheduled = "meeting_scheduled"
	TypeMeetingUpdated   = "meeting_updated"
	TypeMeetingCancelled = "meeting_cancelled"
	TypeRSVPReceived     = "rsvp_received"
	TypeEmailFailed      = "email_failed"
)

// Notification is an in-app message addressed to one user of a company.
// Recipients are identified by email, the same identity grants use.
type Notification struct {
	CompanyID      uuid.UUID `db:"company_id" json:"company_id"`
	RecipientEmail string    `db:"recipient_email" json:"recipient_email"`
	Title          string    `db:"title" json:"title"`
	Message        string    `db:"message" json:"message"`
	Type           string    `db:"type" json:"type"`
	Data           JSONB     `db:"data" json:"data"`
	IsRead         bool      `db:"is_read" json:"is_read"`
	entity.BaseEntity
}

type JSONB map[string]interface{}

func (a JSONB) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *JSONB) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &a)
}

type PaginatedNotificationEntity = entity.Pagination[Notification]
