package dto

import (
	"time"

	"meetsync/core/errors"
	calendarDto "meetsync/modules/calendar/dto"
	"meetsync/modules/meeting/entity"
)

// ===================== Request DTOs =====================

type PersonInput struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email" validate:"required,email"`
}

type LocationInput struct {
	Type         string `json:"type" validate:"required,oneof=video physical phone"`
	Address      string `json:"address,omitempty"`
	DialInNumber string `json:"dial_in_number,omitempty"`
}

type ScheduleMeetingRequest struct {
	Subject      string        `json:"subject" validate:"required"`
	Description  string        `json:"description,omitempty"`
	Organizer    PersonInput   `json:"organizer" validate:"required"`
	Participants []PersonInput `json:"participants" validate:"required,min=1"`
	StartTime    string        `json:"start_time" validate:"required"` // RFC3339
	EndTime      string        `json:"end_time" validate:"required"`
	Timezone     string        `json:"timezone"`
	Location     LocationInput `json:"location"`
	// IdempotencyKey lets a network-level retry return the already-created
	// meeting instead of duplicating the provider event. Generated when
	// absent.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	Source         string `json:"source,omitempty"`
	Language       string `json:"language,omitempty"`
}

type FindAndScheduleRequest struct {
	Subject         string        `json:"subject" validate:"required"`
	Description     string        `json:"description,omitempty"`
	Organizer       PersonInput   `json:"organizer" validate:"required"`
	Participants    []PersonInput `json:"participants" validate:"required,min=1"`
	DurationMinutes int           `json:"duration_minutes" validate:"required,min=15,max=480"`
	SearchStart     string        `json:"search_start,omitempty"` // RFC3339, default now
	SearchEnd       string        `json:"search_end,omitempty"`   // default now+7d
	Timezone        string        `json:"timezone"`
	Location        LocationInput `json:"location"`
	IdempotencyKey  string        `json:"idempotency_key,omitempty"`
	Source          string        `json:"source,omitempty"`
	Language        string        `json:"language,omitempty"`
}

type RSVPRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

// ===================== Response DTOs =====================

type ParticipantResponse struct {
	ContactID  string `json:"contact_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Company    string `json:"company,omitempty"`
	RSVPStatus string `json:"rsvp_status"`
}

type CalendarRef struct {
	EventID    string `json:"event_id"`
	HTMLLink   string `json:"html_link,omitempty"`
	CalendarID string `json:"calendar_id,omitempty"`
	ICalUID    string `json:"ical_uid,omitempty"`
}

type EmailRef struct {
	MessageID string     `json:"message_id"`
	ThreadID  string     `json:"thread_id,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

type MeetingResponse struct {
	ID              string                `json:"id"`
	Subject         string                `json:"subject"`
	Description     string                `json:"description,omitempty"`
	OrganizerName   string                `json:"organizer_name,omitempty"`
	OrganizerEmail  string                `json:"organizer_email"`
	Participants    []ParticipantResponse `json:"participants"`
	StartTime       time.Time             `json:"start_time"`
	EndTime         time.Time             `json:"end_time"`
	Timezone        string                `json:"timezone"`
	DurationMinutes int                   `json:"duration_minutes"`
	Status          string                `json:"status"`
	LocationType    string                `json:"location_type"`
	Address         string                `json:"address,omitempty"`
	DialInNumber    string                `json:"dial_in_number,omitempty"`
	JoinURL         string                `json:"join_url,omitempty"`
	Calendar        *CalendarRef          `json:"calendar,omitempty"`
	Email           *EmailRef             `json:"email,omitempty"`
	ShareSlug       string                `json:"share_slug"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// ScheduleResult is the tagged outcome the public handlers map directly
// onto HTTP: ok:false becomes a 4xx/5xx with the error message, ok:true
// the payload plus a human-readable summary.
type ScheduleResult struct {
	OK      bool             `json:"ok"`
	Meeting *MeetingResponse `json:"meeting,omitempty"`
	Summary string           `json:"summary,omitempty"`
	Error   string           `json:"error,omitempty"`
	Code    errors.ErrorCode `json:"-"`
}

// FindAndScheduleResult additionally reports the candidate slots that were
// considered. No common slot is a valid outcome, not an error: ok stays
// true with a nil meeting and an empty slot list.
type FindAndScheduleResult struct {
	OK      bool                   `json:"ok"`
	Slots   []calendarDto.TimeSlot `json:"slots"`
	Meeting *MeetingResponse       `json:"meeting,omitempty"`
	Summary string                 `json:"summary,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Code    errors.ErrorCode       `json:"-"`
}

// ===================== Mappers =====================

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ToMeetingResponse(m *entity.Meeting, participants []entity.MeetingParticipant) *MeetingResponse {
	resp := &MeetingResponse{
		ID:              m.ID.String(),
		Subject:         m.Subject,
		Description:     deref(m.Description),
		OrganizerName:   m.OrganizerName,
		OrganizerEmail:  m.OrganizerEmail,
		Participants:    make([]ParticipantResponse, 0, len(participants)),
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		Timezone:        m.Timezone,
		DurationMinutes: m.DurationMins,
		Status:          string(m.Status),
		LocationType:    string(m.LocationType),
		Address:         deref(m.Address),
		DialInNumber:    deref(m.DialInNumber),
		JoinURL:         deref(m.JoinURL),
		ShareSlug:       m.ShareSlug,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}

	for _, p := range participants {
		resp.Participants = append(resp.Participants, ParticipantResponse{
			ContactID:  deref(p.ContactID),
			Name:       p.Name,
			Email:      p.Email,
			Phone:      deref(p.Phone),
			Company:    deref(p.Company),
			RSVPStatus: string(p.RSVPStatus),
		})
	}

	if m.CalendarEventID != nil {
		resp.Calendar = &CalendarRef{
			EventID:    *m.CalendarEventID,
			HTMLLink:   deref(m.CalendarHTMLLink),
			CalendarID: deref(m.CalendarID),
			ICalUID:    deref(m.ICalUID),
		}
	}

	if m.EmailMessageID != nil {
		resp.Email = &EmailRef{
			MessageID: *m.EmailMessageID,
			ThreadID:  deref(m.EmailThreadID),
			SentAt:    m.EmailSentAt,
		}
	}

	return resp
}
