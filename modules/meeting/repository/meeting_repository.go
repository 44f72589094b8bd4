package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"meetsync/core/database"
	"meetsync/core/logger"
	"meetsync/core/params"
	"meetsync/modules/meeting/entity"
)

const meetingColumns = `
	id, company_id, organizer_name, organizer_email, subject, description,
	start_time, end_time, timezone, duration_minutes, status,
	location_type, address, dial_in_number, join_url,
	calendar_event_id, calendar_html_link, calendar_id, ical_uid,
	email_message_id, email_thread_id, email_sent_at,
	idempotency_key, share_slug, source, language, created_at, updated_at`

type MeetingRepositoryInterface interface {
	Create(ctx context.Context, meeting *entity.Meeting, participants []entity.MeetingParticipant) error
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*entity.Meeting, error)
	GetByIdempotencyKey(ctx context.Context, companyID uuid.UUID, key string) (*entity.Meeting, error)
	GetByShareSlug(ctx context.Context, slug string) (*entity.Meeting, error)
	ListByOrganizer(ctx context.Context, companyID uuid.UUID, organizerEmail string, params params.QueryParams) (*entity.PaginatedMeetingEntity, error)
	Update(ctx context.Context, meeting *entity.Meeting) error

	GetParticipants(ctx context.Context, meetingID uuid.UUID) ([]entity.MeetingParticipant, error)
	UpdateParticipantEnrichment(ctx context.Context, p *entity.MeetingParticipant) error
	UpdateRSVP(ctx context.Context, meetingID uuid.UUID, email string, status entity.RSVPStatus) (bool, error)
}

type MeetingRepository struct {
	db database.IDatabase
}

func NewMeetingRepository(db database.IDatabase) MeetingRepositoryInterface {
	return &MeetingRepository{db: db}
}

func (r *MeetingRepository) Create(ctx context.Context, meeting *entity.Meeting, participants []entity.MeetingParticipant) error {
	tx, err := r.db.SQLx().BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("MeetingRepository:Create:Begin", "error", err)
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO meetings (
			id, company_id, organizer_name, organizer_email, subject, description,
			start_time, end_time, timezone, duration_minutes, status,
			location_type, address, dial_in_number, join_url,
			idempotency_key, share_slug, source, language, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err = tx.ExecContext(ctx, query,
		meeting.ID, meeting.CompanyID, meeting.OrganizerName, meeting.OrganizerEmail,
		meeting.Subject, meeting.Description,
		meeting.StartTime, meeting.EndTime, meeting.Timezone, meeting.DurationMins, meeting.Status,
		meeting.LocationType, meeting.Address, meeting.DialInNumber, meeting.JoinURL,
		meeting.IdempotencyKey, meeting.ShareSlug, meeting.Source, meeting.Language,
		meeting.CreatedAt, meeting.UpdatedAt,
	)
	if err != nil {
		logger.Error("MeetingRepository:Create:Meeting", "error", err)
		return err
	}

	participantQuery := `
		INSERT INTO meeting_participants (id, meeting_id, contact_id, name, email, phone, company, rsvp_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, p := range participants {
		_, err = tx.ExecContext(ctx, participantQuery,
			p.ID, p.MeetingID, p.ContactID, p.Name, p.Email, p.Phone, p.Company,
			p.RSVPStatus, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			logger.Error("MeetingRepository:Create:Participant", "email", p.Email, "error", err)
			return err
		}
	}

	return tx.Commit()
}

func (r *MeetingRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*entity.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE company_id = $1 AND id = $2`

	var meeting entity.Meeting
	err := r.db.GetContext(ctx, &meeting, query, companyID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("MeetingRepository:GetByID", "error", err)
		return nil, err
	}
	return &meeting, nil
}

func (r *MeetingRepository) GetByIdempotencyKey(ctx context.Context, companyID uuid.UUID, key string) (*entity.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE company_id = $1 AND idempotency_key = $2`

	var meeting entity.Meeting
	err := r.db.GetContext(ctx, &meeting, query, companyID, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("MeetingRepository:GetByIdempotencyKey", "error", err)
		return nil, err
	}
	return &meeting, nil
}

func (r *MeetingRepository) GetByShareSlug(ctx context.Context, slug string) (*entity.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE share_slug = $1`

	var meeting entity.Meeting
	err := r.db.GetContext(ctx, &meeting, query, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("MeetingRepository:GetByShareSlug", "error", err)
		return nil, err
	}
	return &meeting, nil
}

func (r *MeetingRepository) ListByOrganizer(ctx context.Context, companyID uuid.UUID, organizerEmail string, params params.QueryParams) (*entity.PaginatedMeetingEntity, error) {
	offset := (params.PageNumber - 1) * params.PageSize

	baseQuery := `FROM meetings WHERE company_id = $1 AND organizer_email = $2`

	var totalItems int
	err := r.db.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, companyID, organizerEmail)
	if err != nil {
		logger.Error("MeetingRepository:ListByOrganizer:Count", "error", err)
		return nil, err
	}

	query := `SELECT ` + meetingColumns + ` ` + baseQuery + `
		ORDER BY start_time DESC
		LIMIT $3 OFFSET $4`

	var meetings []entity.Meeting
	err = r.db.SelectContext(ctx, &meetings, query, companyID, organizerEmail, params.PageSize, offset)
	if err != nil {
		logger.Error("MeetingRepository:ListByOrganizer:Select", "error", err)
		return nil, err
	}

	return &entity.PaginatedMeetingEntity{
		Items:      meetings,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *MeetingRepository) Update(ctx context.Context, meeting *entity.Meeting) error {
	query := `
		UPDATE meetings SET
			subject = $2, description = $3,
			start_time = $4, end_time = $5, timezone = $6, duration_minutes = $7, status = $8,
			location_type = $9, address = $10, dial_in_number = $11, join_url = $12,
			calendar_event_id = $13, calendar_html_link = $14, calendar_id = $15, ical_uid = $16,
			email_message_id = $17, email_thread_id = $18, email_sent_at = $19,
			updated_at = NOW()
		WHERE id = $1
	`
	err := r.db.ExecContext(ctx, query,
		meeting.ID, meeting.Subject, meeting.Description,
		meeting.StartTime, meeting.EndTime, meeting.Timezone, meeting.DurationMins, meeting.Status,
		meeting.LocationType, meeting.Address, meeting.DialInNumber, meeting.JoinURL,
		meeting.CalendarEventID, meeting.CalendarHTMLLink, meeting.CalendarID, meeting.ICalUID,
		meeting.EmailMessageID, meeting.EmailThreadID, meeting.EmailSentAt,
	)
	if err != nil {
		logger.Error("MeetingRepository:Update", "meeting_id", meeting.ID, "error", err)
		return err
	}
	return nil
}

func (r *MeetingRepository) GetParticipants(ctx context.Context, meetingID uuid.UUID) ([]entity.MeetingParticipant, error) {
	query := `
		SELECT id, meeting_id, contact_id, name, email, phone, company, rsvp_status, created_at, updated_at
		FROM meeting_participants
		WHERE meeting_id = $1
		ORDER BY created_at
	`

	var participants []entity.MeetingParticipant
	err := r.db.SelectContext(ctx, &participants, query, meetingID)
	if err != nil {
		logger.Error("MeetingRepository:GetParticipants", "error", err)
		return nil, err
	}
	return participants, nil
}

func (r *MeetingRepository) UpdateParticipantEnrichment(ctx context.Context, p *entity.MeetingParticipant) error {
	query := `
		UPDATE meeting_participants
		SET contact_id = $3, name = $4, phone = $5, company = $6, updated_at = NOW()
		WHERE meeting_id = $1 AND email = $2
	`
	err := r.db.ExecContext(ctx, query, p.MeetingID, p.Email, p.ContactID, p.Name, p.Phone, p.Company)
	if err != nil {
		logger.Error("MeetingRepository:UpdateParticipantEnrichment", "email", p.Email, "error", err)
		return err
	}
	return nil
}

// UpdateRSVP returns false when no participant with that email exists on
// the meeting.
func (r *MeetingRepository) UpdateRSVP(ctx context.Context, meetingID uuid.UUID, email string, status entity.RSVPStatus) (bool, error) {
	query := `
		UPDATE meeting_participants SET rsvp_status = $3, updated_at = NOW()
		WHERE meeting_id = $1 AND email = $2
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query, meetingID, email, status).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		logger.Error("MeetingRepository:UpdateRSVP", "email", email, "error", err)
		return false, err
	}
	return true, nil
}
