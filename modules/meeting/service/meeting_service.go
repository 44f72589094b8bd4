package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"meetsync/core/async"
	"meetsync/core/constants"
	coreEntity "meetsync/core/entity"
	"meetsync/core/errors"
	"meetsync/core/logger"
	"meetsync/core/params"
	"meetsync/core/queue"
	"meetsync/core/utils"
	calendarDto "meetsync/modules/calendar/dto"
	calendarService "meetsync/modules/calendar/service"
	contactsService "meetsync/modules/contacts/service"
	grantService "meetsync/modules/grant/service"
	mailerDto "meetsync/modules/mailer/dto"
	mailerService "meetsync/modules/mailer/service"
	"meetsync/modules/meeting/dto"
	"meetsync/modules/meeting/entity"
	"meetsync/modules/meeting/repository"
	notificationDto "meetsync/modules/notification/dto"
	notificationEntity "meetsync/modules/notification/entity"
	notificationService "meetsync/modules/notification/service"
)

// MeetingServiceInterface is the orchestrator: it threads one meeting
// through grant verification, enrichment, event creation and invite
// delivery, with each stage's failure policy encoded here and nowhere
// else.
type MeetingServiceInterface interface {
	ScheduleMeeting(ctx context.Context, companyID uuid.UUID, req *dto.ScheduleMeetingRequest) (*dto.MeetingResponse, *errors.AppError)
	FindAvailabilityAndSchedule(ctx context.Context, companyID uuid.UUID, req *dto.FindAndScheduleRequest) (*dto.FindAndScheduleResult, *errors.AppError)

	// Safe variants never return an error; failures come back as a tagged
	// result for direct handler mapping.
	ScheduleMeetingSafe(ctx context.Context, companyID uuid.UUID, req *dto.ScheduleMeetingRequest) *dto.ScheduleResult
	FindAvailabilityAndScheduleSafe(ctx context.Context, companyID uuid.UUID, req *dto.FindAndScheduleRequest) *dto.FindAndScheduleResult

	GetMeeting(ctx context.Context, companyID, id uuid.UUID) (*dto.MeetingResponse, *errors.AppError)
	ListMyMeetings(ctx context.Context, companyID uuid.UUID, organizerEmail string, queryParams params.QueryParams) (*entity.PaginatedMeetingEntity, *errors.AppError)
	CancelMeeting(ctx context.Context, companyID, id uuid.UUID) (*dto.MeetingResponse, *errors.AppError)
	ResendEmail(ctx context.Context, companyID, id uuid.UUID) *errors.AppError
	RSVP(ctx context.Context, shareSlug string, req *dto.RSVPRequest) (*dto.MeetingResponse, *errors.AppError)
}

type MeetingService struct {
	repo          repository.MeetingRepositoryInterface
	grants        grantService.GrantServiceInterface
	calendar      calendarService.CalendarServiceInterface
	contacts      contactsService.ContactsServiceInterface
	mailer        mailerService.MailerServiceInterface
	notifications notificationService.NotificationServiceInterface
	queue         *queue.Client
}

func NewMeetingService(
	repo repository.MeetingRepositoryInterface,
	grants grantService.GrantServiceInterface,
	calendar calendarService.CalendarServiceInterface,
	contacts contactsService.ContactsServiceInterface,
	mailer mailerService.MailerServiceInterface,
	notifications notificationService.NotificationServiceInterface,
	queueClient *queue.Client,
) MeetingServiceInterface {
	return &MeetingService{
		repo:          repo,
		grants:        grants,
		calendar:      calendar,
		contacts:      contacts,
		mailer:        mailer,
		notifications: notifications,
		queue:         queueClient,
	}
}

// ScheduleMeeting runs the full pipeline. Stage policies: grant check
// fails fast with a typed error; enrichment failures are absorbed; event
// creation failure aborts; invite failure keeps status=scheduled with no
// email reference so the caller can resend later.
func (s *MeetingService) ScheduleMeeting(ctx context.Context, companyID uuid.UUID, req *dto.ScheduleMeetingRequest) (*dto.MeetingResponse, *errors.AppError) {
	startTime, endTime, appErr := parseWindow(req.StartTime, req.EndTime)
	if appErr != nil {
		return nil, appErr
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = utils.GenerateIdempotencyKey()
	} else {
		existing, err := s.repo.GetByIdempotencyKey(ctx, companyID, idempotencyKey)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to check idempotency key", err)
		}
		if existing != nil {
			logger.Info("MeetingService:ScheduleMeeting:IdempotentReplay",
				"meeting_id", existing.ID, "idempotency_key", idempotencyKey)
			return s.toResponse(ctx, existing)
		}
	}

	grant, appErr := s.grants.MustResolve(ctx, companyID, req.Organizer.Email)
	if appErr != nil {
		return nil, appErr
	}

	meeting, participants := buildDraft(companyID, req, startTime, endTime, idempotencyKey)
	if meeting.OrganizerName == "" {
		meeting.OrganizerName = grant.Email
	}

	if err := s.repo.Create(ctx, meeting, participants); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to persist meeting", err)
	}

	// Enrichment is advisory: lookups that fail leave the participant as
	// the caller supplied it.
	participants = s.enrichParticipants(ctx, companyID, meeting, participants)

	created, appErr := s.calendar.CreateEvent(ctx, companyID, meeting.OrganizerEmail, buildEventInput(meeting, participants))
	if appErr != nil {
		meeting.Status = entity.MeetingStatusCancelled
		if err := s.repo.Update(ctx, meeting); err != nil {
			logger.Error("MeetingService:ScheduleMeeting:AbortPersist", "meeting_id", meeting.ID, "error", err)
		}
		return nil, appErr
	}

	meeting.Status = entity.MeetingStatusScheduled
	meeting.CalendarEventID = &created.EventID
	meeting.CalendarHTMLLink = optional(created.HTMLLink)
	meeting.CalendarID = optional(created.CalendarID)
	meeting.ICalUID = optional(created.ICalUID)
	if created.JoinURL != "" {
		meeting.JoinURL = &created.JoinURL
	}
	if err := s.repo.Update(ctx, meeting); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to persist calendar reference", err)
	}

	sent, appErr := s.mailer.SendMeetingEmail(ctx, companyID, mailerDto.EmailKindInvite, s.toEmail(meeting, participants))
	if appErr != nil {
		logger.Warn("MeetingService:ScheduleMeeting:InviteFailed",
			"meeting_id", meeting.ID, "error", appErr)
		s.notify(ctx, companyID, meeting.OrganizerEmail, notificationEntity.TypeEmailFailed,
			"Invite not delivered",
			fmt.Sprintf("The invite for %q could not be sent. Use resend to retry.", meeting.Subject),
			meeting)
	} else {
		meeting.Status = entity.MeetingStatusSent
		meeting.EmailMessageID = &sent.MessageID
		meeting.EmailThreadID = optional(sent.ThreadID)
		sentAt := sent.SentAt
		meeting.EmailSentAt = &sentAt
		if err := s.repo.Update(ctx, meeting); err != nil {
			logger.Error("MeetingService:ScheduleMeeting:EmailRefPersist", "meeting_id", meeting.ID, "error", err)
		}
	}

	s.notify(ctx, companyID, meeting.OrganizerEmail, notificationEntity.TypeMeetingScheduled,
		"Meeting scheduled",
		fmt.Sprintf("%q is scheduled for %s.", meeting.Subject, meeting.StartTime.Format(time.RFC1123)),
		meeting)

	return dto.ToMeetingResponse(meeting, participants), nil
}

func (s *MeetingService) FindAvailabilityAndSchedule(ctx context.Context, companyID uuid.UUID, req *dto.FindAndScheduleRequest) (*dto.FindAndScheduleResult, *errors.AppError) {
	searchStart := time.Now()
	if req.SearchStart != "" {
		t, err := time.Parse(time.RFC3339, req.SearchStart)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid search_start, want RFC3339", err)
		}
		searchStart = t
	}
	searchEnd := searchStart.AddDate(0, 0, constants.DefaultSearchDays)
	if req.SearchEnd != "" {
		t, err := time.Parse(time.RFC3339, req.SearchEnd)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInvalidInput, "Invalid search_end, want RFC3339", err)
		}
		searchEnd = t
	}

	emails := make([]string, 0, len(req.Participants)+1)
	emails = append(emails, req.Organizer.Email)
	for _, p := range req.Participants {
		emails = append(emails, p.Email)
	}

	availability, appErr := s.calendar.CheckAvailabilityForUsers(ctx, companyID, emails, searchStart, searchEnd, req.DurationMinutes, 0)
	if appErr != nil {
		return nil, appErr
	}

	var slot *calendarDto.TimeSlot
	for i := range availability.Slots {
		if availability.Slots[i].AllAvailable {
			slot = &availability.Slots[i]
			break
		}
	}
	if slot == nil {
		// Nobody shares a free window; a question answered, not a failure.
		return &dto.FindAndScheduleResult{
			OK:      true,
			Slots:   []calendarDto.TimeSlot{},
			Summary: "No common availability in the search window",
		}, nil
	}

	scheduleReq := &dto.ScheduleMeetingRequest{
		Subject:        req.Subject,
		Description:    req.Description,
		Organizer:      req.Organizer,
		Participants:   req.Participants,
		StartTime:      slot.Start,
		EndTime:        slot.End,
		Timezone:       req.Timezone,
		Location:       req.Location,
		IdempotencyKey: req.IdempotencyKey,
		Source:         req.Source,
		Language:       req.Language,
	}

	meeting, appErr := s.ScheduleMeeting(ctx, companyID, scheduleReq)
	if appErr != nil {
		return nil, appErr
	}

	return &dto.FindAndScheduleResult{
		OK:      true,
		Slots:   availability.Slots,
		Meeting: meeting,
		Summary: fmt.Sprintf("Scheduled %q at the first common slot, %s", req.Subject, slot.Start),
	}, nil
}

func (s *MeetingService) ScheduleMeetingSafe(ctx context.Context, companyID uuid.UUID, req *dto.ScheduleMeetingRequest) *dto.ScheduleResult {
	meeting, appErr := s.ScheduleMeeting(ctx, companyID, req)
	if appErr != nil {
		return &dto.ScheduleResult{OK: false, Error: appErr.Message, Code: appErr.Code}
	}
	return &dto.ScheduleResult{
		OK:      true,
		Meeting: meeting,
		Summary: fmt.Sprintf("Scheduled %q for %s with %d participants", meeting.Subject, meeting.StartTime.Format(time.RFC1123), len(meeting.Participants)),
	}
}

func (s *MeetingService) FindAvailabilityAndScheduleSafe(ctx context.Context, companyID uuid.UUID, req *dto.FindAndScheduleRequest) *dto.FindAndScheduleResult {
	result, appErr := s.FindAvailabilityAndSchedule(ctx, companyID, req)
	if appErr != nil {
		return &dto.FindAndScheduleResult{OK: false, Error: appErr.Message, Code: appErr.Code}
	}
	return result
}

func (s *MeetingService) GetMeeting(ctx context.Context, companyID, id uuid.UUID) (*dto.MeetingResponse, *errors.AppError) {
	meeting, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get meeting", err)
	}
	if meeting == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}
	return s.toResponse(ctx, meeting)
}

func (s *MeetingService) ListMyMeetings(ctx context.Context, companyID uuid.UUID, organizerEmail string, queryParams params.QueryParams) (*entity.PaginatedMeetingEntity, *errors.AppError) {
	result, err := s.repo.ListByOrganizer(ctx, companyID, organizerEmail, queryParams)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list meetings", err)
	}
	return result, nil
}

// CancelMeeting tears down best-effort: the provider event delete and the
// cancellation email may fail, the status flip to cancelled may not.
func (s *MeetingService) CancelMeeting(ctx context.Context, companyID, id uuid.UUID) (*dto.MeetingResponse, *errors.AppError) {
	meeting, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get meeting", err)
	}
	if meeting == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}
	if meeting.Status == entity.MeetingStatusCancelled {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Meeting is already cancelled", nil)
	}

	participants, err := s.repo.GetParticipants(ctx, meeting.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load participants", err)
	}

	if meeting.CalendarEventID != nil {
		if appErr := s.calendar.DeleteEvent(ctx, companyID, meeting.OrganizerEmail, *meeting.CalendarEventID); appErr != nil {
			logger.Warn("MeetingService:CancelMeeting:EventDelete",
				"meeting_id", meeting.ID, "event_id", *meeting.CalendarEventID, "error", appErr)
		}
	}

	if meeting.Status == entity.MeetingStatusSent || meeting.Status == entity.MeetingStatusConfirmed {
		if _, appErr := s.mailer.SendMeetingEmail(ctx, companyID, mailerDto.EmailKindCancel, s.toEmail(meeting, participants)); appErr != nil {
			logger.Warn("MeetingService:CancelMeeting:CancelEmail", "meeting_id", meeting.ID, "error", appErr)
		}
	}

	meeting.Status = entity.MeetingStatusCancelled
	if err := s.repo.Update(ctx, meeting); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to cancel meeting", err)
	}

	s.notify(ctx, companyID, meeting.OrganizerEmail, notificationEntity.TypeMeetingCancelled,
		"Meeting cancelled",
		fmt.Sprintf("%q has been cancelled.", meeting.Subject),
		meeting)

	return dto.ToMeetingResponse(meeting, participants), nil
}

// ResendEmail queues a fresh invite delivery for a meeting whose email
// stage failed or whose recipients want it again.
func (s *MeetingService) ResendEmail(ctx context.Context, companyID, id uuid.UUID) *errors.AppError {
	meeting, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to get meeting", err)
	}
	if meeting == nil {
		return errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}
	if meeting.Status == entity.MeetingStatusCancelled || meeting.Status == entity.MeetingStatusDraft {
		return errors.NewAppError(errors.ErrInvalidInput, "Meeting has no invite to resend", nil)
	}

	participants, err := s.repo.GetParticipants(ctx, meeting.ID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to load participants", err)
	}

	kind := mailerDto.EmailKindInvite
	if meeting.EmailMessageID != nil {
		kind = mailerDto.EmailKindUpdate
	}

	payload := mailerDto.DeliverTaskPayload{
		CompanyID: companyID.String(),
		Kind:      kind,
		Email:     *s.toEmail(meeting, participants),
	}
	if err := s.queue.Enqueue(constants.TaskEmailDeliver, payload); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to queue email delivery", err)
	}

	return nil
}

func (s *MeetingService) RSVP(ctx context.Context, shareSlug string, req *dto.RSVPRequest) (*dto.MeetingResponse, *errors.AppError) {
	meeting, err := s.repo.GetByShareSlug(ctx, shareSlug)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to get meeting", err)
	}
	if meeting == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Meeting not found", nil)
	}
	if meeting.Status == entity.MeetingStatusCancelled {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Meeting is cancelled", nil)
	}

	status := entity.RSVPAccepted
	if req.Status == "declined" {
		status = entity.RSVPDeclined
	}

	found, err := s.repo.UpdateRSVP(ctx, meeting.ID, req.Email, status)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to record RSVP", err)
	}
	if !found {
		return nil, errors.NewAppError(errors.ErrNotFound, "Participant not found on this meeting", nil)
	}

	s.notify(ctx, meeting.CompanyID, meeting.OrganizerEmail, notificationEntity.TypeRSVPReceived,
		"RSVP received",
		fmt.Sprintf("%s %s %q.", req.Email, req.Status, meeting.Subject),
		meeting)

	return s.toResponse(ctx, meeting)
}

// ===================== pipeline helpers =====================

func parseWindow(start, end string) (time.Time, time.Time, *errors.AppError) {
	startTime, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid start_time, want RFC3339", err)
	}
	endTime, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "Invalid end_time, want RFC3339", err)
	}
	if !endTime.After(startTime) {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidInput, "end_time must be after start_time", nil)
	}
	return startTime, endTime, nil
}

func buildDraft(companyID uuid.UUID, req *dto.ScheduleMeetingRequest, startTime, endTime time.Time, idempotencyKey string) (*entity.Meeting, []entity.MeetingParticipant) {
	now := time.Now()
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	locationType := entity.LocationType(req.Location.Type)
	if locationType == "" {
		locationType = entity.LocationVideo
	}
	language := req.Language
	if language == "" {
		language = "en"
	}

	meeting := &entity.Meeting{
		CompanyID:      companyID,
		OrganizerName:  req.Organizer.Name,
		OrganizerEmail: req.Organizer.Email,
		Subject:        req.Subject,
		StartTime:      startTime,
		EndTime:        endTime,
		Timezone:       timezone,
		DurationMins:   int(endTime.Sub(startTime) / time.Minute),
		Status:         entity.MeetingStatusDraft,
		LocationType:   locationType,
		Address:        optional(req.Location.Address),
		DialInNumber:   optional(req.Location.DialInNumber),
		IdempotencyKey: idempotencyKey,
		ShareSlug:      slug.Make(req.Subject) + "-" + utils.GenerateID(),
		Source:         req.Source,
		Language:       language,
		BaseEntity: coreEntity.BaseEntity{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	meeting.Description = optional(req.Description)

	participants := make([]entity.MeetingParticipant, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, entity.MeetingParticipant{
			MeetingID:  meeting.ID,
			Name:       p.Name,
			Email:      p.Email,
			RSVPStatus: entity.RSVPPending,
			BaseEntity: coreEntity.BaseEntity{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
		})
	}

	return meeting, participants
}

func (s *MeetingService) enrichParticipants(ctx context.Context, companyID uuid.UUID, meeting *entity.Meeting, participants []entity.MeetingParticipant) []entity.MeetingParticipant {
	outcomes := async.Settle(ctx, participants, func(ctx context.Context, p entity.MeetingParticipant) (entity.MeetingParticipant, error) {
		contact := s.contacts.ResolveContact(ctx, companyID, meeting.OrganizerEmail, p.Email)
		if contact == nil {
			return p, nil
		}
		if contact.ID != "" {
			p.ContactID = &contact.ID
		}
		if p.Name == "" && contact.Name != "" {
			p.Name = contact.Name
		}
		p.Phone = optional(contact.Phone)
		p.Company = optional(contact.Company)
		return p, nil
	})

	enriched := make([]entity.MeetingParticipant, 0, len(participants))
	for i, o := range outcomes {
		if o.Err != nil {
			enriched = append(enriched, participants[i])
			continue
		}
		p := o.Value
		if p.ContactID != nil || p.Phone != nil || p.Company != nil {
			if err := s.repo.UpdateParticipantEnrichment(ctx, &p); err != nil {
				logger.Warn("MeetingService:enrichParticipants:Persist", "email", p.Email, "error", err)
			}
		}
		enriched = append(enriched, p)
	}
	return enriched
}

func buildEventInput(meeting *entity.Meeting, participants []entity.MeetingParticipant) *calendarDto.CreateEventInput {
	eventParticipants := make([]calendarDto.EventParticipant, 0, len(participants))
	for _, p := range participants {
		eventParticipants = append(eventParticipants, calendarDto.EventParticipant{Name: p.Name, Email: p.Email})
	}

	return &calendarDto.CreateEventInput{
		Title:        meeting.Subject,
		Description:  deref(meeting.Description),
		StartTime:    meeting.StartTime,
		EndTime:      meeting.EndTime,
		Timezone:     meeting.Timezone,
		Participants: eventParticipants,
		LocationType: string(meeting.LocationType),
		Address:      deref(meeting.Address),
		DialInNumber: deref(meeting.DialInNumber),
	}
}

func (s *MeetingService) toEmail(meeting *entity.Meeting, participants []entity.MeetingParticipant) *mailerDto.MeetingEmail {
	recipients := make([]mailerDto.Recipient, 0, len(participants))
	for _, p := range participants {
		recipients = append(recipients, mailerDto.Recipient{Name: p.Name, Email: p.Email})
	}

	return &mailerDto.MeetingEmail{
		MeetingID:      meeting.ID.String(),
		Subject:        meeting.Subject,
		Description:    deref(meeting.Description),
		OrganizerName:  meeting.OrganizerName,
		OrganizerEmail: meeting.OrganizerEmail,
		StartTime:      meeting.StartTime,
		EndTime:        meeting.EndTime,
		Timezone:       meeting.Timezone,
		LocationType:   mailerDto.LocationType(meeting.LocationType),
		JoinURL:        deref(meeting.JoinURL),
		Address:        deref(meeting.Address),
		DialInNumber:   deref(meeting.DialInNumber),
		HTMLLink:       deref(meeting.CalendarHTMLLink),
		ICalUID:        deref(meeting.ICalUID),
		Recipients:     recipients,
	}
}

func (s *MeetingService) toResponse(ctx context.Context, meeting *entity.Meeting) (*dto.MeetingResponse, *errors.AppError) {
	participants, err := s.repo.GetParticipants(ctx, meeting.ID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to load participants", err)
	}
	return dto.ToMeetingResponse(meeting, participants), nil
}

func (s *MeetingService) notify(ctx context.Context, companyID uuid.UUID, recipientEmail, notifType, title, message string, meeting *entity.Meeting) {
	s.notifications.Notify(ctx, companyID, &notificationDto.NotifyRequest{
		RecipientEmail: recipientEmail,
		Title:          title,
		Message:        message,
		Type:           notifType,
		Data: map[string]interface{}{
			"meeting_id": meeting.ID.String(),
			"subject":    meeting.Subject,
			"status":     string(meeting.Status),
		},
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
