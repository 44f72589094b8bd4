package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"meetsync/core/errors"
	"meetsync/core/params"
	calendarDto "meetsync/modules/calendar/dto"
	contactsDto "meetsync/modules/contacts/dto"
	grantDto "meetsync/modules/grant/dto"
	grantEntity "meetsync/modules/grant/entity"
	mailerDto "meetsync/modules/mailer/dto"
	"meetsync/modules/meeting/dto"
	"meetsync/modules/meeting/entity"
	notificationDto "meetsync/modules/notification/dto"
	notificationEntity "meetsync/modules/notification/entity"
)

// ===================== fakes =====================

type fakeRepo struct {
	meetings     map[uuid.UUID]*entity.Meeting
	participants map[uuid.UUID][]entity.MeetingParticipant
	byKey        map[string]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		meetings:     map[uuid.UUID]*entity.Meeting{},
		participants: map[uuid.UUID][]entity.MeetingParticipant{},
		byKey:        map[string]uuid.UUID{},
	}
}

func (r *fakeRepo) Create(_ context.Context, m *entity.Meeting, ps []entity.MeetingParticipant) error {
	copied := *m
	r.meetings[m.ID] = &copied
	r.participants[m.ID] = append([]entity.MeetingParticipant(nil), ps...)
	r.byKey[m.IdempotencyKey] = m.ID
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, _ uuid.UUID, id uuid.UUID) (*entity.Meeting, error) {
	m, ok := r.meetings[id]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (r *fakeRepo) GetByIdempotencyKey(_ context.Context, _ uuid.UUID, key string) (*entity.Meeting, error) {
	id, ok := r.byKey[key]
	if !ok {
		return nil, nil
	}
	copied := *r.meetings[id]
	return &copied, nil
}

func (r *fakeRepo) GetByShareSlug(_ context.Context, slug string) (*entity.Meeting, error) {
	for _, m := range r.meetings {
		if m.ShareSlug == slug {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ListByOrganizer(_ context.Context, _ uuid.UUID, _ string, _ params.QueryParams) (*entity.PaginatedMeetingEntity, error) {
	return &entity.PaginatedMeetingEntity{}, nil
}

func (r *fakeRepo) Update(_ context.Context, m *entity.Meeting) error {
	copied := *m
	r.meetings[m.ID] = &copied
	return nil
}

func (r *fakeRepo) GetParticipants(_ context.Context, meetingID uuid.UUID) ([]entity.MeetingParticipant, error) {
	return r.participants[meetingID], nil
}

func (r *fakeRepo) UpdateParticipantEnrichment(_ context.Context, p *entity.MeetingParticipant) error {
	ps := r.participants[p.MeetingID]
	for i := range ps {
		if ps[i].Email == p.Email {
			ps[i] = *p
		}
	}
	return nil
}

func (r *fakeRepo) UpdateRSVP(_ context.Context, meetingID uuid.UUID, email string, status entity.RSVPStatus) (bool, error) {
	ps := r.participants[meetingID]
	for i := range ps {
		if ps[i].Email == email {
			ps[i].RSVPStatus = status
			return true, nil
		}
	}
	return false, nil
}

type fakeGrants struct {
	connected map[string]bool
}

func (g *fakeGrants) Resolve(_ context.Context, _ uuid.UUID, email string) (*grantEntity.Grant, error) {
	if g.connected[email] {
		return &grantEntity.Grant{Email: email}, nil
	}
	return nil, nil
}

func (g *fakeGrants) MustResolve(_ context.Context, _ uuid.UUID, email string) (*grantEntity.Grant, *errors.AppError) {
	if g.connected[email] {
		return &grantEntity.Grant{Email: email}, nil
	}
	return nil, errors.NewAppError(errors.ErrNotConnected, "not connected", nil)
}

func (g *fakeGrants) SaveGrant(_ context.Context, _, _ uuid.UUID, _ *grantDto.ConnectCallbackRequest) (*grantDto.GrantResponse, *errors.AppError) {
	return nil, nil
}

func (g *fakeGrants) ListGrants(_ context.Context, _ uuid.UUID) ([]grantDto.GrantResponse, *errors.AppError) {
	return nil, nil
}

func (g *fakeGrants) ListActiveGrants(_ context.Context, _ uuid.UUID) ([]grantEntity.Grant, error) {
	return nil, nil
}

func (g *fakeGrants) Disconnect(_ context.Context, _, _ uuid.UUID) *errors.AppError {
	return nil
}

func (g *fakeGrants) EnsureValidToken(_ context.Context, grant *grantEntity.Grant) (string, error) {
	return "token-" + grant.Email, nil
}

type fakeCalendar struct {
	createCalls int
	deleteCalls int
	failCreate  bool
	slots       []calendarDto.TimeSlot
	lastInput   *calendarDto.CreateEventInput
}

func (c *fakeCalendar) CreateEvent(_ context.Context, _ uuid.UUID, _ string, input *calendarDto.CreateEventInput) (*calendarDto.CreatedEvent, *errors.AppError) {
	c.createCalls++
	c.lastInput = input
	if c.failCreate {
		return nil, errors.NewAppError(errors.ErrProvider, "provider rejected the event", nil)
	}
	return &calendarDto.CreatedEvent{
		EventID:    "evt-1",
		HTMLLink:   "https://calendar.example.com/evt-1",
		CalendarID: "primary",
		ICalUID:    "evt-1@provider",
		JoinURL:    "https://meet.example.com/evt-1",
	}, nil
}

func (c *fakeCalendar) UpdateEvent(_ context.Context, _ uuid.UUID, _, _ string, _ *calendarDto.CreateEventInput) (*calendarDto.Event, *errors.AppError) {
	return nil, nil
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, _ uuid.UUID, _, _ string) *errors.AppError {
	c.deleteCalls++
	return nil
}

func (c *fakeCalendar) GetEvent(_ context.Context, _ uuid.UUID, _, _ string) (*calendarDto.Event, *errors.AppError) {
	return nil, nil
}

func (c *fakeCalendar) CheckAvailabilityForUsers(_ context.Context, _ uuid.UUID, _ []string, _, _ time.Time, _, _ int) (*calendarDto.CheckAvailabilityResponse, *errors.AppError) {
	return &calendarDto.CheckAvailabilityResponse{Slots: c.slots}, nil
}

type fakeContacts struct {
	directory map[string]*contactsDto.Contact
}

func (c *fakeContacts) ResolveContact(_ context.Context, _ uuid.UUID, _, email string) *contactsDto.Contact {
	return c.directory[email]
}

func (c *fakeContacts) CompanyDirectory(_ context.Context, _ uuid.UUID) (*contactsDto.DirectoryResponse, *errors.AppError) {
	return &contactsDto.DirectoryResponse{}, nil
}

type fakeMailer struct {
	sendCalls int
	failSend  bool
	lastKind  mailerDto.EmailKind
}

func (m *fakeMailer) SendMeetingEmail(_ context.Context, _ uuid.UUID, kind mailerDto.EmailKind, _ *mailerDto.MeetingEmail) (*mailerDto.SentEmail, *errors.AppError) {
	m.sendCalls++
	m.lastKind = kind
	if m.failSend {
		return nil, errors.NewAppError(errors.ErrProvider, "smtp down", nil)
	}
	return &mailerDto.SentEmail{MessageID: "msg-1", ThreadID: "thr-1", SentAt: time.Now()}, nil
}

func (m *fakeMailer) SendBulkInvites(_ context.Context, _ uuid.UUID, _ *mailerDto.MeetingEmail) (*mailerDto.BulkSendResult, *errors.AppError) {
	return &mailerDto.BulkSendResult{}, nil
}

type fakeNotificationService struct {
	notified []string
}

func (n *fakeNotificationService) Notify(_ context.Context, _ uuid.UUID, req *notificationDto.NotifyRequest) {
	n.notified = append(n.notified, req.Type)
}

func (n *fakeNotificationService) ListForRecipient(_ context.Context, _ uuid.UUID, _ string, _ params.QueryParams) (*notificationEntity.PaginatedNotificationEntity, error) {
	return &notificationEntity.PaginatedNotificationEntity{}, nil
}

func (n *fakeNotificationService) MarkAsRead(_ context.Context, _ uuid.UUID, _ string, _ []string) error {
	return nil
}

func (n *fakeNotificationService) MarkAllAsRead(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

func (n *fakeNotificationService) CountUnread(_ context.Context, _ uuid.UUID, _ string) (int, error) {
	return 0, nil
}

// ===================== fixtures =====================

type orchestratorFixture struct {
	svc      MeetingServiceInterface
	repo     *fakeRepo
	grants   *fakeGrants
	calendar *fakeCalendar
	contacts *fakeContacts
	mailer   *fakeMailer
	notifier *fakeNotificationService
}

func newFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		repo:     newFakeRepo(),
		grants:   &fakeGrants{connected: map[string]bool{"dana@acme.com": true}},
		calendar: &fakeCalendar{},
		contacts: &fakeContacts{directory: map[string]*contactsDto.Contact{}},
		mailer:   &fakeMailer{},
		notifier: &fakeNotificationService{},
	}
	f.svc = NewMeetingService(f.repo, f.grants, f.calendar, f.contacts, f.mailer, f.notifier, nil)
	return f
}

func scheduleRequest() *dto.ScheduleMeetingRequest {
	return &dto.ScheduleMeetingRequest{
		Subject:   "Quarterly Review",
		Organizer: dto.PersonInput{Name: "Dana", Email: "dana@acme.com"},
		Participants: []dto.PersonInput{
			{Email: "bob@acme.com"},
		},
		StartTime: "2026-09-01T10:00:00Z",
		EndTime:   "2026-09-01T10:30:00Z",
		Timezone:  "UTC",
		Location:  dto.LocationInput{Type: "video"},
	}
}

// ===================== tests =====================

func TestScheduleMeetingHappyPath(t *testing.T) {
	f := newFixture()
	f.contacts.directory["bob@acme.com"] = &contactsDto.Contact{
		ID: "c-9", Name: "Bob", Email: "bob@acme.com", Phone: "+1 555 0101",
	}

	meeting, appErr := f.svc.ScheduleMeeting(context.Background(), uuid.New(), scheduleRequest())
	if appErr != nil {
		t.Fatalf("ScheduleMeeting: %v", appErr)
	}

	if meeting.Status != string(entity.MeetingStatusSent) {
		t.Errorf("status = %s, want sent", meeting.Status)
	}
	if meeting.Calendar == nil || meeting.Calendar.EventID != "evt-1" {
		t.Errorf("calendar ref = %+v, want evt-1", meeting.Calendar)
	}
	if meeting.Email == nil || meeting.Email.MessageID != "msg-1" {
		t.Errorf("email ref = %+v, want msg-1", meeting.Email)
	}
	if meeting.JoinURL != "https://meet.example.com/evt-1" {
		t.Errorf("join url = %s", meeting.JoinURL)
	}
	if meeting.DurationMinutes != 30 {
		t.Errorf("duration = %d, want 30", meeting.DurationMinutes)
	}
	if len(meeting.Participants) != 1 || meeting.Participants[0].Name != "Bob" {
		t.Errorf("participants not enriched: %+v", meeting.Participants)
	}
	if f.mailer.lastKind != mailerDto.EmailKindInvite {
		t.Errorf("sent %s email, want invite", f.mailer.lastKind)
	}
}

func TestScheduleMeetingOrganizerNotConnected(t *testing.T) {
	f := newFixture()
	req := scheduleRequest()
	req.Organizer.Email = "stranger@acme.com"

	_, appErr := f.svc.ScheduleMeeting(context.Background(), uuid.New(), req)
	if appErr == nil {
		t.Fatal("expected an error for a disconnected organizer")
	}
	if appErr.Code != errors.ErrNotConnected {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrNotConnected)
	}
	if f.calendar.createCalls != 0 {
		t.Error("grant check must fail fast, before any provider call")
	}
	if f.mailer.sendCalls != 0 {
		t.Error("no email may be attempted without a grant")
	}
}

func TestScheduleMeetingCalendarFailureAborts(t *testing.T) {
	f := newFixture()
	f.calendar.failCreate = true

	_, appErr := f.svc.ScheduleMeeting(context.Background(), uuid.New(), scheduleRequest())
	if appErr == nil {
		t.Fatal("calendar failure must abort the pipeline")
	}
	if appErr.Code != errors.ErrProvider {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrProvider)
	}
	if f.mailer.sendCalls != 0 {
		t.Error("no email may be attempted after the event stage fails")
	}

	// The persisted draft is closed out rather than left dangling.
	for _, m := range f.repo.meetings {
		if m.Status != entity.MeetingStatusCancelled {
			t.Errorf("aborted meeting status = %s, want cancelled", m.Status)
		}
	}
}

func TestScheduleMeetingEmailFailureStillScheduled(t *testing.T) {
	f := newFixture()
	f.mailer.failSend = true

	meeting, appErr := f.svc.ScheduleMeeting(context.Background(), uuid.New(), scheduleRequest())
	if appErr != nil {
		t.Fatalf("email failure must not fail the operation: %v", appErr)
	}
	if meeting.Status != string(entity.MeetingStatusScheduled) {
		t.Errorf("status = %s, want scheduled", meeting.Status)
	}
	if meeting.Email != nil {
		t.Errorf("email ref must be absent after a failed send, got %+v", meeting.Email)
	}
	if meeting.Calendar == nil {
		t.Error("calendar ref must survive the email failure")
	}
}

func TestScheduleMeetingIdempotentReplay(t *testing.T) {
	f := newFixture()
	req := scheduleRequest()
	req.IdempotencyKey = "retry-key-1"

	companyID := uuid.New()
	first, appErr := f.svc.ScheduleMeeting(context.Background(), companyID, req)
	if appErr != nil {
		t.Fatalf("first call: %v", appErr)
	}

	second, appErr := f.svc.ScheduleMeeting(context.Background(), companyID, req)
	if appErr != nil {
		t.Fatalf("replay: %v", appErr)
	}

	if first.ID != second.ID {
		t.Errorf("replay created a new meeting: %s vs %s", first.ID, second.ID)
	}
	if f.calendar.createCalls != 1 {
		t.Errorf("provider event created %d times, want 1", f.calendar.createCalls)
	}
}

func TestFindAvailabilityAndScheduleNoCommonSlot(t *testing.T) {
	f := newFixture()
	f.calendar.slots = nil

	result, appErr := f.svc.FindAvailabilityAndSchedule(context.Background(), uuid.New(), &dto.FindAndScheduleRequest{
		Subject:         "Sync",
		Organizer:       dto.PersonInput{Email: "dana@acme.com"},
		Participants:    []dto.PersonInput{{Email: "bob@acme.com"}},
		DurationMinutes: 30,
	})
	if appErr != nil {
		t.Fatalf("no common slot is not an error: %v", appErr)
	}
	if !result.OK {
		t.Error("result should be ok")
	}
	if result.Meeting != nil {
		t.Error("no meeting may be created without a slot")
	}
	if len(result.Slots) != 0 {
		t.Errorf("slots = %+v, want empty", result.Slots)
	}
	if f.calendar.createCalls != 0 {
		t.Error("no provider event without a slot")
	}
}

func TestFindAvailabilityAndSchedulePicksFirstSlot(t *testing.T) {
	f := newFixture()
	f.calendar.slots = []calendarDto.TimeSlot{
		{Start: "2026-09-01T10:00:00Z", End: "2026-09-01T10:30:00Z", AllAvailable: true},
		{Start: "2026-09-01T10:15:00Z", End: "2026-09-01T10:45:00Z", AllAvailable: true},
	}

	result, appErr := f.svc.FindAvailabilityAndSchedule(context.Background(), uuid.New(), &dto.FindAndScheduleRequest{
		Subject:         "Sync",
		Organizer:       dto.PersonInput{Email: "dana@acme.com"},
		Participants:    []dto.PersonInput{{Email: "bob@acme.com"}},
		DurationMinutes: 30,
		Location:        dto.LocationInput{Type: "video"},
	})
	if appErr != nil {
		t.Fatalf("FindAvailabilityAndSchedule: %v", appErr)
	}
	if result.Meeting == nil {
		t.Fatal("expected a scheduled meeting")
	}
	if got := result.Meeting.StartTime.UTC().Format(time.RFC3339); got != "2026-09-01T10:00:00Z" {
		t.Errorf("picked slot start = %s, want the first chronological slot", got)
	}
}

func TestScheduleMeetingSafeMapsErrors(t *testing.T) {
	f := newFixture()
	req := scheduleRequest()
	req.Organizer.Email = "stranger@acme.com"

	result := f.svc.ScheduleMeetingSafe(context.Background(), uuid.New(), req)
	if result.OK {
		t.Fatal("expected ok:false")
	}
	if result.Code != errors.ErrNotConnected {
		t.Errorf("code = %s, want %s", result.Code, errors.ErrNotConnected)
	}
	if result.Error == "" {
		t.Error("error message must be present for handler mapping")
	}
}

func TestCancelMeetingIsTerminal(t *testing.T) {
	f := newFixture()
	companyID := uuid.New()

	meeting, appErr := f.svc.ScheduleMeeting(context.Background(), companyID, scheduleRequest())
	if appErr != nil {
		t.Fatalf("schedule: %v", appErr)
	}
	id := uuid.MustParse(meeting.ID)

	cancelled, appErr := f.svc.CancelMeeting(context.Background(), companyID, id)
	if appErr != nil {
		t.Fatalf("cancel: %v", appErr)
	}
	if cancelled.Status != string(entity.MeetingStatusCancelled) {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if f.calendar.deleteCalls != 1 {
		t.Errorf("provider event deleted %d times, want 1", f.calendar.deleteCalls)
	}
	if f.mailer.lastKind != mailerDto.EmailKindCancel {
		t.Errorf("last email kind = %s, want cancel", f.mailer.lastKind)
	}

	if _, appErr := f.svc.CancelMeeting(context.Background(), companyID, id); appErr == nil {
		t.Error("cancelling twice must fail, cancelled meetings are immutable")
	}
}

func TestRSVPUpdatesParticipant(t *testing.T) {
	f := newFixture()
	companyID := uuid.New()

	meeting, appErr := f.svc.ScheduleMeeting(context.Background(), companyID, scheduleRequest())
	if appErr != nil {
		t.Fatalf("schedule: %v", appErr)
	}

	updated, appErr := f.svc.RSVP(context.Background(), meeting.ShareSlug, &dto.RSVPRequest{
		Email:  "bob@acme.com",
		Status: "accepted",
	})
	if appErr != nil {
		t.Fatalf("rsvp: %v", appErr)
	}
	if updated.Participants[0].RSVPStatus != string(entity.RSVPAccepted) {
		t.Errorf("rsvp status = %s, want accepted", updated.Participants[0].RSVPStatus)
	}

	if _, appErr := f.svc.RSVP(context.Background(), meeting.ShareSlug, &dto.RSVPRequest{
		Email:  "nobody@acme.com",
		Status: "declined",
	}); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Error("unknown participant must get a not-found error")
	}
}
