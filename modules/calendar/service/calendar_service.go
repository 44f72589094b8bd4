package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"meetsync/core/async"
	"meetsync/core/cache"
	"meetsync/core/constants"
	"meetsync/core/errors"
	"meetsync/core/logger"
	"meetsync/modules/calendar/dto"
	grantService "meetsync/modules/grant/service"
)

// CalendarServiceInterface is the calendar agent: event CRUD on behalf of a
// grant plus group availability.
type CalendarServiceInterface interface {
	CreateEvent(ctx context.Context, companyID uuid.UUID, organizerEmail string, input *dto.CreateEventInput) (*dto.CreatedEvent, *errors.AppError)
	UpdateEvent(ctx context.Context, companyID uuid.UUID, organizerEmail, eventID string, input *dto.CreateEventInput) (*dto.Event, *errors.AppError)
	DeleteEvent(ctx context.Context, companyID uuid.UUID, organizerEmail, eventID string) *errors.AppError
	GetEvent(ctx context.Context, companyID uuid.UUID, organizerEmail, eventID string) (*dto.Event, *errors.AppError)

	// CheckAvailabilityForUsers fans out one event fetch per participant,
	// fails open per branch, then runs the slot calculation.
	CheckAvailabilityForUsers(ctx context.Context, companyID uuid.UUID, emails []string, searchStart, searchEnd time.Time, durationMinutes, minFree int) (*dto.CheckAvailabilityResponse, *errors.AppError)
}

type CalendarService struct {
	grants     grantService.GrantServiceInterface
	cache      *cache.Service
	client     *providerClient
	calculator *AvailabilityCalculator
}

func NewCalendarService(grants grantService.GrantServiceInterface, cacheService *cache.Service) CalendarServiceInterface {
	return &CalendarService{
		grants:     grants,
		cache:      cacheService,
		client:     newProviderClient(),
		calculator: NewAvailabilityCalculator(),
	}
}

func (s *CalendarService) CreateEvent(ctx context.Context, companyID uuid.UUID, organizerEmail string, input *dto.CreateEventInput) (*dto.CreatedEvent, *errors.AppError) {
	grant, appErr := s.grants.MustResolve(ctx, companyID, organizerEmail)
	if appErr != nil {
		return nil, appErr
	}

	bearer, err := s.grants.EnsureValidToken(ctx, grant)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProvider, "Failed to refresh grant token", err)
	}

	created, err := s.client.CreateEvent(ctx, bearer, grant.ID.String(), input)
	if err != nil {
		logger.Error("CalendarService:CreateEvent:Error", "error", err, "organizer", organizerEmail)
		return nil, errors.NewAppError(errors.ErrProvider, err.Error(), err)
	}

	return created, nil
}

func (s *CalendarService) UpdateEvent(ctx context.Context, companyID uuid.UUID, organizerEmail, eventID string, input *dto.CreateEventInput) (*dto.Event, *errors.AppError) {
	grant, appErr := s.grants.MustResolve(ctx, companyID, organizerEmail)
	if appErr != nil {
		return nil, appErr
	}

	bearer, err := s.grants.EnsureValidToken(ctx, grant)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProvider, "Failed to refresh grant token", err)
	}

	updated, err := s.client.UpdateEvent(ctx, bearer, grant.ID.String(), eventID, input)
	if err != nil {
		logger.Error("CalendarService:UpdateEvent:Error", "error", err, "event_id", eventID)
		return nil, errors.NewAppError(errors.ErrProvider, err.Error(), err)
	}

	// Refresh the cached copy so cache-first reads see the new version
	key := cache.Key(grant.ID.String(), "event", eventID)
	_ = s.cache.Set(ctx, key, updated, constants.EventCacheTTL)

	return updated, nil
}

func (s *CalendarService) DeleteEvent(ctx context.Context, companyID uuid.UUID, organizerEmail, eventID string) *errors.AppError {
	grant, appErr := s.grants.MustResolve(ctx, companyID, organizerEmail)
	if appErr != nil {
		return appErr
	}

	bearer, err := s.grants.EnsureValidToken(ctx, grant)
	if err != nil {
		return errors.NewAppError(errors.ErrProvider, "Failed to refresh grant token", err)
	}

	if err := s.client.DeleteEvent(ctx, bearer, grant.ID.String(), eventID); err != nil {
		logger.Error("CalendarService:DeleteEvent:Error", "error", err, "event_id", eventID)
		return errors.NewAppError(errors.ErrProvider, err.Error(), err)
	}

	key := cache.Key(grant.ID.String(), "event", eventID)
	_ = s.cache.Delete(ctx, key)

	return nil
}

// GetEvent is cache-first; the cached copy is advisory and a miss always
// refetches from the provider
func (s *CalendarService) GetEvent(ctx context.Context, companyID uuid.UUID, organizerEmail, eventID string) (*dto.Event, *errors.AppError) {
	grant, appErr := s.grants.MustResolve(ctx, companyID, organizerEmail)
	if appErr != nil {
		return nil, appErr
	}

	key := cache.Key(grant.ID.String(), "event", eventID)
	var cached dto.Event
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	bearer, err := s.grants.EnsureValidToken(ctx, grant)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProvider, "Failed to refresh grant token", err)
	}

	event, err := s.client.GetEvent(ctx, bearer, grant.ID.String(), eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrProvider, err.Error(), err)
	}

	_ = s.cache.Set(ctx, key, event, constants.EventCacheTTL)

	return event, nil
}

func (s *CalendarService) CheckAvailabilityForUsers(ctx context.Context, companyID uuid.UUID, emails []string, searchStart, searchEnd time.Time, durationMinutes, minFree int) (*dto.CheckAvailabilityResponse, *errors.AppError) {
	if durationMinutes <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "duration must be positive", nil)
	}

	start := searchStart.Unix()
	end := searchEnd.Unix()

	type fetched struct {
		busy        dto.ParticipantBusy
		unreachable bool
	}

	// One fetch per participant; a failing branch contributes an empty
	// busy list instead of aborting the whole check.
	outcomes := async.Settle(ctx, emails, func(ctx context.Context, email string) (fetched, error) {
		busy, err := s.fetchBusyIntervals(ctx, companyID, email, start, end)
		if err != nil {
			logger.Warn("CalendarService:CheckAvailability:FetchFailed", "email", email, "error", err)
			return fetched{
				busy:        dto.ParticipantBusy{Email: email, Busy: nil},
				unreachable: true,
			}, nil
		}
		return fetched{busy: dto.ParticipantBusy{Email: email, Busy: busy}}, nil
	})

	participants := make([]dto.ParticipantBusy, 0, len(emails))
	var unreachable []string
	for _, o := range outcomes {
		participants = append(participants, o.Value.busy)
		if o.Value.unreachable {
			unreachable = append(unreachable, o.Value.busy.Email)
		}
	}

	if minFree <= 0 || minFree > len(participants) {
		minFree = len(participants)
	}

	slots := s.calculator.FindSlotsWithMinFree(
		participants, start, end, int64(durationMinutes)*60, minFree)

	return &dto.CheckAvailabilityResponse{
		Slots:                   slots,
		UnreachableParticipants: unreachable,
	}, nil
}

// fetchBusyIntervals loads one participant's events in the window and keeps
// the busy ones as half-open intervals
func (s *CalendarService) fetchBusyIntervals(ctx context.Context, companyID uuid.UUID, email string, start, end int64) ([]dto.BusyInterval, error) {
	grant, err := s.grants.Resolve(ctx, companyID, email)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		// No connected calendar means no known busy time
		return nil, nil
	}

	bearer, err := s.grants.EnsureValidToken(ctx, grant)
	if err != nil {
		return nil, err
	}

	events, err := s.client.ListEvents(ctx, bearer, grant.ID.String(), start, end)
	if err != nil {
		return nil, err
	}

	intervals := make([]dto.BusyInterval, 0, len(events))
	for _, event := range events {
		if !event.Busy {
			continue
		}
		intervals = append(intervals, dto.BusyInterval{
			Start: event.StartTime,
			End:   event.EndTime,
		})
	}

	return intervals, nil
}
