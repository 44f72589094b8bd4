package controller

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"meetsync/core/constants"
	"meetsync/core/controller"
	"meetsync/core/errors"
	"meetsync/modules/calendar/dto"
	"meetsync/modules/calendar/service"
)

type CalendarController struct {
	controller.BaseController
	CalendarService service.CalendarServiceInterface
}

func NewCalendarController(svc service.CalendarServiceInterface) *CalendarController {
	return &CalendarController{
		BaseController:  controller.NewBaseController(),
		CalendarService: svc,
	}
}

// CheckAvailability handles POST /availability
func (c *CalendarController) CheckAvailability(ctx echo.Context) error {
	companyID, ok := ctx.Get(constants.ContextCompanyID).(uuid.UUID)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Company not authenticated")
	}

	var req dto.CheckAvailabilityRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if req.OrganizerEmail == "" {
		return c.BadRequest(errors.ErrInvalidInput, "organizer_email is required")
	}
	if req.DurationMinutes <= 0 {
		return c.BadRequest(errors.ErrInvalidInput, "duration_minutes must be positive")
	}

	now := time.Now()
	searchStart := now
	if req.SearchStart != "" {
		parsed, err := time.Parse(time.RFC3339, req.SearchStart)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "Invalid search_start format, expected RFC3339")
		}
		searchStart = parsed
	}

	searchEnd := searchStart.AddDate(0, 0, constants.DefaultSearchDays)
	if req.SearchEnd != "" {
		parsed, err := time.Parse(time.RFC3339, req.SearchEnd)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "Invalid search_end format, expected RFC3339")
		}
		searchEnd = parsed
	}

	emails := append([]string{req.OrganizerEmail}, req.ParticipantEmails...)

	result, appErr := c.CalendarService.CheckAvailabilityForUsers(
		ctx.Request().Context(), companyID, emails, searchStart, searchEnd, req.DurationMinutes, req.MinFree)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}
