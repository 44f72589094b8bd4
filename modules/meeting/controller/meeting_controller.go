package controller

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"meetsync/core/constants"
	"meetsync/core/controller"
	"meetsync/core/errors"
	"meetsync/core/params"
	"meetsync/core/utils"
	"meetsync/modules/meeting/dto"
	"meetsync/modules/meeting/service"
)

type MeetingController struct {
	controller.BaseController
	MeetingService service.MeetingServiceInterface
}

func NewMeetingController(svc service.MeetingServiceInterface) *MeetingController {
	return &MeetingController{
		BaseController: controller.NewBaseController(),
		MeetingService: svc,
	}
}

// Schedule handles POST /meetings. The safe result maps directly: ok:false
// becomes the matching HTTP error, ok:true the payload with a summary.
func (c *MeetingController) Schedule(ctx echo.Context) error {
	companyID, ok := ctx.Get(constants.ContextCompanyID).(uuid.UUID)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Company not authenticated")
	}

	req := new(dto.ScheduleMeetingRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if req.Subject == "" || req.Organizer.Email == "" || len(req.Participants) == 0 {
		return c.BadRequest(errors.ErrInvalidInput, "subject, organizer.email and participants are required")
	}

	result := c.MeetingService.ScheduleMeetingSafe(ctx.Request().Context(), companyID, req)
	if !result.OK {
		return c.ErrorResponse(ctx, errors.NewAppError(result.Code, result.Error, nil))
	}

	return c.SuccessResponse(ctx, result, result.Summary)
}

// FindAndSchedule handles POST /meetings/find-and-schedule
func (c *MeetingController) FindAndSchedule(ctx echo.Context) error {
	companyID, ok := ctx.Get(constants.ContextCompanyID).(uuid.UUID)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Company not authenticated")
	}

	req := new(dto.FindAndScheduleRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if req.Subject == "" || req.Organizer.Email == "" || len(req.Participants) == 0 || req.DurationMinutes <= 0 {
		return c.BadRequest(errors.ErrInvalidInput, "subject, organizer.email, participants and duration_minutes are required")
	}

	result := c.MeetingService.FindAvailabilityAndScheduleSafe(ctx.Request().Context(), companyID, req)
	if !result.OK {
		return c.ErrorResponse(ctx, errors.NewAppError(result.Code, result.Error, nil))
	}

	return c.SuccessResponse(ctx, result, result.Summary)
}

func (c *MeetingController) GetMeeting(ctx echo.Context) error {
	companyID, ok := ctx.Get(constants.ContextCompanyID).(uuid.UUID)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Company not authenticated")
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid meeting id")
	}

	meeting, appErr := c.MeetingService.GetMeeting(ctx.Request().Context(), companyID, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, meeting, "Success")
}

func (c *MeetingController) ListMyMeetings(ctx echo.Context) error {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	queryParams := params.FromContext(ctx)
	result, appErr := c.MeetingService.ListMyMeetings(ctx.Request().Context(), claims.CompanyID, claims.Email, queryParams)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Meetings retrieved successfully")
}

func (c *MeetingController) Cancel(ctx echo.Context) error {
	companyID, ok := ctx.Get(constants.ContextCompanyID).(uuid.UUID)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Company not authenticated")
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid meeting id")
	}

	meeting, appErr := c.MeetingService.CancelMeeting(ctx.Request().Context(), companyID, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, meeting, "Meeting cancelled")
}

func (c *MeetingController) ResendEmail(ctx echo.Context) error {
	companyID, ok := ctx.Get(constants.ContextCompanyID).(uuid.UUID)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Company not authenticated")
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid meeting id")
	}

	if appErr := c.MeetingService.ResendEmail(ctx.Request().Context(), companyID, id); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Email delivery queued")
}

// RSVP handles the public share-link endpoint; no auth, the slug is the
// capability.
func (c *MeetingController) RSVP(ctx echo.Context) error {
	shareSlug := ctx.Param("slug")

	req := new(dto.RSVPRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if req.Email == "" || (req.Status != "accepted" && req.Status != "declined") {
		return c.BadRequest(errors.ErrInvalidInput, "email and status (accepted|declined) are required")
	}

	meeting, appErr := c.MeetingService.RSVP(ctx.Request().Context(), shareSlug, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, meeting, "RSVP recorded")
}
