package controller

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"meetsync/core/constants"
	"meetsync/core/controller"
	"meetsync/core/errors"
	"meetsync/modules/contacts/service"
)

type ContactsController struct {
	controller.BaseController
	ContactsService service.ContactsServiceInterface
}

func NewContactsController(svc service.ContactsServiceInterface) *ContactsController {
	return &ContactsController{
		BaseController:  controller.NewBaseController(),
		ContactsService: svc,
	}
}

// GetDirectory handles GET /contacts/directory
func (c *ContactsController) GetDirectory(ctx echo.Context) error {
	companyID, ok := ctx.Get(constants.ContextCompanyID).(uuid.UUID)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Company not authenticated")
	}

	result, appErr := c.ContactsService.CompanyDirectory(ctx.Request().Context(), companyID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// ResolveContact handles GET /contacts/resolve?organizer=..&email=..
func (c *ContactsController) ResolveContact(ctx echo.Context) error {
	companyID, ok := ctx.Get(constants.ContextCompanyID).(uuid.UUID)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Company not authenticated")
	}

	organizer := ctx.QueryParam("organizer")
	email := ctx.QueryParam("email")
	if organizer == "" || email == "" {
		return c.BadRequest(errors.ErrInvalidInput, "organizer and email query params are required")
	}

	contact := c.ContactsService.ResolveContact(ctx.Request().Context(), companyID, organizer, email)
	if contact == nil {
		return c.NotFound(errors.ErrNotFound, "Contact not found")
	}

	return c.SuccessResponse(ctx, contact, "Success")
}
