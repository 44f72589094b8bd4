package controller

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"meetsync/core/constants"
	"meetsync/core/controller"
	"meetsync/core/errors"
	"meetsync/modules/company/dto"
	"meetsync/modules/company/service"
)

type CompanyController struct {
	controller.BaseController
	CompanyService service.CompanyServiceInterface
}

func NewCompanyController(svc service.CompanyServiceInterface) *CompanyController {
	return &CompanyController{
		BaseController: controller.NewBaseController(),
		CompanyService: svc,
	}
}

// VerifyAPIKey satisfies middleware.APIKeyVerifier
func (c *CompanyController) VerifyAPIKey(ctx context.Context, apiKey string) (*uuid.UUID, error) {
	return c.CompanyService.VerifyAPIKey(ctx, apiKey)
}

func (c *CompanyController) companyIDFromContext(ctx echo.Context) (uuid.UUID, bool) {
	id, ok := ctx.Get(constants.ContextCompanyID).(uuid.UUID)
	return id, ok
}

// CreateCompany handles POST /companies
func (c *CompanyController) CreateCompany(ctx echo.Context) error {
	var req dto.CreateCompanyRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if req.Name == "" {
		return c.BadRequest(errors.ErrInvalidInput, "Company name is required")
	}

	result, appErr := c.CompanyService.CreateCompany(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Company created successfully")
}

// IssueAPIKey handles POST /companies/api-keys
func (c *CompanyController) IssueAPIKey(ctx echo.Context) error {
	companyID, ok := c.companyIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Company not authenticated")
	}

	result, appErr := c.CompanyService.IssueAPIKey(ctx.Request().Context(), companyID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "API key issued; store it now, it will not be shown again")
}

// SetSecret handles PUT /companies/secrets
func (c *CompanyController) SetSecret(ctx echo.Context) error {
	companyID, ok := c.companyIDFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Company not authenticated")
	}

	var req dto.SetSecretRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if req.KeyName == "" || req.Value == "" {
		return c.BadRequest(errors.ErrInvalidInput, "key_name and value are required")
	}

	if appErr := c.CompanyService.SetSecret(ctx.Request().Context(), companyID, &req); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Secret stored")
}
