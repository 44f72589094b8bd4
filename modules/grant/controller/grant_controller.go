package controller

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"meetsync/core/constants"
	"meetsync/core/controller"
	"meetsync/core/errors"
	"meetsync/core/utils"
	"meetsync/modules/grant/dto"
	"meetsync/modules/grant/service"
)

type GrantController struct {
	controller.BaseController
	GrantService service.GrantServiceInterface
}

func NewGrantController(svc service.GrantServiceInterface) *GrantController {
	return &GrantController{
		BaseController: controller.NewBaseController(),
		GrantService:   svc,
	}
}

func (c *GrantController) claimsFromContext(ctx echo.Context) (*utils.TokenClaims, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}

	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}

	return claims, nil
}

// ConnectCallback handles POST /grants/callback, the OAuth redirect target
func (c *GrantController) ConnectCallback(ctx echo.Context) error {
	claims, err := c.claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.ConnectCallbackRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	if req.Provider == "" || req.Code == "" || req.Email == "" {
		return c.BadRequest(errors.ErrInvalidInput, "provider, code and email are required")
	}

	result, appErr := c.GrantService.SaveGrant(ctx.Request().Context(), claims.CompanyID, claims.UserID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Account connected successfully")
}

// ListGrants handles GET /grants
func (c *GrantController) ListGrants(ctx echo.Context) error {
	claims, err := c.claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.GrantService.ListGrants(ctx.Request().Context(), claims.CompanyID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// Disconnect handles DELETE /grants/:user_id
func (c *GrantController) Disconnect(ctx echo.Context) error {
	claims, err := c.claimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	userID, err := uuid.Parse(ctx.Param("user_id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid user ID")
	}

	if appErr := c.GrantService.Disconnect(ctx.Request().Context(), claims.CompanyID, userID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Account disconnected")
}
