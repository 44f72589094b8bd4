package router

import (
	"github.com/labstack/echo/v4"

	"meetsync/core/middleware"
	"meetsync/modules/grant/controller"
)

type GrantRouter struct {
	GrantController *controller.GrantController
}

func NewGrantRouter(grantController *controller.GrantController) *GrantRouter {
	return &GrantRouter{
		GrantController: grantController,
	}
}

func (r *GrantRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	grantRoutes := privateRoutes.Group("/grants", mw.AuthMiddleware())
	grantRoutes.POST("/callback", r.GrantController.ConnectCallback)
	grantRoutes.GET("", r.GrantController.ListGrants)
	grantRoutes.DELETE("/:user_id", r.GrantController.Disconnect)
}
