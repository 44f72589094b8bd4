package router

import (
	"github.com/labstack/echo/v4"

	"meetsync/core/middleware"
	"meetsync/modules/calendar/controller"
)

type CalendarRouter struct {
	CalendarController *controller.CalendarController
}

func NewCalendarRouter(calendarController *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		CalendarController: calendarController,
	}
}

func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	// Availability is also exposed on the machine path for AI callers
	privateRoutes.POST("/availability", r.CalendarController.CheckAvailability, mw.AuthMiddleware())

	actionRoutes := v1.Group("/actions", mw.APIKeyMiddleware())
	actionRoutes.POST("/availability", r.CalendarController.CheckAvailability)
}
