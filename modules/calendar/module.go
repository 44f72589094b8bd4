package calendar

import (
	"github.com/labstack/echo/v4"

	"meetsync/core/cache"
	"meetsync/core/middleware"
	"meetsync/modules/calendar/controller"
	"meetsync/modules/calendar/router"
	"meetsync/modules/calendar/service"
	grantService "meetsync/modules/grant/service"
)

// Init initializes the calendar module and registers routes. The returned
// service is the calendar agent consumed by the meeting orchestrator.
func Init(e *echo.Echo, grants grantService.GrantServiceInterface, cacheService *cache.Service, mw *middleware.Middleware) service.CalendarServiceInterface {
	svc := service.NewCalendarService(grants, cacheService)
	ctrl := controller.NewCalendarController(svc)
	rtr := router.NewCalendarRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
