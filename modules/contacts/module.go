package contacts

import (
	"github.com/labstack/echo/v4"

	"meetsync/core/cache"
	"meetsync/core/middleware"
	"meetsync/modules/contacts/controller"
	"meetsync/modules/contacts/router"
	"meetsync/modules/contacts/service"
	grantService "meetsync/modules/grant/service"
)

// Init initializes the contacts module and registers routes
func Init(e *echo.Echo, grants grantService.GrantServiceInterface, cacheService *cache.Service, mw *middleware.Middleware) service.ContactsServiceInterface {
	svc := service.NewContactsService(grants, cacheService)
	ctrl := controller.NewContactsController(svc)
	rtr := router.NewContactsRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
