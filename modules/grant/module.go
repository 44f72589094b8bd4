package grant

import (
	"github.com/labstack/echo/v4"

	"meetsync/core/database"
	"meetsync/core/middleware"
	"meetsync/modules/grant/controller"
	"meetsync/modules/grant/repository"
	"meetsync/modules/grant/router"
	"meetsync/modules/grant/service"
)

// Init initializes the grant module and registers routes. The returned
// service is the grant resolver consumed by the agent modules.
func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware) service.GrantServiceInterface {
	repo := repository.NewGrantRepository(db)
	svc := service.NewGrantService(repo)
	ctrl := controller.NewGrantController(svc)
	rtr := router.NewGrantRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
