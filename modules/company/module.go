package company

import (
	"github.com/labstack/echo/v4"

	"meetsync/core/cache"
	"meetsync/core/database"
	"meetsync/core/middleware"
	"meetsync/modules/company/controller"
	"meetsync/modules/company/repository"
	"meetsync/modules/company/router"
	"meetsync/modules/company/service"
)

// NewService builds the company service ahead of route registration so the
// server can hand it to the API-key middleware before any module is wired.
func NewService(db database.Database, cacheService *cache.Service) service.CompanyServiceInterface {
	repo := repository.NewCompanyRepository(db)
	return service.NewCompanyService(repo, cacheService)
}

// Init registers the company routes
func Init(e *echo.Echo, svc service.CompanyServiceInterface, mw *middleware.Middleware) {
	ctrl := controller.NewCompanyController(svc)
	rtr := router.NewCompanyRouter(ctrl)

	rtr.Setup(e, mw)
}
