package router

import (
	"github.com/labstack/echo/v4"

	"meetsync/core/middleware"
	"meetsync/modules/company/controller"
)

type CompanyRouter struct {
	CompanyController *controller.CompanyController
}

func NewCompanyRouter(companyController *controller.CompanyController) *CompanyRouter {
	return &CompanyRouter{
		CompanyController: companyController,
	}
}

func (r *CompanyRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	// Bootstrap endpoint, open so the first tenant can be created
	v1.POST("/companies", r.CompanyController.CreateCompany)

	privateRoutes := v1.Group("/private/companies", mw.AuthMiddleware())
	privateRoutes.POST("/api-keys", r.CompanyController.IssueAPIKey)
	privateRoutes.PUT("/secrets", r.CompanyController.SetSecret)
}
