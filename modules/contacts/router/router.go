package router

import (
	"github.com/labstack/echo/v4"

	"meetsync/core/middleware"
	"meetsync/modules/contacts/controller"
)

type ContactsRouter struct {
	ContactsController *controller.ContactsController
}

func NewContactsRouter(contactsController *controller.ContactsController) *ContactsRouter {
	return &ContactsRouter{
		ContactsController: contactsController,
	}
}

func (r *ContactsRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	contactRoutes := privateRoutes.Group("/contacts", mw.AuthMiddleware())
	contactRoutes.GET("/directory", r.ContactsController.GetDirectory)
	contactRoutes.GET("/resolve", r.ContactsController.ResolveContact)
}
