package router

import (
	"github.com/labstack/echo/v4"

	"meetsync/core/middleware"
	"meetsync/modules/meeting/controller"
)

type MeetingRouter struct {
	MeetingController *controller.MeetingController
}

func NewMeetingRouter(meetingController *controller.MeetingController) *MeetingRouter {
	return &MeetingRouter{
		MeetingController: meetingController,
	}
}

func (r *MeetingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	privateRoutes := v1.Group("/private/meetings", mw.AuthMiddleware())
	privateRoutes.POST("", r.MeetingController.Schedule)
	privateRoutes.POST("/find-and-schedule", r.MeetingController.FindAndSchedule)
	privateRoutes.GET("", r.MeetingController.ListMyMeetings)
	privateRoutes.GET("/:id", r.MeetingController.GetMeeting)
	privateRoutes.DELETE("/:id", r.MeetingController.Cancel)
	privateRoutes.POST("/:id/resend-email", r.MeetingController.ResendEmail)

	// Machine path for AI agents holding a company API key
	actionRoutes := v1.Group("/actions", mw.APIKeyMiddleware())
	actionRoutes.POST("/meetings/schedule", r.MeetingController.Schedule)
	actionRoutes.POST("/meetings/find-and-schedule", r.MeetingController.FindAndSchedule)
	actionRoutes.GET("/meetings/:id", r.MeetingController.GetMeeting)
	actionRoutes.DELETE("/meetings/:id", r.MeetingController.Cancel)

	// Share-link RSVP is public: the slug itself is the credential
	v1.POST("/meetings/:slug/rsvp", r.MeetingController.RSVP)
}
