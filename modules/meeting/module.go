package meeting

import (
	"github.com/labstack/echo/v4"

	"meetsync/core/database"
	"meetsync/core/middleware"
	"meetsync/core/queue"
	calendarService "meetsync/modules/calendar/service"
	contactsService "meetsync/modules/contacts/service"
	grantService "meetsync/modules/grant/service"
	mailerService "meetsync/modules/mailer/service"
	"meetsync/modules/meeting/controller"
	"meetsync/modules/meeting/repository"
	"meetsync/modules/meeting/router"
	"meetsync/modules/meeting/service"
	notificationService "meetsync/modules/notification/service"
)

// Init wires the orchestrator on top of the agent services built before it.
func Init(
	e *echo.Echo,
	db database.IDatabase,
	grants grantService.GrantServiceInterface,
	calendar calendarService.CalendarServiceInterface,
	contacts contactsService.ContactsServiceInterface,
	mailer mailerService.MailerServiceInterface,
	notifications notificationService.NotificationServiceInterface,
	queueClient *queue.Client,
	mw *middleware.Middleware,
) service.MeetingServiceInterface {
	repo := repository.NewMeetingRepository(db)
	svc := service.NewMeetingService(repo, grants, calendar, contacts, mailer, notifications, queueClient)
	ctrl := controller.NewMeetingController(svc)

	router.NewMeetingRouter(ctrl).Setup(e, mw)

	return svc
}
