package mailer

import (
	"meetsync/core/constants"
	"meetsync/core/queue"
	"meetsync/core/storage"
	companyService "meetsync/modules/company/service"
	grantService "meetsync/modules/grant/service"
	"meetsync/modules/mailer/service"
)

// Init wires the mailer service and registers its background delivery
// handler on the worker. The mailer has no HTTP surface of its own;
// other modules call it directly.
func Init(
	grants grantService.GrantServiceInterface,
	company companyService.CompanyServiceInterface,
	store *storage.ObjectStore,
	worker *queue.Worker,
) service.MailerServiceInterface {
	mailerService := service.NewMailerService(grants, company, store)

	if worker != nil {
		worker.Handle(constants.TaskEmailDeliver, service.NewDeliverTaskHandler(mailerService))
	}

	return mailerService
}
