package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"meetsync/core/async"
	"meetsync/core/errors"
	"meetsync/core/logger"
	"meetsync/core/storage"
	companyService "meetsync/modules/company/service"
	grantService "meetsync/modules/grant/service"
	"meetsync/modules/mailer/dto"
)

// SecretEmailAPIKey is the logical secret name for the transactional
// fallback key
const SecretEmailAPIKey = "email_api_token"

// MailerServiceInterface renders and sends meeting notifications
type MailerServiceInterface interface {
	// SendMeetingEmail sends one notification to all recipients at once,
	// through the organizer's grant when available, otherwise through the
	// company's transactional key.
	SendMeetingEmail(ctx context.Context, companyID uuid.UUID, kind dto.EmailKind, email *dto.MeetingEmail) (*dto.SentEmail, *errors.AppError)

	// SendBulkInvites fans out one send per recipient; partial success is
	// a valid, reported outcome.
	SendBulkInvites(ctx context.Context, companyID uuid.UUID, email *dto.MeetingEmail) (*dto.BulkSendResult, *errors.AppError)
}

// emailSender is the delivery seam; providerClient is the production
// implementation
type emailSender interface {
	Send(ctx context.Context, bearer, grantID, subject, htmlBody string, to []dto.Recipient) (*dto.SentEmail, error)
	SendTransactional(ctx context.Context, apiKey, fromName, fromEmail, subject, htmlBody string, to []dto.Recipient) (*dto.SentEmail, error)
}

type MailerService struct {
	grants  grantService.GrantServiceInterface
	company companyService.CompanyServiceInterface
	store   *storage.ObjectStore
	client  emailSender
}

func NewMailerService(
	grants grantService.GrantServiceInterface,
	company companyService.CompanyServiceInterface,
	store *storage.ObjectStore,
) MailerServiceInterface {
	return &MailerService{
		grants:  grants,
		company: company,
		store:   store,
		client:  newProviderClient(),
	}
}

func (s *MailerService) SendMeetingEmail(ctx context.Context, companyID uuid.UUID, kind dto.EmailKind, email *dto.MeetingEmail) (*dto.SentEmail, *errors.AppError) {
	icsLink := s.uploadICS(ctx, kind, email)

	htmlBody, err := RenderEmail(kind, email, icsLink)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to render email", err)
	}
	subject := SubjectLine(kind, email.Subject)

	sent, err := s.deliver(ctx, companyID, email, subject, htmlBody, email.Recipients)
	if err != nil {
		logger.Error("MailerService:SendMeetingEmail:Error",
			"meeting_id", email.MeetingID, "kind", kind, "error", err)
		return nil, errors.NewAppError(errors.ErrProvider, err.Error(), err)
	}

	return sent, nil
}

func (s *MailerService) SendBulkInvites(ctx context.Context, companyID uuid.UUID, email *dto.MeetingEmail) (*dto.BulkSendResult, *errors.AppError) {
	icsLink := s.uploadICS(ctx, dto.EmailKindInvite, email)

	htmlBody, err := RenderEmail(dto.EmailKindInvite, email, icsLink)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to render email", err)
	}
	subject := SubjectLine(dto.EmailKindInvite, email.Subject)

	outcomes := async.Settle(ctx, email.Recipients, func(ctx context.Context, recipient dto.Recipient) (*dto.SentEmail, error) {
		return s.deliver(ctx, companyID, email, subject, htmlBody, []dto.Recipient{recipient})
	})

	result := &dto.BulkSendResult{}
	for i, o := range outcomes {
		if o.Err != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %v", email.Recipients[i].Email, o.Err))
			continue
		}
		result.Sent++
	}

	return result, nil
}

// deliver prefers the organizer's grant and falls back to the company's
// transactional key
func (s *MailerService) deliver(ctx context.Context, companyID uuid.UUID, email *dto.MeetingEmail, subject, htmlBody string, to []dto.Recipient) (*dto.SentEmail, error) {
	grant, err := s.grants.Resolve(ctx, companyID, email.OrganizerEmail)
	if err == nil && grant != nil {
		bearer, tokenErr := s.grants.EnsureValidToken(ctx, grant)
		if tokenErr == nil {
			return s.client.Send(ctx, bearer, grant.ID.String(), subject, htmlBody, to)
		}
		logger.Warn("MailerService:deliver:TokenRefreshFailed",
			"organizer", email.OrganizerEmail, "error", tokenErr)
	}

	apiKey, err := s.company.GetSecret(ctx, companyID, SecretEmailAPIKey)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no email grant for %s and no %s secret configured",
			email.OrganizerEmail, SecretEmailAPIKey)
	}

	return s.client.SendTransactional(ctx, apiKey, email.OrganizerName, email.OrganizerEmail, subject, htmlBody, to)
}

// uploadICS is best-effort; invites still go out without the attachment
func (s *MailerService) uploadICS(ctx context.Context, kind dto.EmailKind, email *dto.MeetingEmail) string {
	if s.store == nil || kind == dto.EmailKindCancel {
		return ""
	}

	data, err := BuildICS(email)
	if err != nil {
		logger.Warn("MailerService:uploadICS:Build", "meeting_id", email.MeetingID, "error", err)
		return ""
	}

	key := fmt.Sprintf("invites/%s.ics", email.MeetingID)
	link, err := s.store.PutPublic(ctx, key, "text/calendar", data)
	if err != nil {
		logger.Warn("MailerService:uploadICS:Upload", "meeting_id", email.MeetingID, "error", err)
		return ""
	}

	return link
}
