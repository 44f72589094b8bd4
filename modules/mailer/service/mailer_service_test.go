package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	coreEntity "meetsync/core/entity"
	"meetsync/core/errors"
	companyDto "meetsync/modules/company/dto"
	grantDto "meetsync/modules/grant/dto"
	grantEntity "meetsync/modules/grant/entity"
	"meetsync/modules/mailer/dto"
)

type fakeSender struct {
	failFor   map[string]bool
	sendCalls int
}

func (f *fakeSender) Send(_ context.Context, _, _, _, _ string, to []dto.Recipient) (*dto.SentEmail, error) {
	f.sendCalls++
	for _, r := range to {
		if f.failFor[r.Email] {
			return nil, fmt.Errorf("provider rejected %s", r.Email)
		}
	}
	return &dto.SentEmail{MessageID: "msg-1", ThreadID: "thr-1"}, nil
}

func (f *fakeSender) SendTransactional(_ context.Context, _, _, _, _, _ string, to []dto.Recipient) (*dto.SentEmail, error) {
	f.sendCalls++
	for _, r := range to {
		if f.failFor[r.Email] {
			return nil, fmt.Errorf("provider rejected %s", r.Email)
		}
	}
	return &dto.SentEmail{MessageID: "msg-t", ThreadID: ""}, nil
}

type fakeMailerGrants struct {
	grant *grantEntity.Grant
}

func (f *fakeMailerGrants) Resolve(_ context.Context, _ uuid.UUID, _ string) (*grantEntity.Grant, error) {
	return f.grant, nil
}

func (f *fakeMailerGrants) MustResolve(_ context.Context, _ uuid.UUID, _ string) (*grantEntity.Grant, *errors.AppError) {
	if f.grant == nil {
		return nil, errors.NewAppError(errors.ErrNotConnected, "not connected", nil)
	}
	return f.grant, nil
}

func (f *fakeMailerGrants) SaveGrant(_ context.Context, _, _ uuid.UUID, _ *grantDto.ConnectCallbackRequest) (*grantDto.GrantResponse, *errors.AppError) {
	return nil, nil
}

func (f *fakeMailerGrants) ListGrants(_ context.Context, _ uuid.UUID) ([]grantDto.GrantResponse, *errors.AppError) {
	return nil, nil
}

func (f *fakeMailerGrants) ListActiveGrants(_ context.Context, _ uuid.UUID) ([]grantEntity.Grant, error) {
	return nil, nil
}

func (f *fakeMailerGrants) Disconnect(_ context.Context, _, _ uuid.UUID) *errors.AppError {
	return nil
}

func (f *fakeMailerGrants) EnsureValidToken(_ context.Context, _ *grantEntity.Grant) (string, error) {
	return "bearer-token", nil
}

type fakeMailerCompany struct {
	secret string
}

func (f *fakeMailerCompany) CreateCompany(_ context.Context, _ *companyDto.CreateCompanyRequest) (*companyDto.CompanyResponse, *errors.AppError) {
	return nil, nil
}

func (f *fakeMailerCompany) IssueAPIKey(_ context.Context, _ uuid.UUID) (*companyDto.IssuedAPIKeyResponse, *errors.AppError) {
	return nil, nil
}

func (f *fakeMailerCompany) VerifyAPIKey(_ context.Context, _ string) (*uuid.UUID, error) {
	return nil, nil
}

func (f *fakeMailerCompany) GetSecret(_ context.Context, _ uuid.UUID, _ string) (string, error) {
	return f.secret, nil
}

func (f *fakeMailerCompany) SetSecret(_ context.Context, _ uuid.UUID, _ *companyDto.SetSecretRequest) *errors.AppError {
	return nil
}

func newTestMailer(sender *fakeSender, grant *grantEntity.Grant, secret string) *MailerService {
	return &MailerService{
		grants:  &fakeMailerGrants{grant: grant},
		company: &fakeMailerCompany{secret: secret},
		client:  sender,
	}
}

func TestSendBulkInvitesPartialFailure(t *testing.T) {
	sender := &fakeSender{failFor: map[string]bool{"bad@acme.com": true}}
	svc := newTestMailer(sender, &grantEntity.Grant{BaseEntity: coreEntity.BaseEntity{ID: uuid.New()}}, "")

	email := sampleEmail(dto.LocationVideo)
	email.Recipients = []dto.Recipient{
		{Email: "bob@acme.com"},
		{Email: "bad@acme.com"},
		{Email: "carol@acme.com"},
	}

	result, appErr := svc.SendBulkInvites(context.Background(), uuid.New(), email)
	if appErr != nil {
		t.Fatalf("SendBulkInvites: %v", appErr)
	}
	if result.Sent != 2 {
		t.Errorf("Sent = %d, want 2", result.Sent)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "bad@acme.com") {
		t.Errorf("Errors = %v, want one entry naming bad@acme.com", result.Errors)
	}
	if sender.sendCalls != 3 {
		t.Errorf("sendCalls = %d, want one per recipient", sender.sendCalls)
	}
}

func TestSendMeetingEmailFallsBackToTransactional(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestMailer(sender, nil, "sg-key")

	sent, appErr := svc.SendMeetingEmail(context.Background(), uuid.New(), dto.EmailKindInvite, sampleEmail(dto.LocationVideo))
	if appErr != nil {
		t.Fatalf("SendMeetingEmail: %v", appErr)
	}
	if sent.MessageID != "msg-t" {
		t.Errorf("MessageID = %q, want the transactional path", sent.MessageID)
	}
}

func TestSendMeetingEmailNoGrantNoSecret(t *testing.T) {
	svc := newTestMailer(&fakeSender{}, nil, "")

	_, appErr := svc.SendMeetingEmail(context.Background(), uuid.New(), dto.EmailKindInvite, sampleEmail(dto.LocationVideo))
	if appErr == nil {
		t.Fatal("expected an error with no grant and no configured secret")
	}
	if appErr.Code != errors.ErrProvider {
		t.Errorf("Code = %v, want %v", appErr.Code, errors.ErrProvider)
	}
}
