package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	coreEntity "meetsync/core/entity"
	"meetsync/core/logger"
	"meetsync/core/params"
	"meetsync/modules/notification/dto"
	"meetsync/modules/notification/entity"
	"meetsync/modules/notification/repository"
)

type NotificationServiceInterface interface {
	// Notify is best-effort: failures are logged, never propagated, so a
	// lost notification cannot fail the operation that emitted it.
	Notify(ctx context.Context, companyID uuid.UUID, req *dto.NotifyRequest)

	ListForRecipient(ctx context.Context, companyID uuid.UUID, email string, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, error)
	MarkAsRead(ctx context.Context, companyID uuid.UUID, email string, ids []string) error
	MarkAllAsRead(ctx context.Context, companyID uuid.UUID, email string) error
	CountUnread(ctx context.Context, companyID uuid.UUID, email string) (int, error)
}

type NotificationService struct {
	repo repository.NotificationRepositoryInterface
}

func NewNotificationService(repo repository.NotificationRepositoryInterface) NotificationServiceInterface {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Notify(ctx context.Context, companyID uuid.UUID, req *dto.NotifyRequest) {
	notif := &entity.Notification{
		CompanyID:      companyID,
		RecipientEmail: req.RecipientEmail,
		Title:          req.Title,
		Message:        req.Message,
		Type:           req.Type,
		Data:           entity.JSONB(req.Data),
		IsRead:         false,
		BaseEntity: coreEntity.BaseEntity{
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		logger.Warn("NotificationService:Notify:Dropped",
			"recipient", req.RecipientEmail, "type", req.Type, "error", err)
	}
}

func (s *NotificationService) ListForRecipient(ctx context.Context, companyID uuid.UUID, email string, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	return s.repo.ListByRecipient(ctx, companyID, email, queryParams)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, companyID uuid.UUID, email string, ids []string) error {
	return s.repo.MarkAsRead(ctx, companyID, email, ids)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, companyID uuid.UUID, email string) error {
	return s.repo.MarkAllAsRead(ctx, companyID, email)
}

func (s *NotificationService) CountUnread(ctx context.Context, companyID uuid.UUID, email string) (int, error) {
	return s.repo.CountUnread(ctx, companyID, email)
}
