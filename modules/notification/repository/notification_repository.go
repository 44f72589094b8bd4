package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"meetsync/core/database"
	"meetsync/core/logger"
	"meetsync/core/params"
	"meetsync/modules/notification/entity"
)

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListByRecipient(ctx context.Context, companyID uuid.UUID, email string, params params.QueryParams) (*entity.PaginatedNotificationEntity, error)
	MarkAsRead(ctx context.Context, companyID uuid.UUID, email string, ids []string) error
	MarkAllAsRead(ctx context.Context, companyID uuid.UUID, email string) error
	CountUnread(ctx context.Context, companyID uuid.UUID, email string) (int, error)
}

type NotificationRepository struct {
	db database.IDatabase
}

func NewNotificationRepository(db database.IDatabase) NotificationRepositoryInterface {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (company_id, recipient_email, title, message, type, data, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		notification.CompanyID,
		notification.RecipientEmail,
		notification.Title,
		notification.Message,
		notification.Type,
		notification.Data,
		notification.IsRead,
		notification.CreatedAt,
		notification.UpdatedAt,
	).Scan(&notification.ID)
	if err != nil {
		logger.Error("NotificationRepository:Create:Error", "error", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, companyID uuid.UUID, email string, params params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	offset := (params.PageNumber - 1) * params.PageSize

	baseQuery := `FROM notifications WHERE company_id = $1 AND recipient_email = $2`

	var totalItems int
	err := r.db.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, companyID, email)
	if err != nil {
		logger.Error("NotificationRepository:ListByRecipient:Count:Error", "error", err)
		return nil, err
	}

	query := `
		SELECT * ` + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	var notifications []entity.Notification
	err = r.db.SelectContext(ctx, &notifications, query, companyID, email, params.PageSize, offset)
	if err != nil {
		logger.Error("NotificationRepository:ListByRecipient:Select:Error", "error", err)
		return nil, err
	}

	return &entity.PaginatedNotificationEntity{
		Items:      notifications,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, companyID uuid.UUID, email string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(
		`UPDATE notifications SET is_read = true WHERE company_id = ? AND recipient_email = ? AND id IN (?)`,
		companyID, email, ids)
	if err != nil {
		return err
	}

	query = r.db.SQLx().Rebind(query)
	if err = r.db.ExecContext(ctx, query, args...); err != nil {
		logger.Error("NotificationRepository:MarkAsRead:Error", "error", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, companyID uuid.UUID, email string) error {
	query := `UPDATE notifications SET is_read = true WHERE company_id = $1 AND recipient_email = $2`
	if err := r.db.ExecContext(ctx, query, companyID, email); err != nil {
		logger.Error("NotificationRepository:MarkAllAsRead:Error", "error", err)
		return err
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, companyID uuid.UUID, email string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE company_id = $1 AND recipient_email = $2 AND is_read = false`
	if err := r.db.GetContext(ctx, &count, query, companyID, email); err != nil {
		logger.Error("NotificationRepository:CountUnread:Error", "error", err)
		return 0, err
	}
	return count, nil
}
