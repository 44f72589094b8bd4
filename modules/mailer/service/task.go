package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"meetsync/core/logger"
	"meetsync/modules/mailer/dto"
)

// DeliverTaskHandler processes queued email deliveries. Returning a non-nil
// error makes asynq retry with backoff.
type DeliverTaskHandler struct {
	mailer MailerServiceInterface
}

func NewDeliverTaskHandler(mailer MailerServiceInterface) *DeliverTaskHandler {
	return &DeliverTaskHandler{mailer: mailer}
}

func (h *DeliverTaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload dto.DeliverTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("DeliverTaskHandler:ProcessTask:Unmarshal", "error", err)
		// Malformed payloads never become valid; skip retries.
		return fmt.Errorf("unmarshal deliver payload: %w: %v", asynq.SkipRetry, err)
	}

	companyID, err := uuid.Parse(payload.CompanyID)
	if err != nil {
		logger.Error("DeliverTaskHandler:ProcessTask:CompanyID", "company_id", payload.CompanyID, "error", err)
		return fmt.Errorf("parse company id: %w: %v", asynq.SkipRetry, err)
	}

	if _, appErr := h.mailer.SendMeetingEmail(ctx, companyID, payload.Kind, &payload.Email); appErr != nil {
		return appErr
	}

	logger.Info("DeliverTaskHandler:ProcessTask:Delivered",
		"meeting_id", payload.Email.MeetingID, "kind", payload.Kind)
	return nil
}
