package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"meetsync/core/config"
	"meetsync/core/constants"
	"meetsync/modules/mailer/dto"
)

const fallbackSendURL = "https://api.sendgrid.com/v3/mail/send"

// providerClient wraps the provider's message-send API plus the
// company-level transactional fallback used when the organizer has no
// email-capable grant.
type providerClient struct {
	baseURL string
	http    *http.Client
}

func newProviderClient() *providerClient {
	cfg := config.Get()
	return &providerClient{
		baseURL: cfg.Provider.BaseURL,
		http:    &http.Client{Timeout: constants.EmailSendTimeout},
	}
}

type rawSendResponse struct {
	Data struct {
		ID       string  `json:"id"`
		ThreadID *string `json:"thread_id"`
	} `json:"data"`
}

// Send delivers one message through the organizer's grant
func (c *providerClient) Send(ctx context.Context, bearer, grantID, subject, htmlBody string, to []dto.Recipient) (*dto.SentEmail, error) {
	recipients := make([]map[string]string, 0, len(to))
	for _, r := range to {
		recipients = append(recipients, map[string]string{"name": r.Name, "email": r.Email})
	}

	payload := map[string]any{
		"subject": subject,
		"body":    htmlBody,
		"to":      recipients,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/grants/%s/messages/send", c.baseURL, grantID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider send API error (%d): %s", resp.StatusCode, string(body))
	}

	var raw rawSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	sent := &dto.SentEmail{
		MessageID: raw.Data.ID,
		SentAt:    time.Now(),
	}
	if raw.Data.ThreadID != nil {
		sent.ThreadID = *raw.Data.ThreadID
	}

	return sent, nil
}

// SendTransactional delivers through the company's transactional email key
// when no grant is available. No thread reference comes back on this path.
func (c *providerClient) SendTransactional(ctx context.Context, apiKey, fromName, fromEmail, subject, htmlBody string, to []dto.Recipient) (*dto.SentEmail, error) {
	recipients := make([]map[string]string, 0, len(to))
	for _, r := range to {
		recipients = append(recipients, map[string]string{"email": r.Email, "name": r.Name})
	}

	payload := map[string]any{
		"personalizations": []map[string]any{{"to": recipients}},
		"from":             map[string]string{"email": fromEmail, "name": fromName},
		"subject":          subject,
		"content": []map[string]string{
			{"type": "text/html", "value": htmlBody},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fallbackSendURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transactional send API error (%d): %s", resp.StatusCode, string(body))
	}

	return &dto.SentEmail{
		MessageID: resp.Header.Get("X-Message-Id"),
		SentAt:    time.Now(),
	}, nil
}
