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
	"meetsync/core/logger"
	"meetsync/modules/calendar/dto"
)

// providerClient wraps the calendar provider's REST API for one call site.
// Raw provider JSON is decoded here and normalized before it leaves this
// file; nothing else in the module depends on provider field presence.
type providerClient struct {
	baseURL string
	http    *http.Client
}

func newProviderClient() *providerClient {
	cfg := config.Get()
	return &providerClient{
		baseURL: cfg.Provider.BaseURL,
		http:    &http.Client{Timeout: constants.CalendarCallTimeout},
	}
}

// Raw provider payloads. Optional fields stay pointers so normalization can
// distinguish absent from zero.
type (
	rawWhen struct {
		StartTime int64  `json:"start_time"`
		EndTime   int64  `json:"end_time"`
		Timezone  string `json:"timezone,omitempty"`
	}

	rawConferencing struct {
		Provider string `json:"provider,omitempty"`
		Details  *struct {
			URL   string `json:"url,omitempty"`
			Phone string `json:"phone,omitempty"`
		} `json:"details,omitempty"`
		Autocreate map[string]any `json:"autocreate,omitempty"`
	}

	rawParticipant struct {
		Name  string `json:"name,omitempty"`
		Email string `json:"email"`
	}

	rawEvent struct {
		ID           string           `json:"id"`
		CalendarID   string           `json:"calendar_id"`
		ICalUID      *string          `json:"ical_uid"`
		Title        string           `json:"title"`
		Description  *string          `json:"description"`
		HTMLLink     *string          `json:"html_link"`
		When         rawWhen          `json:"when"`
		Location     *string          `json:"location"`
		Conferencing *rawConferencing `json:"conferencing"`
		Participants []rawParticipant `json:"participants"`
		Busy         *bool            `json:"busy"`
	}

	rawEventEnvelope struct {
		Data rawEvent `json:"data"`
	}

	rawEventList struct {
		Data []rawEvent `json:"data"`
	}
)

// normalizeEvent is the single point where provider JSON becomes the
// internal Event shape
func normalizeEvent(raw rawEvent) dto.Event {
	event := dto.Event{
		ID:         raw.ID,
		CalendarID: raw.CalendarID,
		Title:      raw.Title,
		StartTime:  raw.When.StartTime,
		EndTime:    raw.When.EndTime,
		Timezone:   raw.When.Timezone,
		Busy:       true,
		FetchedAt:  time.Now(),
	}

	if raw.ICalUID != nil {
		event.ICalUID = *raw.ICalUID
	}
	if raw.Description != nil {
		event.Description = *raw.Description
	}
	if raw.HTMLLink != nil {
		event.HTMLLink = *raw.HTMLLink
	}
	if raw.Location != nil {
		event.Location = *raw.Location
	}
	if raw.Busy != nil {
		event.Busy = *raw.Busy
	}
	if raw.Conferencing != nil && raw.Conferencing.Details != nil {
		event.JoinURL = raw.Conferencing.Details.URL
	}
	for _, p := range raw.Participants {
		event.Attendees = append(event.Attendees, p.Email)
	}

	return event
}

func (c *providerClient) do(ctx context.Context, method, url, bearer string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// providerError folds the provider's error message into ours when available
func providerError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error.Message != "" {
		return fmt.Errorf("provider API error (%d): %s", resp.StatusCode, payload.Error.Message)
	}
	return fmt.Errorf("provider API error (%d): %s", resp.StatusCode, string(body))
}

// CreateEvent creates a calendar event; video meetings request auto
// conferencing from the provider
func (c *providerClient) CreateEvent(ctx context.Context, bearer, grantID string, input *dto.CreateEventInput) (*dto.CreatedEvent, error) {
	payload := map[string]any{
		"title":       input.Title,
		"description": input.Description,
		"when": rawWhen{
			StartTime: input.StartTime.Unix(),
			EndTime:   input.EndTime.Unix(),
			Timezone:  input.Timezone,
		},
	}

	participants := make([]rawParticipant, 0, len(input.Participants))
	for _, p := range input.Participants {
		participants = append(participants, rawParticipant{Name: p.Name, Email: p.Email})
	}
	payload["participants"] = participants

	switch input.LocationType {
	case "video":
		payload["conferencing"] = rawConferencing{
			Provider:   "Google Meet",
			Autocreate: map[string]any{},
		}
	case "physical":
		payload["location"] = input.Address
	case "phone":
		payload["location"] = input.DialInNumber
	}

	url := fmt.Sprintf("%s/grants/%s/events?calendar_id=primary&notify_participants=false", c.baseURL, grantID)
	resp, err := c.do(ctx, http.MethodPost, url, bearer, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, providerError(resp)
	}

	var envelope rawEventEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	event := normalizeEvent(envelope.Data)
	return &dto.CreatedEvent{
		EventID:    event.ID,
		HTMLLink:   event.HTMLLink,
		CalendarID: event.CalendarID,
		ICalUID:    event.ICalUID,
		JoinURL:    event.JoinURL,
	}, nil
}

// UpdateEvent patches mutable event fields
func (c *providerClient) UpdateEvent(ctx context.Context, bearer, grantID, eventID string, input *dto.CreateEventInput) (*dto.Event, error) {
	payload := map[string]any{
		"title":       input.Title,
		"description": input.Description,
		"when": rawWhen{
			StartTime: input.StartTime.Unix(),
			EndTime:   input.EndTime.Unix(),
			Timezone:  input.Timezone,
		},
	}

	url := fmt.Sprintf("%s/grants/%s/events/%s?calendar_id=primary", c.baseURL, grantID, eventID)
	resp, err := c.do(ctx, http.MethodPut, url, bearer, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providerError(resp)
	}

	var envelope rawEventEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	event := normalizeEvent(envelope.Data)
	return &event, nil
}

// DeleteEvent removes the event from the provider calendar
func (c *providerClient) DeleteEvent(ctx context.Context, bearer, grantID, eventID string) error {
	url := fmt.Sprintf("%s/grants/%s/events/%s?calendar_id=primary", c.baseURL, grantID, eventID)
	resp, err := c.do(ctx, http.MethodDelete, url, bearer, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return providerError(resp)
	}

	return nil
}

// GetEvent fetches one event by id
func (c *providerClient) GetEvent(ctx context.Context, bearer, grantID, eventID string) (*dto.Event, error) {
	url := fmt.Sprintf("%s/grants/%s/events/%s?calendar_id=primary", c.baseURL, grantID, eventID)
	resp, err := c.do(ctx, http.MethodGet, url, bearer, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, providerError(resp)
	}

	var envelope rawEventEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	event := normalizeEvent(envelope.Data)
	return &event, nil
}

// ListEvents fetches the grant's events inside [start, end)
func (c *providerClient) ListEvents(ctx context.Context, bearer, grantID string, start, end int64) ([]dto.Event, error) {
	url := fmt.Sprintf("%s/grants/%s/events?calendar_id=primary&start=%d&end=%d&limit=200",
		c.baseURL, grantID, start, end)

	resp, err := c.do(ctx, http.MethodGet, url, bearer, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("ProviderClient:ListEvents:APIError", "status", resp.StatusCode, "grant_id", grantID)
		return nil, providerError(resp)
	}

	var list rawEventList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}

	events := make([]dto.Event, 0, len(list.Data))
	for _, raw := range list.Data {
		events = append(events, normalizeEvent(raw))
	}

	return events, nil
}
