package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"meetsync/core/config"
	"meetsync/core/constants"
	"meetsync/modules/contacts/dto"
)

// providerClient wraps the provider's contacts API. Raw JSON is normalized
// here at the boundary.
type providerClient struct {
	baseURL string
	http    *http.Client
}

func newProviderClient() *providerClient {
	cfg := config.Get()
	return &providerClient{
		baseURL: cfg.Provider.BaseURL,
		http:    &http.Client{Timeout: constants.DefaultTimeout},
	}
}

type (
	rawContactEmail struct {
		Email string `json:"email"`
		Type  string `json:"type,omitempty"`
	}

	rawContactPhone struct {
		Number string `json:"number"`
		Type   string `json:"type,omitempty"`
	}

	rawContact struct {
		ID          string            `json:"id"`
		GivenName   *string           `json:"given_name"`
		Surname     *string           `json:"surname"`
		CompanyName *string           `json:"company_name"`
		Emails      []rawContactEmail `json:"emails"`
		PhoneNumbers []rawContactPhone `json:"phone_numbers"`
	}

	rawContactList struct {
		Data []rawContact `json:"data"`
	}
)

func normalizeContact(raw rawContact) dto.Contact {
	contact := dto.Contact{
		ID:        raw.ID,
		FetchedAt: time.Now(),
	}

	name := ""
	if raw.GivenName != nil {
		name = *raw.GivenName
	}
	if raw.Surname != nil {
		if name != "" {
			name += " "
		}
		name += *raw.Surname
	}
	contact.Name = name

	if raw.CompanyName != nil {
		contact.Company = *raw.CompanyName
	}
	if len(raw.Emails) > 0 {
		contact.Email = raw.Emails[0].Email
	}
	if len(raw.PhoneNumbers) > 0 {
		contact.Phone = raw.PhoneNumbers[0].Number
	}

	return contact
}

// SearchByEmail returns the first contact matching the email, or nil
func (c *providerClient) SearchByEmail(ctx context.Context, bearer, grantID, email string) (*dto.Contact, error) {
	apiURL := fmt.Sprintf("%s/grants/%s/contacts?email=%s&limit=1",
		c.baseURL, grantID, url.QueryEscape(email))

	contacts, err := c.list(ctx, bearer, apiURL)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, nil
	}

	return &contacts[0], nil
}

// List returns the grant's directory page
func (c *providerClient) List(ctx context.Context, bearer, grantID string, limit int) ([]dto.Contact, error) {
	apiURL := fmt.Sprintf("%s/grants/%s/contacts?limit=%d", c.baseURL, grantID, limit)
	return c.list(ctx, bearer, apiURL)
}

func (c *providerClient) list(ctx context.Context, bearer, apiURL string) ([]dto.Contact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider contacts API error (%d): %s", resp.StatusCode, string(body))
	}

	var list rawContactList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}

	contacts := make([]dto.Contact, 0, len(list.Data))
	for _, raw := range list.Data {
		contact := normalizeContact(raw)
		if contact.Email == "" {
			continue
		}
		contacts = append(contacts, contact)
	}

	return contacts, nil
}
