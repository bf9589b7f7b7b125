// Package zoho is a minimal Zoho CRM v3 client for lead contacts.
package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	commonhttp "magnet-wizard/internal/common/http"
)

const DefaultBaseURL = "https://www.zohoapis.com/crm/v3"

type CRMClient struct {
	oauthToken string
	baseURL    string
	httpClient *commonhttp.Client
}

// Contact is the subset of Zoho contact fields written for a lead.
type Contact struct {
	ID          string `json:"id,omitempty"`
	Email       string `json:"Email"`
	LastName    string `json:"Last_Name"`
	Phone       string `json:"Phone,omitempty"`
	Source      string `json:"Lead_Source,omitempty"`
	Description string `json:"Description,omitempty"`
}

type CreateContactResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

// NewCRMClient creates a client. An empty baseURL uses DefaultBaseURL.
func NewCRMClient(baseURL, oauthToken string) *CRMClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CRMClient{
		oauthToken: oauthToken,
		baseURL:    baseURL,
		httpClient: commonhttp.NewClient(30 * time.Second),
	}
}

func (c *CRMClient) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+c.oauthToken)
	return req, nil
}

// CreateContact creates a contact and returns its id.
func (c *CRMClient) CreateContact(ctx context.Context, contact *Contact) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/Contacts", map[string]interface{}{
		"data": []Contact{*contact},
	})
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	body, err := commonhttp.ReadBody(resp, http.StatusCreated, http.StatusOK)
	if err != nil {
		return "", fmt.Errorf("failed to create contact: %w", err)
	}

	var createResp CreateContactResponse
	if err := json.Unmarshal(body, &createResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(createResp.Data) == 0 {
		return "", errors.New("no data in response")
	}
	if createResp.Data[0].Status != "success" {
		return "", fmt.Errorf("contact creation failed: %s", createResp.Data[0].Message)
	}

	return createResp.Data[0].Details.ID, nil
}

// SearchContacts finds contacts by email. Zoho answers 204 when nothing
// matches.
func (c *CRMClient) SearchContacts(ctx context.Context, email string) ([]Contact, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/Contacts/search?email="+url.QueryEscape(email), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	body, err := commonhttp.ReadBody(resp, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var result struct {
		Data []Contact `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Data, nil
}

// UpdateContact overwrites the given fields of an existing contact.
func (c *CRMClient) UpdateContact(ctx context.Context, contactID string, contact *Contact) error {
	req, err := c.newRequest(ctx, http.MethodPut, "/Contacts/"+url.PathEscape(contactID), map[string]interface{}{
		"data": []Contact{*contact},
	})
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	if _, err := commonhttp.ReadBody(resp, http.StatusOK); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}
