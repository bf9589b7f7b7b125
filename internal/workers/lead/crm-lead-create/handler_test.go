package crmleadcreate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/common/zoho"
)

// ==========================
// Mock CRM Implementation
// ==========================

type MockCRM struct {
	mock.Mock
}

func (m *MockCRM) SearchContacts(ctx context.Context, email string) ([]zoho.Contact, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]zoho.Contact), args.Error(1)
}

func (m *MockCRM) CreateContact(ctx context.Context, contact *zoho.Contact) (string, error) {
	args := m.Called(ctx, contact)
	return args.String(0), args.Error(1)
}

func (m *MockCRM) UpdateContact(ctx context.Context, contactID string, contact *zoho.Contact) error {
	args := m.Called(ctx, contactID, contact)
	return args.Error(0)
}

// ==========================
// Test Helpers
// ==========================

func createValidInput() *Input {
	return &Input{
		LeadID:       "lead-1",
		Email:        "Jane.Doe@Example.com",
		Phone:        "(123) 456-7890",
		Trigger:      "budget cuts",
		Desire:       "save 20%",
		TemplateCode: "GM-02",
		TemplateName: "Resource-Cost Optimizer",
	}
}

func createTestHandler(t *testing.T, crm CRM) *Handler {
	return NewHandler(LoadConfig(), crm, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_CreatesContact(t *testing.T) {
	crm := new(MockCRM)
	crm.On("SearchContacts", mock.Anything, "jane.doe@example.com").Return(nil, nil)
	crm.On("CreateContact", mock.Anything, mock.MatchedBy(func(c *zoho.Contact) bool {
		return c.Email == "jane.doe@example.com" &&
			c.LastName == "jane.doe" &&
			c.Source == "magnet-wizard:GM-02" &&
			c.Phone == "(123) 456-7890"
	})).Return("zc-1", nil)

	output, err := createTestHandler(t, crm).Execute(context.Background(), createValidInput())
	require.NoError(t, err)
	assert.Equal(t, "zc-1", output.ContactID)
	assert.True(t, output.Created)
	assert.Equal(t, "zoho", output.CRMProvider)
	crm.AssertExpectations(t)
}

func TestHandler_Execute_UpdatesExistingContact(t *testing.T) {
	crm := new(MockCRM)
	crm.On("SearchContacts", mock.Anything, "jane.doe@example.com").
		Return([]zoho.Contact{{ID: "zc-9", Email: "jane.doe@example.com"}}, nil)
	crm.On("UpdateContact", mock.Anything, "zc-9", mock.MatchedBy(func(c *zoho.Contact) bool {
		return c.Source == "magnet-wizard:GM-02" && c.Description != ""
	})).Return(nil)

	output, err := createTestHandler(t, crm).Execute(context.Background(), createValidInput())
	require.NoError(t, err)
	assert.Equal(t, "zc-9", output.ContactID)
	assert.False(t, output.Created)
	crm.AssertNotCalled(t, "CreateContact", mock.Anything, mock.Anything)
}

func TestHandler_Execute_SearchFailureFallsBackToCreate(t *testing.T) {
	crm := new(MockCRM)
	crm.On("SearchContacts", mock.Anything, mock.Anything).Return(nil, errors.New("503"))
	crm.On("CreateContact", mock.Anything, mock.Anything).Return("zc-2", nil)

	output, err := createTestHandler(t, crm).Execute(context.Background(), createValidInput())
	require.NoError(t, err)
	assert.Equal(t, "zc-2", output.ContactID)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	t.Run("invalid email", func(t *testing.T) {
		crm := new(MockCRM)
		input := createValidInput()
		input.Email = "not-an-email"

		_, err := createTestHandler(t, crm).Execute(context.Background(), input)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeLeadValidationFailed))
		crm.AssertNotCalled(t, "SearchContacts", mock.Anything, mock.Anything)
	})

	t.Run("create fails", func(t *testing.T) {
		crm := new(MockCRM)
		crm.On("SearchContacts", mock.Anything, mock.Anything).Return(nil, nil)
		crm.On("CreateContact", mock.Anything, mock.Anything).Return("", errors.New("rate limited"))

		_, err := createTestHandler(t, crm).Execute(context.Background(), createValidInput())
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCRMAPIError))

		stdErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.True(t, stdErr.Retryable)
	})

	t.Run("update fails", func(t *testing.T) {
		crm := new(MockCRM)
		crm.On("SearchContacts", mock.Anything, mock.Anything).Return([]zoho.Contact{{ID: "zc-9"}}, nil)
		crm.On("UpdateContact", mock.Anything, "zc-9", mock.Anything).Return(errors.New("boom"))

		_, err := createTestHandler(t, crm).Execute(context.Background(), createValidInput())
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCRMAPIError))
	})
}

// ==========================
// Zoho Integration Tests
// ==========================

func TestHandler_Execute_AgainstZohoAPI(t *testing.T) {
	var created zoho.Contact
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/Contacts/search":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost && r.URL.Path == "/Contacts":
			var payload struct {
				Data []zoho.Contact `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			created = payload.Data[0]
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":[{"code":"SUCCESS","status":"success","details":{"id":"5001"}}]}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	handler := createTestHandler(t, zoho.NewCRMClient(srv.URL, "tok"))

	output, err := handler.Execute(context.Background(), createValidInput())
	require.NoError(t, err)
	assert.Equal(t, "5001", output.ContactID)
	assert.Equal(t, "magnet-wizard:GM-02", created.Source)
	assert.Contains(t, created.Description, "Requested demo: Resource-Cost Optimizer (GM-02)")
}
