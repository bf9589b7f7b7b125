package zoho

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchContacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Contacts/search", r.URL.Path)
		assert.Equal(t, "Zoho-oauthtoken tok", r.Header.Get("Authorization"))
		if r.URL.Query().Get("email") == "none@example.com" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"42","Email":"lead@example.com","Last_Name":"lead"}]}`))
	}))
	defer srv.Close()

	c := NewCRMClient(srv.URL, "tok")

	found, err := c.SearchContacts(context.Background(), "lead@example.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "42", found[0].ID)

	found, err = c.SearchContacts(context.Background(), "none@example.com")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCreateContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var payload struct {
			Data []Contact `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Data, 1)
		assert.Equal(t, "magnet-wizard:GM-02", payload.Data[0].Source)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":[{"code":"SUCCESS","status":"success","details":{"id":"777"}}]}`))
	}))
	defer srv.Close()

	id, err := NewCRMClient(srv.URL, "tok").CreateContact(context.Background(), &Contact{
		Email:    "lead@example.com",
		LastName: "lead",
		Source:   "magnet-wizard:GM-02",
	})
	require.NoError(t, err)
	assert.Equal(t, "777", id)
}

func TestCreateContact_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"INVALID_TOKEN"}`))
	}))
	defer srv.Close()

	_, err := NewCRMClient(srv.URL, "bad").CreateContact(context.Background(), &Contact{Email: "x@y.io"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
