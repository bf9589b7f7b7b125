package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/magnet"
	"magnet-wizard/internal/services"
	"magnet-wizard/internal/session"
	"magnet-wizard/internal/wizard"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func createTestRouter(t *testing.T, deps map[string]Pinger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.NewTestLogger(t)
	store := session.NewRedisStore(client, "wizard:session:", time.Hour, log)
	svc := services.NewWizardService(store, services.NewLeadSubmissionService(nil, "lead-submission", log), nil, log)

	return NewRouter(NewHandlers(svc, deps, log), []string{"https://example.com"}, zaptest.NewLogger(t))
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) wizard.View {
	t.Helper()
	var v wizard.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type errorBody struct {
	Error struct {
		Code     string                 `json:"code"`
		Message  string                 `json:"message"`
		Metadata map[string]interface{} `json:"metadata"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var e errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

// ==========================
// Probes
// ==========================

func TestHealthAndReady(t *testing.T) {
	r := createTestRouter(t, map[string]Pinger{"redis": stubPinger{}})

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReady_DependencyDown(t *testing.T) {
	r := createTestRouter(t, map[string]Pinger{"redis": stubPinger{err: errors.New("dial tcp: refused")}})

	w := doJSON(t, r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "refused")
}

func TestCORS(t *testing.T) {
	r := createTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/wizard/sessions", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

// ==========================
// Magnets
// ==========================

func TestSelectMagnet(t *testing.T) {
	r := createTestRouter(t, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/magnets/select", map[string]string{
		"trigger": "We want to forecast demand",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "opportunity-forecaster", body["templateId"])
	assert.Equal(t, "GM-06", body["templateCode"])
	assert.Equal(t, "forecast", body["keyword"])

	w = doJSON(t, r, http.MethodGet, "/api/v1/magnets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var catalog struct {
		Templates []magnet.TemplateInfo `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catalog))
	require.Len(t, catalog.Templates, 12)
	assert.Equal(t, "Compliance & Risk Radar", catalog.Templates[2].Name)
	assert.Equal(t, magnet.ComplianceRadar, catalog.Templates[2].ID)
}

// ==========================
// Wizard flow
// ==========================

func TestWizardFlow(t *testing.T) {
	r := createTestRouter(t, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/wizard/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	v := decodeView(t, w)
	require.NotEmpty(t, v.SessionID)
	base := "/api/v1/wizard/sessions/" + v.SessionID

	w = doJSON(t, r, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	e := decodeError(t, w)
	assert.Equal(t, "WIZARD_VALIDATION_FAILED", e.Error.Code)
	assert.Contains(t, e.Error.Metadata, "fieldErrors")

	w = doJSON(t, r, http.MethodPatch, base+"/answers", map[string]string{
		"trigger": "Our budget keeps shrinking",
		"job":     "Plan resources",
		"pain":    "No visibility",
		"desire":  "Save money",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeView(t, w).CanAdvance)

	for i := 0; i < 4; i++ {
		w = doJSON(t, r, http.MethodPost, base+"/next", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	v = decodeView(t, w)
	assert.Equal(t, 5, v.Step)
	require.NotNil(t, v.Preview)
	assert.Equal(t, "cost-optimizer", string(v.Preview.TemplateID))
	assert.False(t, v.Preview.Analyzed)

	w = doJSON(t, r, http.MethodPost, base+"/preview/analyze", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	require.NotNil(t, v.Preview)
	assert.True(t, v.Preview.Analyzed)
	assert.NotEmpty(t, v.Preview.Insights)

	w = doJSON(t, r, http.MethodPut, base+"/preview", map[string]interface{}{
		"cost": map[string]interface{}{"resources": "Cloud: 100"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeView(t, w).Preview.Analyzed)

	w = doJSON(t, r, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodPatch, base+"/answers", map[string]interface{}{
		"email":       "buyer@example.com",
		"gdprConsent": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeView(t, w).CanSubmit)

	w = doJSON(t, r, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ack services.Acknowledgement
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.Equal(t, "Thank you for your submission!", ack.Title)
	assert.Equal(t, "GM-02", ack.Submission.TemplateCode)

	w = doJSON(t, r, http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.Equal(t, 1, v.Step)
	assert.Empty(t, v.Answers.Trigger)
}

func TestInvalidPreviewParams(t *testing.T) {
	r := createTestRouter(t, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/wizard/sessions", nil)
	base := "/api/v1/wizard/sessions/" + decodeView(t, w).SessionID

	doJSON(t, r, http.MethodPatch, base+"/answers", map[string]string{
		"trigger": "aa", "job": "bb", "pain": "cc", "desire": "dd",
	})
	for i := 0; i < 4; i++ {
		require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, base+"/next", nil).Code)
	}

	w = doJSON(t, r, http.MethodPut, base+"/preview", map[string]interface{}{
		"scenario": map[string]interface{}{"budget": 1000, "timeframe": 48},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PREVIEW_PARAMS", decodeError(t, w).Error.Code)
}

func TestUnknownSession(t *testing.T) {
	r := createTestRouter(t, nil)

	w := doJSON(t, r, http.MethodGet, "/api/v1/wizard/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", decodeError(t, w).Error.Code)
}

func TestMalformedBody(t *testing.T) {
	r := createTestRouter(t, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/wizard/sessions", nil)
	base := "/api/v1/wizard/sessions/" + decodeView(t, w).SessionID

	req := httptest.NewRequest(http.MethodPatch, base+"/answers", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rec).Error.Code)
}
