package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"magnet-wizard/internal/common/errors"
	"magnet-wizard/internal/common/logger"
	"magnet-wizard/internal/magnet"
	"magnet-wizard/internal/services"
	"magnet-wizard/internal/wizard"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers contains all HTTP handlers for the wizard API.
type Handlers struct {
	wizard *services.WizardService
	deps   map[string]Pinger
	logger logger.Logger
}

func NewHandlers(svc *services.WizardService, deps map[string]Pinger, log logger.Logger) *Handlers {
	return &Handlers{
		wizard: svc,
		deps:   deps,
		logger: log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready pings every dependency and reports the failing ones.
func (h *Handlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// ListMagnets returns the template catalog.
func (h *Handlers) ListMagnets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": magnet.Catalog()})
}

// SelectMagnet runs the template selector on ad-hoc answers.
func (h *Handlers) SelectMagnet(c *gin.Context) {
	var in magnet.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, errors.NewInvalidRequestError(err))
		return
	}
	id := magnet.Select(in)
	c.JSON(http.StatusOK, gin.H{
		"templateId":   id,
		"templateCode": id.Code(),
		"templateName": id.Name(),
		"keyword":      magnet.MatchedKeyword(in),
	})
}

func (h *Handlers) CreateSession(c *gin.Context) {
	v, err := h.wizard.Create(c.Request.Context())
	h.respond(c, http.StatusCreated, v, err)
}

func (h *Handlers) GetSession(c *gin.Context) {
	v, err := h.wizard.Get(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, v, err)
}

func (h *Handlers) UpdateAnswers(c *gin.Context) {
	var patch wizard.AnswerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.respondError(c, errors.NewInvalidRequestError(err))
		return
	}
	v, err := h.wizard.UpdateAnswers(c.Request.Context(), c.Param("id"), patch)
	h.respond(c, http.StatusOK, v, err)
}

func (h *Handlers) Next(c *gin.Context) {
	v, err := h.wizard.Next(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, v, err)
}

func (h *Handlers) Back(c *gin.Context) {
	v, err := h.wizard.Back(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, v, err)
}

func (h *Handlers) UpdatePreview(c *gin.Context) {
	var params magnet.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		h.respondError(c, errors.NewInvalidRequestError(err))
		return
	}
	v, err := h.wizard.UpdatePreview(c.Request.Context(), c.Param("id"), params)
	h.respond(c, http.StatusOK, v, err)
}

// AnalyzePreview accepts an optional parameter body.
func (h *Handlers) AnalyzePreview(c *gin.Context) {
	params, err := optionalParams(c)
	if err != nil {
		h.respondError(c, errors.NewInvalidRequestError(err))
		return
	}
	v, err := h.wizard.Analyze(c.Request.Context(), c.Param("id"), params)
	h.respond(c, http.StatusOK, v, err)
}

func (h *Handlers) Submit(c *gin.Context) {
	ack, err := h.wizard.Submit(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, ack, err)
}

func (h *Handlers) Reset(c *gin.Context) {
	v, err := h.wizard.Reset(c.Request.Context(), c.Param("id"))
	h.respond(c, http.StatusOK, v, err)
}

func optionalParams(c *gin.Context) (*magnet.Params, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil, nil
	}
	var params magnet.Params
	if err := json.Unmarshal(body, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

func (h *Handlers) respond(c *gin.Context, status int, body interface{}, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, body)
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	stdErr, ok := errors.As(err)
	if !ok {
		stdErr = errors.NewInternalError(err)
	}
	status := errors.HTTPStatus(stdErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request error", map[string]interface{}{
			"path":  c.FullPath(),
			"code":  string(stdErr.Code),
			"error": err,
		})
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": stdErr})
}
