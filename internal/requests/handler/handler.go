// Package handler exposes the request operations over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"requesthub_backend/internal/requests/archival"
	"requesthub_backend/internal/requests/assignment"
	"requesthub_backend/internal/requests/merging"
	"requesthub_backend/internal/requests/orchestration"
	"requesthub_backend/internal/requests/pricing"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/internal/requests/scheduling"
	"requesthub_backend/internal/requests/status"
	"requesthub_backend/internal/requests/transport"
	"requesthub_backend/platform/httpkit"
	"requesthub_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	orchestrator *orchestration.Orchestrator
	val          *validator.Validator
}

func New(orchestrator *orchestration.Orchestrator, val *validator.Validator) *Handler {
	return &Handler{orchestrator: orchestrator, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Process)
	rg.POST("/archive", h.Archive)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/score", h.Score)
	rg.POST("/:id/assign", h.Assign)
	rg.POST("/:id/quote", h.Quote)
	rg.POST("/:id/follow-up", h.ScheduleFollowUp)
	rg.POST("/:id/validate-transition", h.ValidateTransition)
	rg.POST("/:id/merge", h.Merge)
}

func (h *Handler) Process(c *gin.Context) {
	var req transport.ProcessNewRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.orchestrator.ProcessNewRequest(c.Request.Context(), req.Request, req.Options)
	if httpkit.HandleError(c, err) {
		return
	}
	if len(result.Warnings) > 0 {
		c.JSON(http.StatusCreated, httpkit.Envelope{
			Success: true,
			Data:    result,
			Meta:    &httpkit.Meta{Warnings: result.Warnings},
		})
		return
	}
	httpkit.Created(c, result)
}

func (h *Handler) List(c *gin.Context) {
	params := repository.FindParams{Limit: 50}
	if statuses, ok := c.GetQueryArray("status"); ok {
		params.Statuses = statuses
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 && n <= 200 {
			params.Limit = n
		}
	}
	if offset := c.Query("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil && n >= 0 {
			params.Offset = n
		}
	}
	params.ExcludeArchived = c.Query("includeArchived") != "true"

	items, err := h.orchestrator.ListRequests(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	detail, err := h.orchestrator.GetRequest(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, detail)
}

func (h *Handler) Score(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	result, err := h.orchestrator.CalculateLeadScore(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Assign(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req transport.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.orchestrator.AssignToAgent(c.Request.Context(), id, assignment.Options{
		AssigneeID: req.AssigneeID,
		Strategy:   req.Strategy,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Quote(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req transport.GenerateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.orchestrator.GenerateQuoteFromRequest(c.Request.Context(), id, pricing.Input{
		BasePrice:        req.BasePrice,
		ComplexityFactor: req.ComplexityFactor,
		MaterialsFactor:  req.MaterialsFactor,
		TimelineFactor:   req.TimelineFactor,
		LocationFactor:   req.LocationFactor,
		ValidityDays:     req.ValidityDays,
		Notes:            req.Notes,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

func (h *Handler) ScheduleFollowUp(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req transport.ScheduleFollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	schedule, err := h.orchestrator.ScheduleFollowUp(c.Request.Context(), id, scheduling.Input{
		Type:            req.Type,
		ScheduledDate:   req.ScheduledDate,
		ReminderOffsets: req.ReminderOffsets,
		AutoReschedule:  req.AutoReschedule,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, schedule)
}

func (h *Handler) ValidateTransition(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req transport.ValidateTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.orchestrator.ValidateStatusTransition(c.Request.Context(), id, req.NewStatus, status.Context{
		AssigneeID: req.AssigneeID,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OKWithWarnings(c, result, result.Warnings)
}

func (h *Handler) Merge(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req transport.MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.orchestrator.MergeRequests(c.Request.Context(), id, req.DuplicateIDs, merging.Options{
		Policy: req.Policy,
		Notify: req.Notify,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Archive(c *gin.Context) {
	var req transport.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.orchestrator.ArchiveOldRequests(c.Request.Context(), archival.Options{
		OlderThanDays:       req.OlderThanDays,
		Statuses:            req.Statuses,
		ExcludeActiveQuotes: req.ExcludeActiveQuotes,
		BatchSize:           req.BatchSize,
		DryRun:              req.DryRun,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}
