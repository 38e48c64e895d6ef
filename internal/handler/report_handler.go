package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-ops-api/internal/dto"
	"github.com/noah-isme/sma-ops-api/internal/models"
	"github.com/noah-isme/sma-ops-api/internal/service"
	appErrors "github.com/noah-isme/sma-ops-api/pkg/errors"
	"github.com/noah-isme/sma-ops-api/pkg/response"
)

// ReportHandler exposes REST endpoints for the duty report workflow.
type ReportHandler struct {
	service workflowService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service workflowService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Create godoc
// @Summary Submit a duty report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid report payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	item := &models.WorkItem{
		Type:        models.WorkItemReport,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    req.Category,
		CreatedBy:   claims.UserID,
	}
	created, err := h.service.Create(c.Request.Context(), item)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// List godoc
// @Summary List duty reports
// @Tags Reports
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.WorkItemFilter{
		Type:      models.WorkItemReport,
		CreatedBy: strings.TrimSpace(c.Query("created_by")),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		for _, part := range strings.Split(rawStatus, ",") {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part != "" {
				filter.Status = append(filter.Status, models.WorkItemStatus(part))
			}
		}
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Fetch a single duty report
// @Tags Reports
// @Produce json
// @Param id path string true "Report id"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	item, err := h.service.Get(c.Request.Context(), models.WorkItemReport, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Approve godoc
// @Summary Approve a submitted report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report id"
// @Param payload body dto.ReviewRequest false "Optional review note"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/approve [post]
func (h *ReportHandler) Approve(c *gin.Context) {
	h.review(c, models.ActionApprove)
}

// Reject godoc
// @Summary Reject a submitted report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report id"
// @Param payload body dto.ReviewRequest true "Review note (mandatory on reject)"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/reject [post]
func (h *ReportHandler) Reject(c *gin.Context) {
	h.review(c, models.ActionReject)
}

// Comment godoc
// @Summary Comment on a report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report id"
// @Param payload body dto.CommentRequest true "Comment payload"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/comment [post]
func (h *ReportHandler) Comment(c *gin.Context) {
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid comment payload"))
		return
	}
	h.transition(c, models.ActionComment, &service.TransitionPayload{Comment: req.Comment})
}

// Resubmit godoc
// @Summary Resubmit a rejected report as a new revision
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Rejected report id"
// @Param payload body dto.ResubmitRequest true "Revised report payload"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/resubmit [post]
func (h *ReportHandler) Resubmit(c *gin.Context) {
	var req dto.ResubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid resubmission payload"))
		return
	}
	h.transition(c, models.ActionResubmit, &service.TransitionPayload{Resubmission: &req})
}

// History godoc
// @Summary Fetch the revision chain of a report, newest first
// @Tags Reports
// @Produce json
// @Param id path string true "Report id"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/history [get]
func (h *ReportHandler) History(c *gin.Context) {
	if claimsFromContext(c) == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	chain, err := h.service.RevisionChain(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, chain, nil)
}

func (h *ReportHandler) review(c *gin.Context, action models.WorkflowAction) {
	var req dto.ReviewRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
			return
		}
	}
	h.transition(c, action, &service.TransitionPayload{ReviewNote: req.ReviewNote})
}

func (h *ReportHandler) transition(c *gin.Context, action models.WorkflowAction, payload *service.TransitionPayload) {
	actor := actorFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	item, err := h.service.Transition(c.Request.Context(), models.WorkItemReport, c.Param("id"), action, actor, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
