package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jakechorley/branch-cover/pkg/core/coverage"
	"github.com/jakechorley/branch-cover/pkg/core/model"
	"github.com/jakechorley/branch-cover/pkg/core/services"
)

// AssignmentService is implemented by *services.AssignmentService
type AssignmentService interface {
	Create(ctx context.Context, req services.CreateRequest) (model.Assignment, error)
	Cancel(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.Assignment, error)
	List(ctx context.Context, branchID string, status model.Status) ([]model.Assignment, error)
	Dashboard(ctx context.Context, ref model.Date) (*model.Dashboard, error)
	Outlook(ctx context.Context, from model.Date, rule string) ([]coverage.OutlookEntry, error)
}

// Handler serves the assignment and coverage endpoints
type Handler struct {
	svc         AssignmentService
	outlookRule string
	logger      *zap.Logger
}

// NewHandler creates a Handler; outlookRule is used when a request names no rule
func NewHandler(svc AssignmentService, outlookRule string, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, outlookRule: outlookRule, logger: logger}
}

type createAssignmentRequest struct {
	StaffID            string `json:"staffId" binding:"required"`
	TempBranchID       string `json:"tempBranchId" binding:"required"`
	StartDate          string `json:"startDate" binding:"required"`
	EndDate            string `json:"endDate" binding:"required"`
	Reason             string `json:"reason" binding:"required"`
	CoveringForStaffID string `json:"coveringForStaffId"`
	Notes              string `json:"notes" binding:"max=2000"`
}

type listAssignmentsQuery struct {
	BranchID string `form:"branchId"`
	Status   string `form:"status" binding:"omitempty,oneof=active cancelled expired"`
}

type conflictData struct {
	StaffID     string             `json:"staffId"`
	Candidate   model.DateRange    `json:"candidate"`
	Conflicting []model.Assignment `json:"conflicting"`
}

// CreateAssignment creates a temporary assignment
// POST /api/v1/assignments
func (h *Handler) CreateAssignment(c *gin.Context) {
	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, CodeInvalidRequest, "invalid request body", err.Error())
		return
	}

	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		BadRequest(c, CodeValidation, "validation failed", "startDate: "+err.Error())
		return
	}
	end, err := model.ParseDate(req.EndDate)
	if err != nil {
		BadRequest(c, CodeValidation, "validation failed", "endDate: "+err.Error())
		return
	}

	a, err := h.svc.Create(c.Request.Context(), services.CreateRequest{
		StaffID:            req.StaffID,
		TempBranchID:       req.TempBranchID,
		StartDate:          start,
		EndDate:            end,
		Reason:             model.Reason(req.Reason),
		CoveringForStaffID: req.CoveringForStaffID,
		Notes:              req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	Created(c, a)
}

// ListAssignments lists assignments with their effective status
// GET /api/v1/assignments?branchId=&status=
func (h *Handler) ListAssignments(c *gin.Context) {
	var q listAssignmentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, CodeInvalidRequest, "invalid query", err.Error())
		return
	}

	list, err := h.svc.List(c.Request.Context(), q.BranchID, model.Status(q.Status))
	if err != nil {
		h.handleError(c, err)
		return
	}
	if list == nil {
		list = []model.Assignment{}
	}

	OK(c, gin.H{"list": list})
}

// GetAssignment returns one assignment
// GET /api/v1/assignments/:id
func (h *Handler) GetAssignment(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	OK(c, a)
}

// CancelAssignment cancels an active assignment and returns the updated record
// POST /api/v1/assignments/:id/cancel
func (h *Handler) CancelAssignment(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Cancel(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	OK(c, a)
}

// GetDashboard computes the coverage dashboard
// GET /api/v1/coverage/dashboard?date=YYYY-MM-DD
func (h *Handler) GetDashboard(c *gin.Context) {
	ref, ok := dateQuery(c, "date")
	if !ok {
		return
	}

	dash, err := h.svc.Dashboard(c.Request.Context(), ref)
	if err != nil {
		h.handleError(c, err)
		return
	}

	OK(c, dash)
}

// GetOutlook computes dashboard summaries for each occurrence of an RRULE
// GET /api/v1/coverage/outlook?from=YYYY-MM-DD&rule=FREQ=...
func (h *Handler) GetOutlook(c *gin.Context) {
	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}

	rule := strings.TrimSpace(c.Query("rule"))
	if rule == "" {
		rule = h.outlookRule
	}

	entries, err := h.svc.Outlook(c.Request.Context(), from, rule)
	if err != nil {
		h.handleError(c, err)
		return
	}

	OK(c, gin.H{"rule": rule, "list": entries})
}

// dateQuery parses an optional date query parameter; it writes a 400 and returns false when malformed
func dateQuery(c *gin.Context, key string) (model.Date, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return model.Date{}, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		BadRequest(c, CodeValidation, "validation failed", key+": "+err.Error())
		return model.Date{}, false
	}
	return d, true
}

// handleError maps domain errors onto HTTP statuses
func (h *Handler) handleError(c *gin.Context, err error) {
	var (
		vErr  *model.ValidationError
		cErr  *model.ConflictError
		nfErr *model.NotFoundError
		atErr *model.AlreadyTerminalError
		itErr *model.InvalidTransitionError
	)

	switch {
	case errors.As(err, &vErr):
		BadRequest(c, CodeValidation, "validation failed", vErr.Error())
	case errors.As(err, &cErr):
		conflicting := cErr.Conflicting
		if conflicting == nil {
			conflicting = []model.Assignment{}
		}
		ErrorWithData(c, http.StatusConflict, CodeConflict, cErr.Error(), conflictData{
			StaffID:     cErr.StaffID,
			Candidate:   cErr.Candidate,
			Conflicting: conflicting,
		})
	case errors.As(err, &nfErr):
		Error(c, http.StatusNotFound, CodeNotFound, nfErr.Error())
	case errors.As(err, &atErr):
		Error(c, http.StatusConflict, CodeAlreadyTerminal, atErr.Error())
	case errors.As(err, &itErr):
		h.logger.Error("Invalid lifecycle transition reached the API", zap.Error(err))
		_ = c.Error(err)
		InternalError(c)
	default:
		_ = c.Error(err)
		InternalError(c)
	}
}
