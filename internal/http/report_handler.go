package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"posu-analytics/internal/http/middleware"
	"posu-analytics/internal/service"
)

type generateReportRequest struct {
	Period        string   `json:"period" binding:"required"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Type          string   `json:"type"`
	ExportFormats []string `json:"export_formats"`
}

type previewQuery struct {
	Type      string `form:"type" binding:"required"`
	Period    string `form:"period"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Limit     *int   `form:"limit"`
	PerPage   *int   `form:"per_page"`
	PageSize  *int   `form:"page_size"`
}

type historyQuery struct {
	Type           string `form:"type"`
	StartDate      string `form:"start_date"`
	EndDate        string `form:"end_date"`
	IncludeDeleted bool   `form:"include_deleted"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PerPage        int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

func (h *Handler) generateReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req generateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, bindError(err))
		return
	}

	report, err := h.reports.Generate(c.Request.Context(), principal, service.ReportRequest{
		Period:        req.Period,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Type:          req.Type,
		ExportFormats: req.ExportFormats,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"report":    report.Sections,
		"type":      report.Type,
		"range":     report.Range,
		"summary":   report.Summary,
		"files":     report.Files,
		"report_id": report.Report.ID,
	}))
}

func (h *Handler) previewReport(c *gin.Context) {
	var q previewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.handleError(c, bindError(err))
		return
	}

	limit := q.Limit
	if limit == nil {
		limit = q.PerPage
	}
	if limit == nil {
		limit = q.PageSize
	}

	preview, err := h.reports.Preview(c.Request.Context(), service.PreviewRequest{
		Type:      q.Type,
		Period:    q.Period,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Limit:     limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(preview))
}

func (h *Handler) listReports(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.handleError(c, bindError(err))
		return
	}

	page, err := h.reports.History(c.Request.Context(), service.HistoryQuery{
		Type:           q.Type,
		StartDate:      q.StartDate,
		EndDate:        q.EndDate,
		IncludeDeleted: q.IncludeDeleted,
		Page:           q.Page,
		PerPage:        q.PerPage,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(page))
}

func (h *Handler) deleteReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	if err := h.reports.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "Report deleted successfully."}))
}

func (h *Handler) restoreReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	report, err := h.reports.Restore(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(report))
}

func (h *Handler) clearReports(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	cleared, err := h.reports.Clear(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"cleared": cleared}))
}

func (h *Handler) downloadReportFile(c *gin.Context) {
	filename := c.Param("filename")
	path, err := h.reports.OpenFile(c.Request.Context(), filename)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.FileAttachment(path, filename)
}
