package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"posu-analytics/internal/auth"
	"posu-analytics/internal/http/middleware"
	"posu-analytics/internal/service"
)

type Handler struct {
	analytics    *service.AnalyticsService
	transactions *service.TransactionService
	reports      *service.ReportService
	audits       *service.AuditService
	log          zerolog.Logger
}

func NewHandler(
	analytics *service.AnalyticsService,
	transactions *service.TransactionService,
	reports *service.ReportService,
	audits *service.AuditService,
	log zerolog.Logger,
) *Handler {
	return &Handler{analytics: analytics, transactions: transactions, reports: reports, audits: audits, log: log}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc, perms *auth.Permissions) {
	protected := r.Group("/api/admin")
	protected.Use(authMiddleware)

	can := func(resource, action string) gin.HandlerFunc {
		return middleware.RequirePermission(perms, resource, action)
	}

	protected.GET("/dashboard", can(auth.ResourceDashboard, auth.ActionRead), h.getDashboard)

	protected.GET("/transactions", can(auth.ResourceTransactions, auth.ActionRead), h.listTransactions)
	protected.PATCH("/transactions/:id/pay", can(auth.ResourceTransactions, auth.ActionUpdate), h.markTransactionPaid)

	protected.POST("/reports", can(auth.ResourceReports, auth.ActionGenerate), h.generateReport)
	protected.GET("/reports/preview", can(auth.ResourceReports, auth.ActionRead), h.previewReport)
	protected.GET("/reports", can(auth.ResourceReports, auth.ActionRead), h.listReports)
	protected.DELETE("/reports", can(auth.ResourceReports, auth.ActionDelete), h.clearReports)
	protected.DELETE("/reports/:id", can(auth.ResourceReports, auth.ActionDelete), h.deleteReport)
	protected.POST("/reports/:id/restore", can(auth.ResourceReports, auth.ActionDelete), h.restoreReport)
	protected.GET("/reports/files/:filename", can(auth.ResourceReports, auth.ActionRead), h.downloadReportFile)

	protected.GET("/audit-logs", can(auth.ResourceAuditLogs, auth.ActionRead), h.listAuditLogs)
}

func (h *Handler) getDashboard(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	req := service.DashboardRequest{
		Period:        strings.ToLower(strings.TrimSpace(c.Query("period"))),
		HeatmapPeriod: strings.ToLower(strings.TrimSpace(c.Query("heatmap_period"))),
	}

	dashboard, err := h.analytics.GetDashboard(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(dashboard))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var appErr *service.AppError
	if !errors.As(err, &appErr) {
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Str("path", c.FullPath()).Msg("unexpected error")
		c.JSON(http.StatusInternalServerError, errorResponse("An unexpected error occurred."))
		return
	}

	switch appErr.Kind {
	case service.KindValidation:
		c.JSON(http.StatusUnprocessableEntity, validationResponse(appErr.Message, appErr.Fields))
	case service.KindAuthorization:
		c.JSON(http.StatusForbidden, errorResponse(appErr.Message))
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, errorResponse(appErr.Message))
	case service.KindBadRequest:
		c.JSON(http.StatusBadRequest, errorResponse(appErr.Message))
	case service.KindExternalService:
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("external service failure")
		c.JSON(http.StatusBadGateway, errorResponse(appErr.Message))
	default:
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("unexpected error")
		c.JSON(http.StatusInternalServerError, errorResponse("An unexpected error occurred."))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{"status": "success", "data": data}
}

func errorResponse(message string) gin.H {
	return gin.H{"status": "error", "message": message}
}

func validationResponse(message string, fields map[string][]string) gin.H {
	return gin.H{"status": "error", "message": message, "errors": fields}
}
