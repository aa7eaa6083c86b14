package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"posu-analytics/internal/http/middleware"
	"posu-analytics/internal/service"
)

type auditLogQuery struct {
	Search  string `form:"search"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

func (h *Handler) listAuditLogs(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var q auditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.handleError(c, bindError(err))
		return
	}

	page, err := h.audits.List(c.Request.Context(), principal, service.AuditQuery{
		Search:  q.Search,
		Page:    q.Page,
		PerPage: q.PerPage,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(page))
}
