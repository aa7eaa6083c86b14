package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"posu-analytics/internal/http/middleware"
	"posu-analytics/internal/service"
)

type transactionQuery struct {
	Search         string `form:"search"`
	ViolationID    *uint  `form:"violation_id" binding:"omitempty,min=1"`
	VehicleType    string `form:"vehicle_type"`
	Address        string `form:"address"`
	RepeatOffender string `form:"repeat_offender"`
	DateFrom       string `form:"dateFrom"`
	DateTo         string `form:"dateTo"`
	DateRange      string `form:"dateRange"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PerPage        int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

func (h *Handler) listTransactions(c *gin.Context) {
	var q transactionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.handleError(c, bindError(err))
		return
	}

	page, err := h.transactions.Search(c.Request.Context(), service.TransactionQuery{
		Search:         q.Search,
		ViolationID:    q.ViolationID,
		VehicleType:    q.VehicleType,
		Address:        q.Address,
		RepeatOffender: q.RepeatOffender,
		DateFrom:       q.DateFrom,
		DateTo:         q.DateTo,
		DateRange:      q.DateRange,
		Page:           q.Page,
		PerPage:        q.PerPage,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(page))
}

func (h *Handler) markTransactionPaid(c *gin.Context) {
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

	view, err := h.transactions.MarkPaid(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}
