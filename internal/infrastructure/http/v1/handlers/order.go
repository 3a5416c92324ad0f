package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain/orders"
	"salesdesk/internal/infrastructure/http/v1/dto"
	"salesdesk/pkg/invoiceseq"
)

// OrderHandler provides HTTP handlers for sales orders.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service) *OrderHandler {
	return &OrderHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Submit handles POST /orders - the atomic order commit.
func (h *OrderHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SubmitOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	submitReq, err := req.ToSubmitRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Submit(ctx, submitReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromSubmitResult(result))
}

// Get handles GET /orders/:id - order header with reassembled lines.
func (h *OrderHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	order, err := h.service.Get(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromOrder(order))
}

// GetByInvoiceNumber handles GET /stores/:id/orders/:number.
func (h *OrderHandler) GetByInvoiceNumber(c *gin.Context) {
	ctx := c.Request.Context()

	storeID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	number := invoiceseq.Token(c.Param("number"))
	if number == "" {
		h.Error(c, apperror.NewValidation("invoice number is required"))
		return
	}

	order, err := h.service.GetByInvoiceNumber(ctx, storeID, number)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromOrder(order))
}

// List handles GET /orders with filtering and pagination.
func (h *OrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := orders.DefaultListFilter()
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")

	if storeStr := c.Query("storeId"); storeStr != "" {
		storeID, err := id.Parse(storeStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid storeId format"))
			return
		}
		filter.StoreID = &storeID
	}

	if companyStr := c.Query("companyId"); companyStr != "" {
		companyID, err := id.Parse(companyStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid companyId format"))
			return
		}
		filter.CompanyID = &companyID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := orders.OrderStatus(statusStr)
		filter.Status = &status
	}

	if fromStr := c.Query("dateFrom"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom format (RFC3339 expected)"))
			return
		}
		filter.DateFrom = &from
	}

	if toStr := c.Query("dateTo"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo format (RFC3339 expected)"))
			return
		}
		filter.DateTo = &to
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromOrder(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Void handles POST /orders/:id/void.
// The invoice number stays allocated; voided orders keep their place
// in the sequence.
func (h *OrderHandler) Void(c *gin.Context) {
	ctx := c.Request.Context()

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Void(ctx, orderID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "order voided")
}
