package dto

import (
	"time"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/internal/domain/orders"
)

// --- Request DTOs ---

// SubmitOrderLineRequest is one requested item.
type SubmitOrderLineRequest struct {
	ProductID string         `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
}

// SubmitOrderRequest is the request body of the order commit operation.
type SubmitOrderRequest struct {
	StoreID      string                   `json:"storeId" binding:"required"`
	Lines        []SubmitOrderLineRequest `json:"lines" binding:"required"`
	CustomerInfo *orders.CustomerInfo     `json:"customerInfo"`
	Payments     []orders.Payment         `json:"payments"`
	Comment      string                   `json:"comment"`
}

// ToSubmitRequest converts the DTO to the domain submission shape.
func (r *SubmitOrderRequest) ToSubmitRequest() (orders.SubmitRequest, error) {
	storeID, err := id.Parse(r.StoreID)
	if err != nil {
		return orders.SubmitRequest{}, apperror.NewValidation("invalid store id format").
			WithDetail("field", "storeId")
	}

	lines := make([]orders.SubmitLine, 0, len(r.Lines))
	for i, l := range r.Lines {
		productID, err := id.Parse(l.ProductID)
		if err != nil {
			return orders.SubmitRequest{}, apperror.NewValidation("invalid product id format").
				WithDetail("line_no", i+1)
		}
		lines = append(lines, orders.SubmitLine{
			ProductID: productID,
			Quantity:  l.Quantity,
		})
	}

	return orders.SubmitRequest{
		StoreID:      storeID,
		Lines:        lines,
		CustomerInfo: r.CustomerInfo,
		Payments:     r.Payments,
		Comment:      r.Comment,
	}, nil
}

// --- Response DTOs ---

// SubmitOrderResponse is the discriminated success result of a commit.
type SubmitOrderResponse struct {
	Success       bool   `json:"success"`
	OrderID       string `json:"orderId"`
	InvoiceNumber string `json:"invoiceNumber"`
	BatchCount    int    `json:"batchCount"`
}

// FromSubmitResult creates the response from a commit result.
func FromSubmitResult(res *orders.SubmitResult) *SubmitOrderResponse {
	return &SubmitOrderResponse{
		Success:       true,
		OrderID:       res.OrderID.String(),
		InvoiceNumber: string(res.InvoiceNumber),
		BatchCount:    res.BatchCount,
	}
}

// OrderLineResponse is one line of a committed order.
type OrderLineResponse struct {
	LineNo    int            `json:"lineNo"`
	ProductID string         `json:"productId"`
	SKU       string         `json:"sku,omitempty"`
	Name      string         `json:"name,omitempty"`
	Quantity  types.Quantity `json:"quantity"`
	UnitPrice int64          `json:"unitPrice"`
	Amount    int64          `json:"amount"`
}

// OrderResponse is the response body for an order.
type OrderResponse struct {
	ID            string               `json:"id"`
	StoreID       string               `json:"storeId"`
	CompanyID     string               `json:"companyId"`
	InvoiceNumber string               `json:"invoiceNumber"`
	Status        orders.OrderStatus   `json:"status"`
	Date          time.Time            `json:"date"`
	Comment       string               `json:"comment,omitempty"`
	CustomerInfo  *orders.CustomerInfo `json:"customerInfo,omitempty"`
	Payments      []orders.Payment     `json:"payments,omitempty"`
	TotalQuantity types.Quantity       `json:"totalQuantity"`
	TotalAmount   int64                `json:"totalAmount"`
	LineCount     int                  `json:"lineCount"`
	BatchCount    int                  `json:"batchCount"`
	Lines         []OrderLineResponse  `json:"lines,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	CreatedBy     string               `json:"createdBy,omitempty"`
}

// FromOrder creates response DTO from domain entity.
func FromOrder(o *orders.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:            o.ID.String(),
		StoreID:       o.StoreID.String(),
		CompanyID:     o.CompanyID.String(),
		InvoiceNumber: o.Number,
		Status:        o.Status,
		Date:          o.Date,
		Comment:       o.Comment,
		CustomerInfo:  o.CustomerInfo,
		Payments:      o.Payments,
		TotalQuantity: o.TotalQuantity,
		TotalAmount:   int64(o.TotalAmount),
		LineCount:     o.LineCount,
		BatchCount:    o.BatchCount,
		CreatedAt:     o.CreatedAt,
		CreatedBy:     o.CreatedBy,
	}

	if len(o.Lines) > 0 {
		resp.Lines = make([]OrderLineResponse, 0, len(o.Lines))
		for _, line := range o.Lines {
			resp.Lines = append(resp.Lines, OrderLineResponse{
				LineNo:    line.LineNo,
				ProductID: line.ProductID.String(),
				SKU:       line.SKU,
				Name:      line.Name,
				Quantity:  line.Quantity,
				UnitPrice: int64(line.UnitPrice),
				Amount:    int64(line.Amount),
			})
		}
	}

	return resp
}
