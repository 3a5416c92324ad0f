// Package orders implements the order document and its commit protocol:
// invoice-number allocation, size-bounded line batching, stock validation
// and the atomic commit transaction.
package orders

import (
	"context"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/entity"
	"salesdesk/internal/core/id"
	"salesdesk/internal/core/types"
	"salesdesk/pkg/invoiceseq"
)

// OrderStatus defines the lifecycle state of an order.
type OrderStatus string

const (
	// StatusCompleted is the only status this flow produces: orders are
	// created at commit time, already paid at the register.
	StatusCompleted OrderStatus = "completed"

	// StatusVoided marks an order cancelled after the fact. The invoice
	// number stays allocated; the sequence never reuses it.
	StatusVoided OrderStatus = "voided"
)

// Order is the committed sale header. Line items are not stored inline;
// they live in LineBatch records and are reassembled on read.
type Order struct {
	entity.Document

	// StoreID is the selling store; the invoice number is unique within it
	StoreID id.ID `db:"store_id" json:"storeId"`

	// Status of the order
	Status OrderStatus `db:"status" json:"status"`

	// CustomerInfo is optional free-form customer data (stored as jsonb)
	CustomerInfo *CustomerInfo `db:"customer_info" json:"customerInfo,omitempty"`

	// Payments taken at the register (stored as jsonb)
	Payments []Payment `db:"payments" json:"payments,omitempty"`

	// Totals (calculated from lines at commit time)
	TotalQuantity types.Quantity   `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.MinorUnits `db:"total_amount" json:"totalAmount"`
	LineCount     int              `db:"line_count" json:"lineCount"`
	BatchCount    int              `db:"batch_count" json:"batchCount"`

	// Lines is the reassembled item list. Populated on read from the
	// batch records; never written as part of the header row.
	Lines []Line `db:"-" json:"lines,omitempty"`
}

// InvoiceNumber returns the allocated invoice number of the order.
func (o *Order) InvoiceNumber() invoiceseq.Token {
	return invoiceseq.Token(o.Number)
}

// Line is a single sold item.
type Line struct {
	// LineNo is 1-based and contiguous across the whole order
	LineNo int `json:"lineNo"`

	// Product reference
	ProductID id.ID  `json:"productId"`
	SKU       string `json:"sku,omitempty"`
	Name      string `json:"name,omitempty"`

	// Quantity sold
	Quantity types.Quantity `json:"quantity"`

	// UnitPrice in minor currency units, captured at sale time
	UnitPrice types.MinorUnits `json:"unitPrice"`

	// Amount = UnitPrice * Quantity, in minor units
	Amount types.MinorUnits `json:"amount"`
}

// CustomerInfo is optional customer data attached to the order.
type CustomerInfo struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Payment is a single tender line.
type Payment struct {
	// Method: "cash", "card", "transfer"
	Method string `json:"method"`

	// Amount in major units with full precision
	Amount types.Money `json:"amount"`
}

// BatchStatus mirrors the order status on each batch record so readers can
// filter voided orders without joining the header.
type BatchStatus string

const (
	BatchStatusCompleted BatchStatus = "completed"
	BatchStatusVoided    BatchStatus = "voided"
)

// LineBatch is a size-bounded chunk of an order's line items, stored as a
// separate row. BatchNumber is 1-based and contiguous; concatenating Items
// across batches in BatchNumber order reconstructs the original line list.
type LineBatch struct {
	ID          id.ID       `db:"id" json:"id"`
	OrderID     id.ID       `db:"order_id" json:"orderId"`
	BatchNumber int         `db:"batch_number" json:"batchNumber"`
	Items       []Line      `db:"items" json:"items"`
	Status      BatchStatus `db:"status" json:"status"`
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if err := o.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(o.StoreID) {
		return apperror.NewValidation("store is required").
			WithDetail("field", "storeId")
	}

	if len(o.Lines) == 0 {
		return apperror.NewValidation("order has no line items").
			WithDetail("field", "lines")
	}

	for _, line := range o.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("line item has no product").
				WithDetail("line_no", line.LineNo)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("line_no", line.LineNo).
				WithDetail("product_id", line.ProductID.String())
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("line price cannot be negative").
				WithDetail("line_no", line.LineNo).
				WithDetail("product_id", line.ProductID.String())
		}
	}

	return nil
}

// RecalculateTotals updates header totals from lines.
func (o *Order) RecalculateTotals() {
	o.TotalQuantity = 0
	o.TotalAmount = 0
	for _, line := range o.Lines {
		o.TotalQuantity += line.Quantity
		o.TotalAmount += line.Amount
	}
	o.LineCount = len(o.Lines)
}

// --- Submission API shapes ---

// SubmitLine is one requested item in a submission.
type SubmitLine struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// SubmitRequest is the input of the order commit operation.
type SubmitRequest struct {
	StoreID      id.ID         `json:"storeId"`
	Lines        []SubmitLine  `json:"lines"`
	CustomerInfo *CustomerInfo `json:"customerInfo,omitempty"`
	Payments     []Payment     `json:"payments,omitempty"`
	Comment      string        `json:"comment,omitempty"`
}

// SubmitResult is the discriminated success result of a commit. Failures are
// returned as errors; no partial result is ever produced.
type SubmitResult struct {
	OrderID       id.ID            `json:"orderId"`
	InvoiceNumber invoiceseq.Token `json:"invoiceNumber"`
	BatchCount    int              `json:"batchCount"`
}
