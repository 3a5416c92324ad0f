package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain/catalogs/store"
	"salesdesk/internal/infrastructure/http/v1/dto"
)

// StoreHandler provides HTTP handlers for the Store catalog plus the
// invoice counter preview endpoint.
type StoreHandler struct {
	*CatalogHandler[*store.Store, dto.CreateStoreRequest, dto.UpdateStoreRequest]
	service *store.Service
}

// NewStoreHandler wires the generic catalog handler for stores.
func NewStoreHandler(
	base *BaseHandler,
	service *store.Service,
) *StoreHandler {

	config := CatalogHandlerConfig[
		*store.Store,
		dto.CreateStoreRequest,
		dto.UpdateStoreRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "store",

		MapCreateDTO: func(req dto.CreateStoreRequest) (*store.Store, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateStoreRequest, existing *store.Store) *store.Store {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *store.Store) any {
			return dto.FromStore(entity)
		},
	}

	return &StoreHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// NextInvoice handles GET /stores/:id/next-invoice.
// The returned number is advisory: the authoritative allocation happens
// inside the order commit transaction.
func (h *StoreHandler) NextInvoice(c *gin.Context) {
	ctx := c.Request.Context()

	storeID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	number, err := h.service.PreviewNextInvoice(ctx, storeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NextInvoiceResponse{
		StoreID:       storeID.String(),
		InvoiceNumber: string(number),
		Advisory:      true,
	})
}

// ListByCompany handles GET /companies/:id/stores.
func (h *StoreHandler) ListByCompany(c *gin.Context) {
	ctx := c.Request.Context()

	companyID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	filter := listFilterFromQuery(h.BaseHandler, c)

	result, err := h.service.ListByCompany(ctx, companyID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromStore(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
