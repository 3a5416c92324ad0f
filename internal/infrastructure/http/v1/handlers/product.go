package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salesdesk/internal/core/apperror"
	"salesdesk/internal/core/id"
	"salesdesk/internal/domain/catalogs/product"
	"salesdesk/internal/infrastructure/http/v1/dto"
)

// ProductHandler provides HTTP handlers for the Product catalog plus the
// stock adjustment endpoint.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
}

// NewProductHandler wires the generic catalog handler for products.
func NewProductHandler(
	base *BaseHandler,
	service *product.Service,
) *ProductHandler {

	config := CatalogHandlerConfig[
		*product.Product,
		dto.CreateProductRequest,
		dto.UpdateProductRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "product",

		MapCreateDTO: func(req dto.CreateProductRequest) (*product.Product, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *product.Product) any {
			return dto.FromProduct(entity)
		},
	}

	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// SetStock handles PUT /products/:id/stock.
// Stock is maintained by an external inventory process; this endpoint
// overwrites the cached on-hand quantity.
func (h *ProductHandler) SetStock(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetTotalStock(ctx, productID, req.TotalStock); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "stock updated")
}

// ListByStore handles GET /stores/:id/products.
func (h *ProductHandler) ListByStore(c *gin.Context) {
	ctx := c.Request.Context()

	storeID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	filter := listFilterFromQuery(h.BaseHandler, c)

	result, err := h.service.ListByStore(ctx, storeID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = dto.FromProduct(item)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
