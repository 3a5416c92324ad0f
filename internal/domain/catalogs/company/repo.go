package company

import (
	"salesdesk/internal/domain"
)

// Repository defines the interface for Company persistence.
type Repository interface {
	domain.CatalogRepository[*Company]
}
