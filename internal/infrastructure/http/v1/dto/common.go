// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// IDResponse returns a created entity ID.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse is a generic success message.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SetDeletionMarkRequest toggles the soft-delete flag of an entity.
type SetDeletionMarkRequest struct {
	Marked bool `json:"marked"`
}

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
