// Package audit provides utilities for audit field enrichment in domain entities.
package audit

import (
	"context"
	"time"

	"salesdesk/internal/core/security"
)

// timestamped is implemented by entities carrying server-assigned timestamps.
type timestamped interface {
	SetUpdatedAt(time.Time)
}

// EnrichCreatedBy sets CreatedBy and UpdatedBy fields from context user ID
// and stamps the server-assigned update time. Use before the first write of
// a document; the commit path applies it to the order header and batches
// before they are written.
//
// If userID is not in context, the user fields are left untouched.
func EnrichCreatedBy(ctx context.Context, entity interface{}) error {
	userID := security.GetUserID(ctx)

	if userID != "" {
		switch e := entity.(type) {
		case interface {
			SetCreatedBy(string)
			SetUpdatedBy(string)
		}:
			e.SetCreatedBy(userID)
			e.SetUpdatedBy(userID)
		}
	}

	if e, ok := entity.(timestamped); ok {
		e.SetUpdatedAt(time.Now().UTC())
	}

	return nil
}

// EnrichUpdatedBy sets only the UpdatedBy field and update timestamp.
// Use in BeforeUpdate hooks.
func EnrichUpdatedBy(ctx context.Context, entity interface{}) error {
	userID := security.GetUserID(ctx)

	if userID != "" {
		switch e := entity.(type) {
		case interface{ SetUpdatedBy(string) }:
			e.SetUpdatedBy(userID)
		}
	}

	if e, ok := entity.(timestamped); ok {
		e.SetUpdatedAt(time.Now().UTC())
	}

	return nil
}
