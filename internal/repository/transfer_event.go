package repository

import (
	"context"

	"filetransfer/internal/model"
)

// TransferEventRepository persists the transfer journal using SQL queries only.
// No business logic here, strictly persistence operations.
type TransferEventRepository interface {
	// Create inserts a new event. The caller provides ID and CreatedAt.
	// Returns the stored event as read back from the database.
	Create(ctx context.Context, ev *model.TransferEvent) (*model.TransferEvent, error)

	// List returns a page of events, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.TransferEvent], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
