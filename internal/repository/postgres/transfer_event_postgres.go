package postgres

import (
	"context"
	"database/sql"

	"filetransfer/internal/model"
	"filetransfer/internal/repository"
)

// TransferEventPostgres is a PostgreSQL implementation of repository.TransferEventRepository.
type TransferEventPostgres struct {
	db *sql.DB
}

// NewTransferEventPostgres creates a new TransferEventPostgres repository.
func NewTransferEventPostgres(db *sql.DB) *TransferEventPostgres {
	return &TransferEventPostgres{db: db}
}

var _ repository.TransferEventRepository = (*TransferEventPostgres)(nil)

// Create inserts a new event row and returns the stored record.
func (r *TransferEventPostgres) Create(ctx context.Context, ev *model.TransferEvent) (*model.TransferEvent, error) {
	const q = `
		INSERT INTO transfer_events (id, action, filename, size, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, action, filename, size, request_id, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		ev.ID,
		ev.Action,
		ev.Filename,
		ev.Size,
		ev.RequestID,
		ev.CreatedAt,
	)
	var out model.TransferEvent
	if err := scanEvent(row, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns events using LIMIT/OFFSET pagination and a total count.
func (r *TransferEventPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.TransferEvent], error) {
	const qCount = `SELECT COUNT(*) FROM transfer_events`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, action, filename, size, request_id, created_at
		FROM transfer_events
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.TransferEvent, 0)
	for rows.Next() {
		var ev model.TransferEvent
		if err := scanEvent(rows, &ev); err != nil {
			return nil, err
		}
		items = append(items, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.TransferEvent]{
		Items: items,
		Total: total,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner, ev *model.TransferEvent) error {
	return s.Scan(
		&ev.ID,
		&ev.Action,
		&ev.Filename,
		&ev.Size,
		&ev.RequestID,
		&ev.CreatedAt,
	)
}
