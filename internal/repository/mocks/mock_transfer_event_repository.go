package mocks

import (
	"context"

	"filetransfer/internal/model"
	"filetransfer/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockTransferEventRepository struct {
	mock.Mock
}

func (m *MockTransferEventRepository) Create(ctx context.Context, ev *model.TransferEvent) (*model.TransferEvent, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TransferEvent), args.Error(1)
}

func (m *MockTransferEventRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.TransferEvent], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.TransferEvent]), args.Error(1)
}
