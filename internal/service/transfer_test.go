package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"filetransfer/internal/logging"
	"filetransfer/internal/model"
	"filetransfer/internal/repository"
	repoMocks "filetransfer/internal/repository/mocks"
	"filetransfer/internal/storage"
	storeMocks "filetransfer/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransferService_Upload(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	tests := []struct {
		name       string
		filename   string
		reader     io.Reader
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTransferEventRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:     "happy path records journal entry",
			filename: "report.pdf",
			reader:   strings.NewReader("ABC"),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTransferEventRepository) {
				mStore.On("Put", ctx, "report.pdf", mock.Anything, storage.PutObjectOptions{Size: 3, ContentType: "application/pdf"}).
					Return(storage.ObjectInfo{Key: "report.pdf", Size: 3}, nil)
				mRepo.On("Create", ctx, mock.MatchedBy(func(ev *model.TransferEvent) bool {
					return ev.Action == model.ActionUpload &&
						ev.Filename == "report.pdf" &&
						ev.Size == 3 &&
						ev.RequestID == "req-1" &&
						ev.ID != ""
				})).Return(&model.TransferEvent{}, nil)
			},
		},
		{
			name:     "journal failure does not fail upload",
			filename: "report.pdf",
			reader:   strings.NewReader("ABC"),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTransferEventRepository) {
				mStore.On("Put", ctx, "report.pdf", mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "report.pdf", Size: 3}, nil)
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down"))
			},
		},
		{
			name:       "nil reader",
			filename:   "report.pdf",
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockTransferEventRepository) {},
			wantErr:    ErrReaderNil,
		},
		{
			name:       "traversal filename",
			filename:   "../../etc/passwd",
			reader:     strings.NewReader("x"),
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockTransferEventRepository) {},
			wantErr:    ErrInvalidFilename,
		},
		{
			name:     "backend rejects key",
			filename: ".partial",
			reader:   strings.NewReader("x"),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTransferEventRepository) {
				mStore.On("Put", ctx, ".partial", mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, storage.ErrInvalidKey)
			},
			wantErr: ErrInvalidFilename,
		},
		{
			name:     "storage error",
			filename: "report.pdf",
			reader:   strings.NewReader("ABC"),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTransferEventRepository) {
				mStore.On("Put", ctx, "report.pdf", mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("disk full"))
			},
			wantErrMsg: "upload to storage: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockTransferEventRepository)
			svc := NewTransferService(mStore, mRepo, nil)

			tt.setupMocks(mStore, mRepo)

			ct := ""
			if tt.reader != nil {
				ct = "application/pdf"
			}
			res, err := svc.Upload(ctx, tt.reader, tt.filename, ct, 3)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			case tt.wantErrMsg != "":
				assert.ErrorContains(t, err, tt.wantErrMsg)
				assert.Nil(t, res)
			default:
				require.NoError(t, err)
				assert.Equal(t, &model.UploadResult{Message: "File uploaded successfully", Filename: "report.pdf"}, res)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestTransferService_UploadLogsJournalFailure(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockTransferEventRepository)

	var buf bytes.Buffer
	svc := NewTransferService(mStore, mRepo, logging.New(&buf, time.UTC))

	mStore.On("Put", ctx, "a.txt", mock.Anything, mock.Anything).Return(storage.ObjectInfo{Key: "a.txt"}, nil)
	mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.Upload(ctx, strings.NewReader("a"), "a.txt", "", 1)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"journal_write_failed"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestTransferService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("maps keys to stored files", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		svc := NewTransferService(mStore, nil, nil)
		mStore.On("List", ctx).Return([]storage.ObjectInfo{{Key: "b.txt"}, {Key: "a.txt"}}, nil)

		files, err := svc.List(ctx)

		require.NoError(t, err)
		assert.Equal(t, []model.StoredFile{{Filename: "b.txt"}, {Filename: "a.txt"}}, files)
	})

	t.Run("empty listing is not nil", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		svc := NewTransferService(mStore, nil, nil)
		mStore.On("List", ctx).Return([]storage.ObjectInfo{}, nil)

		files, err := svc.List(ctx)

		require.NoError(t, err)
		assert.NotNil(t, files)
		assert.Empty(t, files)
	})

	t.Run("storage error", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		svc := NewTransferService(mStore, nil, nil)
		mStore.On("List", ctx).Return(nil, errors.New("io error"))

		_, err := svc.List(ctx)

		assert.ErrorContains(t, err, "list storage: io error")
	})
}

func TestTransferService_Open(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		filename   string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTransferEventRepository)
		wantErr    error
	}{
		{
			name:     "happy path",
			filename: "report.pdf",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTransferEventRepository) {
				mStore.On("Get", ctx, "report.pdf").
					Return(io.NopCloser(strings.NewReader("ABC")), storage.ObjectInfo{Key: "report.pdf", Size: 3}, nil)
				mRepo.On("Create", ctx, mock.MatchedBy(func(ev *model.TransferEvent) bool {
					return ev.Action == model.ActionDownload && ev.Filename == "report.pdf"
				})).Return(&model.TransferEvent{}, nil)
			},
		},
		{
			name:     "missing file",
			filename: "ghost.txt",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTransferEventRepository) {
				mStore.On("Get", ctx, "ghost.txt").Return(nil, storage.ObjectInfo{}, storage.ErrNotExist)
			},
			wantErr: ErrNotFound,
		},
		{
			name:       "traversal is not found",
			filename:   "../secret",
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockTransferEventRepository) {},
			wantErr:    ErrNotFound,
		},
		{
			name:     "storage failure",
			filename: "report.pdf",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockTransferEventRepository) {
				mStore.On("Get", ctx, "report.pdf").Return(nil, storage.ObjectInfo{}, errors.New("permission denied"))
			},
			wantErr: errors.New("open from storage: permission denied"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockTransferEventRepository)
			svc := NewTransferService(mStore, mRepo, nil)

			tt.setupMocks(mStore, mRepo)

			rc, info, err := svc.Open(ctx, tt.filename)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, ErrNotFound)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				assert.Nil(t, rc)
			} else {
				require.NoError(t, err)
				defer rc.Close()
				body, _ := io.ReadAll(rc)
				assert.Equal(t, "ABC", string(body))
				assert.Equal(t, int64(3), info.Size)
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestTransferService_Purge(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes and records", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockTransferEventRepository)
		svc := NewTransferService(mStore, mRepo, nil)

		mStore.On("DeleteAll", ctx).Return(4, nil)
		mRepo.On("Create", ctx, mock.MatchedBy(func(ev *model.TransferEvent) bool {
			return ev.Action == model.ActionPurge && ev.Size == 4
		})).Return(&model.TransferEvent{}, nil)

		n, err := svc.Purge(ctx)

		require.NoError(t, err)
		assert.Equal(t, 4, n)
		mRepo.AssertExpectations(t)
	})

	t.Run("partial failure keeps count", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		svc := NewTransferService(mStore, nil, nil)

		mStore.On("DeleteAll", ctx).Return(2, errors.New("remove b.txt: busy"))

		n, err := svc.Purge(ctx)

		assert.Equal(t, 2, n)
		assert.ErrorContains(t, err, "purge storage: remove b.txt: busy")
	})
}

func TestTransferService_Events(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled journal", func(t *testing.T) {
		svc := NewTransferService(storage.NewMemory(), nil, nil)
		_, err := svc.Events(ctx, 10, 0)
		assert.ErrorIs(t, err, ErrJournalDisabled)
	})

	t.Run("defaults applied", func(t *testing.T) {
		mRepo := new(repoMocks.MockTransferEventRepository)
		svc := NewTransferService(storage.NewMemory(), mRepo, nil)

		mRepo.On("List", ctx, repository.PageQuery{Limit: 10, Offset: 0}).
			Return(&repository.PageResult[model.TransferEvent]{
				Items: []model.TransferEvent{{ID: "1"}},
				Total: 1,
			}, nil)

		res, err := svc.Events(ctx, 0, -5)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
		assert.Len(t, res.Items, 1)
		mRepo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		mRepo := new(repoMocks.MockTransferEventRepository)
		svc := NewTransferService(storage.NewMemory(), mRepo, nil)
		mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))

		_, err := svc.Events(ctx, 5, 0)
		assert.Error(t, err)
	})
}

// Exercises the behavior the HTTP surface promises on a real backend.
func TestTransferService_MemoryBackendScenario(t *testing.T) {
	ctx := context.Background()
	svc := NewTransferService(storage.NewMemory(), nil, nil)

	res, err := svc.Upload(ctx, strings.NewReader("ABC"), "report.pdf", "", 3)
	require.NoError(t, err)
	assert.Equal(t, "File uploaded successfully", res.Message)
	assert.Equal(t, "report.pdf", res.Filename)

	_, err = svc.Upload(ctx, strings.NewReader("v1"), "notes.txt", "", 2)
	require.NoError(t, err)
	_, err = svc.Upload(ctx, strings.NewReader("v2!"), "notes.txt", "", 3)
	require.NoError(t, err)

	files, err := svc.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.StoredFile{{Filename: "report.pdf"}, {Filename: "notes.txt"}}, files)

	rc, _, err := svc.Open(ctx, "notes.txt")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "v2!", string(body))

	n, err := svc.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	files, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}
