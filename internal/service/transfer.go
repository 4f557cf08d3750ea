package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"filetransfer/internal/model"
	"filetransfer/internal/repository"
	"filetransfer/internal/storage"
)

var (
	ErrNotFound        = errors.New("file not found")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrReaderNil       = errors.New("reader is nil")
	ErrJournalDisabled = errors.New("transfer journal is disabled")
)

// EventListResult is the service-level DTO for paginated journal entries.
type EventListResult struct {
	Items []model.TransferEvent `json:"data"`
	Total int                   `json:"total"`
}

// TransferService defines the file-transfer use cases.
type TransferService interface {
	// Upload stores r under filename, replacing any file with the same name.
	// The filename is used verbatim; names that are not a single path element fail
	// with ErrInvalidFilename.
	Upload(ctx context.Context, r io.Reader, filename string, contentType string, size int64) (*model.UploadResult, error)

	// List returns every stored file in backend enumeration order.
	List(ctx context.Context) ([]model.StoredFile, error)

	// Open returns a reader for a stored file. Missing or invalid names yield ErrNotFound.
	// The caller must close the reader.
	Open(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error)

	// Purge deletes every stored file and returns how many were removed.
	Purge(ctx context.Context) (int, error)

	// Events pages through the transfer journal. ErrJournalDisabled when not configured.
	Events(ctx context.Context, limit, offset int) (*EventListResult, error)
}

type requestIDKey struct{}

// WithRequestID attaches the request ID recorded on journal entries.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// transferService is a concrete implementation of TransferService.
type transferService struct {
	store   storage.Storage
	journal repository.TransferEventRepository
	logger  *slog.Logger
}

// NewTransferService constructs a TransferService. journal may be nil.
func NewTransferService(store storage.Storage, journal repository.TransferEventRepository, logger *slog.Logger) TransferService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &transferService{store: store, journal: journal, logger: logger}
}

func (s *transferService) Upload(ctx context.Context, r io.Reader, filename string, contentType string, size int64) (*model.UploadResult, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if !storage.ValidKey(filename) {
		return nil, ErrInvalidFilename
	}

	info, err := s.store.Put(ctx, filename, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) {
			return nil, ErrInvalidFilename
		}
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	s.record(ctx, model.ActionUpload, info.Key, info.Size)
	return &model.UploadResult{
		Message:  model.UploadSuccessMessage,
		Filename: info.Key,
	}, nil
}

func (s *transferService) List(ctx context.Context) ([]model.StoredFile, error) {
	objs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list storage: %w", err)
	}
	files := make([]model.StoredFile, 0, len(objs))
	for _, o := range objs {
		files = append(files, model.StoredFile{Filename: o.Key})
	}
	return files, nil
}

func (s *transferService) Open(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error) {
	if !storage.ValidKey(filename) {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	rc, info, err := s.store.Get(ctx, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, storage.ObjectInfo{}, ErrNotFound
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("open from storage: %w", err)
	}
	s.record(ctx, model.ActionDownload, info.Key, info.Size)
	return rc, info, nil
}

// Purge is best-effort: the count reflects what was removed even when err != nil.
func (s *transferService) Purge(ctx context.Context) (int, error) {
	n, err := s.store.DeleteAll(ctx)
	s.record(ctx, model.ActionPurge, "", int64(n))
	if err != nil {
		return n, fmt.Errorf("purge storage: %w", err)
	}
	return n, nil
}

func (s *transferService) Events(ctx context.Context, limit, offset int) (*EventListResult, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.journal.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &EventListResult{Items: res.Items, Total: res.Total}, nil
}

// record appends to the journal. Failures are logged and never fail the transfer.
func (s *transferService) record(ctx context.Context, action, filename string, size int64) {
	if s.journal == nil {
		return
	}
	ev := &model.TransferEvent{
		ID:        uuid.NewString(),
		Action:    action,
		Filename:  filename,
		Size:      size,
		RequestID: requestIDFrom(ctx),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.journal.Create(ctx, ev); err != nil {
		s.logger.Warn("journal_write_failed",
			"action", action,
			"filename", filename,
			"request_id", ev.RequestID,
			"error", err.Error(),
		)
	}
}
