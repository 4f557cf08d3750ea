package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filetransfer/internal/http/middleware"
	"filetransfer/internal/service"
)

// HealthCheckFunc reports whether one dependency is usable.
type HealthCheckFunc func(ctx context.Context) error

// Options carries what RegisterRoutes wires onto the app.
type Options struct {
	Service   service.TransferService
	Logger    *slog.Logger
	PublicDir string
	// Checks run by GET /health, keyed by dependency name.
	Checks map[string]HealthCheckFunc
	// Gatherer backs GET /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Journal registers GET /transfers.
	Journal bool
}

// RegisterRoutes attaches every HTTP route to the provided Fiber app.
// Static assets are registered last so API paths always win.
func RegisterRoutes(app *fiber.App, opts Options) {
	logger := orDiscard(opts.Logger)

	app.Get("/", ServeIndex(opts.PublicDir))

	app.Get("/health", HealthCheck(opts.Checks))
	app.Get("/healthz", LivenessProbe())
	if opts.Gatherer != nil {
		app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Post("/upload", UploadFile(opts.Service, logger))
	app.Get("/uploaded-files", ListUploadedFiles(opts.Service, logger))
	app.Get("/download/:filename", DownloadFile(opts.Service, logger))
	if opts.Journal {
		app.Get("/transfers", ListTransfers(opts.Service))
	}

	if opts.PublicDir != "" {
		app.Static("/", opts.PublicDir)
	}
}

// ServeIndex sends the front-end root document.
func ServeIndex(publicDir string) fiber.Handler {
	index := filepath.Join(publicDir, "index.html")
	return func(c *fiber.Ctx) error {
		return c.SendFile(index)
	}
}

// HealthCheck pings every dependency with a short timeout.
func HealthCheck(checks map[string]HealthCheckFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadFile stores the multipart field "file" under its client-supplied name.
// @Summary Upload a file
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "file to upload"
// @Success 200 {object} model.UploadResult
// @Failure 400 {string} string "No file uploaded"
// @Router /upload [post]
func UploadFile(svc service.TransferService, logger *slog.Logger) fiber.Handler {
	logger = orDiscard(logger)
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writePlain(c, fiber.StatusBadRequest, msgNoFileUploaded)
		}

		f, err := fh.Open()
		if err != nil {
			logger.Error("upload_open_failed", "request_id", requestIDFromCtx(c), "error", err.Error())
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		defer f.Close()

		res, err := svc.Upload(serviceCtx(c), f, fh.Filename, fh.Header.Get(fiber.HeaderContentType), fh.Size)
		if err != nil {
			if errors.Is(err, service.ErrInvalidFilename) {
				return writePlain(c, fiber.StatusBadRequest, msgInvalidFilename)
			}
			logger.Error("upload_failed",
				"request_id", requestIDFromCtx(c),
				"filename", fh.Filename,
				"error", err.Error(),
			)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusOK).JSON(res)
	}
}

// ListUploadedFiles returns [{filename}] for everything in storage.
// @Summary List uploaded files
// @Produce json
// @Success 200 {array} model.StoredFile
// @Router /uploaded-files [get]
func ListUploadedFiles(svc service.TransferService, logger *slog.Logger) fiber.Handler {
	logger = orDiscard(logger)
	return func(c *fiber.Ctx) error {
		files, err := svc.List(serviceCtx(c))
		if err != nil {
			logger.Error("list_failed", "request_id", requestIDFromCtx(c), "error", err.Error())
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(files)
	}
}

// DownloadFile streams a stored file as an attachment.
// @Summary Download a file
// @Produce octet-stream
// @Param filename path string true "stored filename"
// @Success 200 {file} file
// @Failure 404 {string} string "File not found"
// @Router /download/{filename} [get]
func DownloadFile(svc service.TransferService, logger *slog.Logger) fiber.Handler {
	logger = orDiscard(logger)
	return func(c *fiber.Ctx) error {
		name, err := url.PathUnescape(strings.Clone(c.Params("filename")))
		if err != nil {
			return writePlain(c, fiber.StatusNotFound, msgFileNotFound)
		}

		rc, info, err := svc.Open(serviceCtx(c), name)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writePlain(c, fiber.StatusNotFound, msgFileNotFound)
			}
			logger.Error("download_failed",
				"request_id", requestIDFromCtx(c),
				"filename", name,
				"error", err.Error(),
			)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Set(fiber.HeaderContentDisposition, contentDisposition(name))
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		// fasthttp closes rc once the body has been written.
		return c.SendStream(rc, int(info.Size))
	}
}

// ListTransfers pages through the transfer journal with limit & offset.
// @Summary List transfer journal entries
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "page offset" default(0)
// @Success 200 {object} service.EventListResult
// @Router /transfers [get]
func ListTransfers(svc service.TransferService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.Events(serviceCtx(c), limit, offset)
		if err != nil {
			if errors.Is(err, service.ErrJournalDisabled) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// serviceCtx carries the request ID into the service layer for journal entries.
func serviceCtx(c *fiber.Ctx) context.Context {
	return service.WithRequestID(c.UserContext(), requestIDFromCtx(c))
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// contentDisposition builds an attachment header carrying name unescaped. Names
// outside printable ASCII get a "?"-substituted filename plus an RFC 5987 filename*.
func contentDisposition(name string) string {
	var fallback strings.Builder
	ascii := true
	for _, r := range name {
		switch {
		case r == '"' || r == '\\':
			fallback.WriteByte('\\')
			fallback.WriteRune(r)
		case r < 0x20 || r >= 0x7f:
			ascii = false
			fallback.WriteByte('?')
		default:
			fallback.WriteRune(r)
		}
	}

	header := `attachment; filename="` + fallback.String() + `"`
	if ascii {
		return header
	}
	extended := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if rest, ok := strings.CutPrefix(extended, "attachment; "); ok {
		header += "; " + rest
	}
	return header
}
