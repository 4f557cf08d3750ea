package storage

import (
	"fmt"

	"filetransfer/internal/config"
)

// New builds the backend selected by cfg.Backend.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case config.BackendLocal, "":
		if cfg.UploadDir == "" {
			return nil, fmt.Errorf("storage: upload dir is required for the %s backend", config.BackendLocal)
		}
		return NewLocal(cfg.UploadDir), nil
	case config.BackendMinIO:
		return NewMinIO(cfg.MinIO)
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}
