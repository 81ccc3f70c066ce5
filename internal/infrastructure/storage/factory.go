package storage

import (
	"fmt"

	"go.uber.org/zap"

	disbursementapp "github.com/suweldo/payroll-backend/internal/application/disbursement"
	infraconfig "github.com/suweldo/payroll-backend/internal/infrastructure/config"
)

// NewFileStore creates the file store named by the storage configuration.
func NewFileStore(cfg *infraconfig.StorageConfig, logger *zap.Logger) (disbursementapp.FileStore, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3FileStore(cfg, WithLogger(logger))
	case "", "local":
		return NewLocalFileStore(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
