package storage

import (
	"fmt"

	"github.com/bobmcallan/vire-optimizer/internal/common"
	"github.com/bobmcallan/vire-optimizer/internal/config"
	"github.com/bobmcallan/vire-optimizer/internal/interfaces"
	"github.com/bobmcallan/vire-optimizer/internal/storage/badger"
	"github.com/bobmcallan/vire-optimizer/internal/storage/file"
)

// NewStorageManager creates a new storage manager based on config.
func NewStorageManager(logger *common.Logger, cfg *config.StorageConfig) (interfaces.StorageManager, error) {
	switch cfg.Backend {
	case "", "badger":
		m, err := badger.NewManager(logger, &cfg.Badger)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "file":
		return file.NewStore(cfg.File.Path, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
