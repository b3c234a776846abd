package warehouse

import (
	"context"
	"fmt"

	"github.com/killallgit/cortex-chat/pkg/config"
)

// New builds the executor selected by the warehouse driver setting
func New(ctx context.Context, cfg *config.Config, session Authorizer) (Executor, error) {
	switch cfg.Warehouse.Driver {
	case config.DriverSnowflake, "":
		return NewSnowflakeExecutor(cfg.BaseURL(), session, cfg.Warehouse), nil
	case config.DriverPostgres:
		if cfg.Warehouse.DSN == "" {
			return nil, fmt.Errorf("warehouse.dsn is required for the %s driver", config.DriverPostgres)
		}
		return OpenPostgres(ctx, cfg.Warehouse.DSN)
	default:
		return nil, fmt.Errorf("unknown warehouse driver: %q", cfg.Warehouse.Driver)
	}
}
