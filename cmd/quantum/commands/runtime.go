package commands

import (
	"fmt"
	"time"

	"github.com/quantumstock/backend/pkg/config"
	"github.com/quantumstock/backend/pkg/database"
	"github.com/quantumstock/backend/pkg/logger"
	pkgredis "github.com/quantumstock/backend/pkg/redis"
)

// runtime bundles the shared infrastructure every command needs.
type runtime struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	runLock *pkgredis.RunLock
}

func (r *runtime) close() {
	if r.db != nil {
		r.db.Close()
	}
}

// initRuntime loads config and connects the storage/lock infrastructure.
// Commands own the lifecycle: defer rt.close() after a successful call.
func initRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := pkgredis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		log:     log,
		db:      db,
		runLock: pkgredis.NewRunLock(redisClient, "quantum"),
	}, nil
}

// parseDate parses the YYYYMMDD form the provider and operators use.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYYMMDD", s)
	}
	return d, nil
}
