package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/speedy-match/internal/config"
)

// SkipMatchInvalidation marks a statement whose write must not evict the
// user's cached match list (last visit and match count bookkeeping).
const SkipMatchInvalidation = "speedy_match:skip_invalidation"

// WithoutMatchInvalidation returns a session carrying SkipMatchInvalidation.
func WithoutMatchInvalidation(tx *gorm.DB) *gorm.DB {
	return tx.Set(SkipMatchInvalidation, true)
}

// InvalidationSkipped reports whether the statement carries SkipMatchInvalidation.
func InvalidationSkipped(tx *gorm.DB) bool {
	v, ok := tx.Get(SkipMatchInvalidation)
	if !ok {
		return false
	}
	skip, _ := v.(bool)
	return skip
}

// Models lists every table owned by this service, in migration order.
func Models() []interface{} {
	return []interface{}{&User{}, &MatchProfile{}, &Like{}, &Block{}}
}

// NewDB initializes the database connection using driver and DSN from config.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DB.DSN)
	case "mysql", "":
		dialector = mysql.Open(cfg.DB.DSN)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}

	level := logger.Warn
	if cfg.DB.LogSQL {
		level = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// AutoMigrate ensures schema is in sync with models.
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
