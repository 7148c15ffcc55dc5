package infra

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/finshare/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// Pure-Go sqlite driver registered as "sqlite".
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewDBConnection opens the configured database. appEnv selects the gorm log level.
func NewDBConnection(
	cnf *config.DB,
	appEnv string,
) (*gorm.DB, error) {
	if cnf == nil || cnf.Url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	var logMode logger.LogLevel
	if appEnv == "development" {
		logMode = logger.Info
	} else {
		logMode = logger.Silent
	}

	dialector, err := dialectorFor(cnf)
	if err != nil {
		return nil, err
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	if cnf.Driver == DriverSQLite {
		// A single connection keeps in-memory databases shared and
		// serializes writers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	}

	return connection, nil
}

func dialectorFor(cnf *config.DB) (gorm.Dialector, error) {
	switch cnf.Driver {
	case "", DriverPostgres:
		return postgres.Open(cnf.Url), nil
	case DriverSQLite:
		return sqlite.New(sqlite.Config{
			DriverName: "sqlite",
			DSN:        cnf.Url,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cnf.Driver)
	}
}
