package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"routeplanner/internal/pkg/errs"

	_ "github.com/jackc/pgx/v5/stdlib"
	driver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

// DSN builds a libpq keyword/value connection string.
func DSN(host, port, user, password, dbName, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode)
}

// Connect opens a pgx-backed database/sql pool, hands it to GORM and
// verifies the server answers.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errs.NewValueIsRequiredError("postgres dsn")
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errs.NewUnavailableError(fmt.Errorf("postgres: %w", err))
	}
	db, err := gorm.Open(driver.New(driver.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		_ = sqlDB.Close()
		return nil, errs.NewUnavailableError(fmt.Errorf("postgres: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err = sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, errs.NewUnavailableError(fmt.Errorf("postgres: %w", err))
	}
	return db, nil
}
