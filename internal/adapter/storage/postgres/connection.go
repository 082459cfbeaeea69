package postgres

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/pkg/config"
)

// NewConnection initializes a new PostgreSQL connection using GORM
func NewConnection(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.LogQueries {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// Models lists every persisted type in dependency order.
var Models = []interface{}{
	&domain.User{},
	&domain.Vehicle{},
	&domain.ChargingStation{},
	&domain.Charger{},
	&domain.ConnectorType{},
	&domain.Booking{},
	&domain.Chat{},
	&domain.Message{},
	&domain.Notification{},
	&domain.Report{},
	&domain.File{},
}

const (
	upcomingStartIndex = "idx_bookings_upcoming_start"

	createUpcomingStartIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ` + upcomingStartIndex + `
		ON bookings (charger_id, connector_type_id, start_time)
		WHERE status = 'upcoming'`
	createOverlapLookupIndex = `CREATE INDEX IF NOT EXISTS idx_bookings_overlap_lookup
		ON bookings (charger_id, connector_type_id, status, start_time, end_time)`
)

// RunMigrations creates or updates the schema. With preventOverlap the
// database also refuses two upcoming bookings starting at the same instant on
// one connector, backing the row lock taken by BookingRepository.Create.
func RunMigrations(db *gorm.DB, preventOverlap bool) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(createOverlapLookupIndex).Error; err != nil {
		return fmt.Errorf("create overlap lookup index: %w", err)
	}

	stmt := createUpcomingStartIndex
	if !preventOverlap {
		stmt = `DROP INDEX IF EXISTS ` + upcomingStartIndex
	}
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("manage %s: %w", upcomingStartIndex, err)
	}

	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database is reachable
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
