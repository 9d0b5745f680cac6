// Package database handles database connections and migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database connection instance.
var DB *gorm.DB

// ReadDB is the optional read replica. Nil when DB_READ_HOST is unset.
var ReadDB *gorm.DB

// GetReadDB returns the read replica if one is connected.
func GetReadDB() *gorm.DB {
	return ReadDB
}

// CustomGormLogger integrates GORM with slog
type CustomGormLogger struct {
	logger *slog.Logger
	Config logger.Config
}

// LogMode sets the logging level and returns a new interface instance.
func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newlogger := *l
	newlogger.Config.LogLevel = level
	return &newlogger
}

// Info logs an informational message with context.
func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn logs a warning message with context.
func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.Config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs trace-level information including SQL queries and execution time.
func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.Config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "GORM query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case elapsed > l.Config.SlowThreshold && l.Config.SlowThreshold != 0 && l.Config.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.Config.LogLevel >= logger.Info:
		l.logger.InfoContext(ctx, "GORM query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

// ConnectOptions controls what Connect does after the connection opens.
type ConnectOptions struct {
	ApplySchema bool
}

// Connect opens the PostgreSQL connection, applies the schema and configures the pool.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, ConnectOptions{ApplySchema: true})
}

// ConnectWithOptions is Connect with schema application made optional, for tooling that
// manages migrations itself.
func ConnectWithOptions(cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	sslMode := cfg.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		sslMode,
	)

	dbInstance, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	middleware.Logger.Info("Database connected successfully")

	if opts.ApplySchema {
		if err := ApplySchema(context.Background(), dbInstance, cfg); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	if err := configurePool(dbInstance, cfg); err != nil {
		return nil, err
	}

	if cfg.DBReadHost != "" {
		if err := connectReadReplica(cfg, sslMode); err != nil {
			middleware.Logger.Warn("read replica unavailable, reads use the primary", slog.String("error", err.Error()))
		}
	}

	DB = dbInstance
	return DB, nil
}

func connectReadReplica(cfg *config.Config, sslMode string) error {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBReadHost,
		cfg.DBReadPort,
		cfg.DBReadUser,
		cfg.DBReadPassword,
		cfg.DBName,
		sslMode,
	)
	replica, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: NewGormLogger(logger.Warn)})
	if err != nil {
		return err
	}
	if err := configurePool(replica, cfg); err != nil {
		return err
	}
	ReadDB = replica
	middleware.Logger.Info("Read replica connected", slog.String("host", cfg.DBReadHost))
	return nil
}

// NewGormLogger returns the slog-backed GORM logger used by every connection.
func NewGormLogger(level logger.LogLevel) logger.Interface {
	return &CustomGormLogger{
		logger: middleware.Logger,
		Config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	}
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql.DB: %w", err)
	}

	maxOpen := cfg.DBMaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.DBMaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	lifetime := time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute
	if lifetime <= 0 {
		lifetime = 5 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)
	return nil
}
