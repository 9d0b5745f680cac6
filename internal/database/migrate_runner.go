package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"vidtube/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog records one applied migration and the checksum of the script that ran.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64;not null;default:''"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

func (MigrationLog) TableName() string {
	return "migration_logs"
}

func checksum(script string) string {
	sum := sha256.Sum256([]byte(script))
	return hex.EncodeToString(sum[:])
}

func ensureMigrationLog(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("ensure migration_logs: %w", err)
	}
	return nil
}

// appliedMigrations returns the logged migrations by version. A database that has never
// been migrated has none.
func appliedMigrations(ctx context.Context, db *gorm.DB) ([]MigrationLog, error) {
	if !db.Migrator().HasTable(&MigrationLog{}) {
		return nil, nil
	}
	var logs []MigrationLog
	if err := db.WithContext(ctx).Order("version ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("read migration_logs: %w", err)
	}
	return logs, nil
}

func appliedVersions(logs []MigrationLog) []int {
	versions := make([]int, len(logs))
	for i, l := range logs {
		versions[i] = l.Version
	}
	return versions
}

// validateApplied rejects logged versions the binary does not know and scripts that were
// edited after they ran. Rows written before checksums were recorded are accepted.
func validateApplied(logs []MigrationLog, registered []Migration) error {
	byVersion := make(map[int]Migration, len(registered))
	for _, m := range registered {
		byVersion[m.Version] = m
	}

	var unknown, edited []string
	for _, l := range logs {
		m, ok := byVersion[l.Version]
		switch {
		case !ok:
			unknown = append(unknown, fmt.Sprintf("%06d", l.Version))
		case l.Checksum != "" && l.Checksum != checksum(m.UpScript):
			edited = append(edited, m.String())
		}
	}
	slices.Sort(unknown)

	if len(unknown) > 0 {
		return fmt.Errorf("migration_logs has versions this build does not ship: %s (reset the development database to rebuild)",
			strings.Join(unknown, ", "))
	}
	if len(edited) > 0 {
		return fmt.Errorf("applied migrations were modified after they ran: %s; add a new migration instead",
			strings.Join(edited, ", "))
	}
	return nil
}

// RunMigrations applies every pending migration. Each script and its log row commit in
// one transaction.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := ensureMigrationLog(ctx, db); err != nil {
		return err
	}
	logs, err := appliedMigrations(ctx, db)
	if err != nil {
		return err
	}
	if err := validateApplied(logs, migrations); err != nil {
		return err
	}

	for _, m := range pendingMigrations(migrations, appliedVersions(logs)) {
		middleware.Logger.Info("Applying migration", slog.String("migration", m.String()))
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.UpScript).Error; err != nil {
				return err
			}
			return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name, Checksum: checksum(m.UpScript)}).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.String(), err)
		}
	}
	return nil
}

// RollbackMigration runs the down script of an applied migration and forgets it.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	logs, err := appliedMigrations(ctx, db)
	if err != nil {
		return err
	}
	if !slices.Contains(appliedVersions(logs), version) {
		return fmt.Errorf("migration %s has not been applied", m.String())
	}

	middleware.Logger.Info("Rolling back migration", slog.String("migration", m.String()))
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("rollback %s: %w", m.String(), err)
		}
		return tx.Where("version = ?", version).Delete(&MigrationLog{}).Error
	})
}
