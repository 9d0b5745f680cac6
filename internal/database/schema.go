package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"vidtube/internal/config"
	"vidtube/internal/middleware"

	"gorm.io/gorm"
)

// DB_SCHEMA_MODE values. Hybrid runs the SQL migrations everywhere and AutoMigrate on top
// outside production.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// Constraint is a uniqueness guarantee the application depends on. Index names an index;
// an empty Index means the columns form the table's primary key.
type Constraint struct {
	Table   string
	Index   string
	Columns []string
}

func (c Constraint) String() string {
	if c.Index == "" {
		return c.Table + "(" + strings.Join(c.Columns, ", ") + ") primary key"
	}
	return c.Table + "." + c.Index
}

// RequiredConstraints keep usernames and emails unique and make the like, subscription,
// playlist membership and watch history writes idempotent under concurrent requests.
var RequiredConstraints = []Constraint{
	{Table: "users", Index: "idx_users_username", Columns: []string{"username"}},
	{Table: "users", Index: "idx_users_email", Columns: []string{"email"}},
	{Table: "likes", Index: "idx_likes_user_target", Columns: []string{"liked_by", "target_type", "target_id"}},
	{Table: "subscriptions", Index: "idx_subscriptions_pair", Columns: []string{"subscriber_id", "channel_id"}},
	{Table: "playlist_videos", Columns: []string{"playlist_id", "video_id"}},
	{Table: "watch_history", Columns: []string{"user_id", "video_id"}},
}

type SchemaStatus struct {
	Mode               string
	Environment        string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	AppliedVersions    []int
	PendingMigrations  []Migration
	MissingConstraints []string
}

type schemaPlan struct {
	mode    string
	runSQL  bool
	runAuto bool
}

func isProdLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

func planSchema(cfg *config.Config) (schemaPlan, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		mode = SchemaModeHybrid
	}
	prodLike := isProdLikeEnv(cfg.Env)

	plan := schemaPlan{mode: mode}
	switch mode {
	case SchemaModeSQL:
		plan.runSQL = true
	case SchemaModeAuto:
		if prodLike && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.runAuto = true
	case SchemaModeHybrid:
		plan.runSQL = true
		plan.runAuto = !prodLike
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
	return plan, nil
}

func schemaPolicy(cfg *config.Config) (runSQL bool, runAuto bool, err error) {
	plan, err := planSchema(cfg)
	return plan.runSQL, plan.runAuto, err
}

// MissingConstraints lists the RequiredConstraints the database does not have. A missing
// table counts as missing constraints.
func MissingConstraints(ctx context.Context, db *gorm.DB) ([]string, error) {
	m := db.WithContext(ctx).Migrator()
	var missing []string
	for _, c := range RequiredConstraints {
		if !m.HasTable(c.Table) {
			missing = append(missing, c.String())
			continue
		}
		if c.Index != "" {
			if !m.HasIndex(c.Table, c.Index) {
				missing = append(missing, c.String())
			}
			continue
		}
		ok, err := hasPrimaryKey(m, c.Table, c.Columns)
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", c.Table, err)
		}
		if !ok {
			missing = append(missing, c.String())
		}
	}
	return missing, nil
}

func hasPrimaryKey(m gorm.Migrator, table string, columns []string) (bool, error) {
	types, err := m.ColumnTypes(table)
	if err != nil {
		return false, err
	}
	pk := make(map[string]bool, len(types))
	for _, ct := range types {
		if isPK, ok := ct.PrimaryKey(); ok && isPK {
			pk[ct.Name()] = true
		}
	}
	if len(pk) != len(columns) {
		return false, nil
	}
	for _, col := range columns {
		if !pk[col] {
			return false, nil
		}
	}
	return true, nil
}

// ApplySchema brings the schema up to date according to DB_SCHEMA_MODE and fails when a
// required uniqueness constraint is still missing afterwards.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := planSchema(cfg)
	if err != nil {
		return err
	}

	if plan.runSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.runAuto {
		if plan.mode == SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
			middleware.Logger.Warn("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true set for DB_SCHEMA_MODE=auto; review schema diffs before production deployment")
		}
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", plan.mode), slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	missing, err := MissingConstraints(ctx, db)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema is missing required constraints: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetSchemaStatus reports what ApplySchema would do without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := planSchema(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               plan.mode,
		Environment:        cfg.Env,
		WillRunSQL:         plan.runSQL,
		WillRunAutoMigrate: plan.runAuto,
	}

	if plan.runSQL {
		logs, err := appliedMigrations(ctx, db)
		if err != nil {
			return nil, err
		}
		status.AppliedVersions = appliedVersions(logs)
		status.PendingMigrations = pendingMigrations(migrations, status.AppliedVersions)
	}

	if status.MissingConstraints, err = MissingConstraints(ctx, db); err != nil {
		return nil, err
	}
	return status, nil
}
