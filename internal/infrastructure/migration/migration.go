// Package migration applies the embedded goose scripts for the configured
// database driver.
package migration

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/orris-inc/zlpay/internal/shared/logger"
)

//go:embed scripts
var scripts embed.FS

// Status is one row of the migration status report.
type Status struct {
	Version int64
	Name    string
	Applied bool
}

// GooseMigrator runs versioned SQL migrations.
type GooseMigrator struct {
	provider *goose.Provider
	logger   logger.Interface
}

// NewGooseMigrator picks the script directory matching driver.
func NewGooseMigrator(db *gorm.DB, driver string, log logger.Interface) (*GooseMigrator, error) {
	dialect, dir, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	fsys, err := fs.Sub(scripts, "scripts/"+dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s scripts: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}

	return &GooseMigrator{
		provider: provider,
		logger:   log.With("component", "migration.goose", "dialect", string(dialect)),
	}, nil
}

func dialectFor(driver string) (goose.Dialect, string, error) {
	switch driver {
	case "mysql", "":
		return goose.DialectMySQL, "mysql", nil
	case "postgres":
		return goose.DialectPostgres, "postgres", nil
	case "sqlite":
		return goose.DialectSQLite3, "sqlite", nil
	default:
		return "", "", fmt.Errorf("no migrations for database driver %q", driver)
	}
}

// Up applies every pending migration.
func (m *GooseMigrator) Up(ctx context.Context) error {
	from, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	results, err := m.provider.Up(ctx)
	if err != nil {
		m.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	to, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get final version: %w", err)
	}

	m.logger.Infow("migrations applied",
		"from_version", from,
		"to_version", to,
		"applied", len(results))
	return nil
}

// Down rolls back steps migrations, stopping early at version zero.
func (m *GooseMigrator) Down(ctx context.Context, steps int) error {
	for i := 0; i < steps; i++ {
		version, err := m.Version(ctx)
		if err != nil {
			return err
		}
		if version == 0 {
			break
		}

		result, err := m.provider.Down(ctx)
		if err != nil {
			m.logger.Errorw("down migration failed", "error", err)
			return fmt.Errorf("failed to run down migration: %w", err)
		}
		m.logger.Infow("migration rolled back", "version", result.Source.Version)
	}
	return nil
}

func (m *GooseMigrator) Version(ctx context.Context) (int64, error) {
	version, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

func (m *GooseMigrator) Status(ctx context.Context) ([]Status, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	out := make([]Status, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Status{
			Version: s.Source.Version,
			Name:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

// HasPending reports whether the schema is behind the embedded scripts.
func (m *GooseMigrator) HasPending(ctx context.Context) (bool, error) {
	pending, err := m.provider.HasPending(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check pending migrations: %w", err)
	}
	return pending, nil
}
