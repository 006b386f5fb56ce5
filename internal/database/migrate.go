package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// Status is the schema version recorded in schema_migrations.
type Status struct {
	Version uint
	Latest  uint
	Dirty   bool
}

// Pending reports whether embedded migrations remain to be applied.
func (s Status) Pending() bool {
	return !s.Dirty && s.Version < s.Latest
}

func (s Status) String() string {
	state := "clean"
	switch {
	case s.Dirty:
		state = "dirty"
	case s.Pending():
		state = "pending"
	}
	return fmt.Sprintf("version %d of %d (%s)", s.Version, s.Latest, state)
}

// Migrator applies the embedded rollcall schema.
type Migrator struct {
	m      *migrate.Migrate
	latest uint
}

// NewMigrator wraps db. A nil logger keeps golang-migrate silent.
func NewMigrator(db *sql.DB, dbName string, logger *slog.Logger) (*Migrator, error) {
	src, err := iofs.New(schemaFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load embedded schema: %w", err)
	}
	latest, err := latestVersion(src)
	if err != nil {
		return nil, err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: dbName})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dbName, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	if logger != nil {
		m.Log = &migrateLogger{logger: logger.With("component", "migrate")}
	}

	return &Migrator{m: m, latest: latest}, nil
}

func latestVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("read first migration: %w", err)
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read migration after %d: %w", v, err)
		}
		v = next
	}
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (m *Migrator) Up() (Status, error) {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Status{}, fmt.Errorf("apply migrations: %w", err)
	}
	return m.Status()
}

// Down rolls back steps migrations, at least one.
func (m *Migrator) Down(steps int) (Status, error) {
	if steps < 1 {
		steps = 1
	}
	if err := m.m.Steps(-steps); err != nil {
		return Status{}, fmt.Errorf("roll back %d migrations: %w", steps, err)
	}
	return m.Status()
}

// Force records version as applied and clean without running anything.
func (m *Migrator) Force(version int) (Status, error) {
	if version < 0 || uint(version) > m.latest {
		return Status{}, fmt.Errorf("force version %d: outside 0..%d", version, m.latest)
	}
	if err := m.m.Force(version); err != nil {
		return Status{}, fmt.Errorf("force version %d: %w", version, err)
	}
	return m.Status()
}

func (m *Migrator) Status() (Status, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{Latest: m.latest}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("read schema version: %w", err)
	}
	return Status{Version: version, Latest: m.latest, Dirty: dirty}, nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// MigrateUp opens dsn, applies pending migrations and releases the
// connection. The API and CLI call it when the postgres driver is selected.
func MigrateUp(dsn, dbName string, logger *slog.Logger) error {
	db, err := NewPool(DefaultPoolConfig(dsn))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	migrator, err := NewMigrator(db, dbName, logger)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	status, err := migrator.Up()
	if err != nil {
		return err
	}
	if logger != nil {
		logger.Info("schema ready", "status", status.String())
	}
	return nil
}

// migrateLogger adapts slog to migrate.Logger.
type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool {
	return false
}
