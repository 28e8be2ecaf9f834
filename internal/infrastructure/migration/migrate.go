package migration

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	// драйвер sqlite3 для migrate
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var schema embed.FS

// Migrator часть migrate.Migrate, нужная для накатки схемы
type Migrator interface {
	Up() error
	Version() (version uint, dirty bool, err error)
	Close() (error, error)
}

// Engine открывает мигратор по URL базы. В тестах подменяется моком.
type Engine func(databaseURL string) (Migrator, error)

type Migration struct {
	dbPath string
	engine Engine
}

func NewMigration(dbPath string, engine Engine) *Migration {
	return &Migration{
		dbPath: dbPath,
		engine: engine,
	}
}

// EmbeddedEngine мигратор со схемой кассы, вшитой в бинарник
func EmbeddedEngine(databaseURL string) (Migrator, error) {
	source, err := iofs.New(schema, "sql")
	if err != nil {
		return nil, fmt.Errorf("open embedded schema: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", source, databaseURL)
}

// Up накатывает схему и возвращает ее версию. Грязная версия после
// прерванной миграции считается ошибкой.
func (mg *Migration) Up() (version uint, err error) {
	m, err := mg.engine("sqlite3://" + mg.dbPath + "?_foreign_keys=on")
	if err != nil {
		return 0, err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		err = errors.Join(err, srcErr, dbErr)
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("schema up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
