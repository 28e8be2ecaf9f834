package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"gophregister/internal/infrastructure/migration"
)

const readConns = 4

// Storage локальная база кассы. Все записи идут через Writer,
// чтения выполняются напрямую из пула соединений.
type Storage struct {
	db     *sqlx.DB
	writer *Writer
	log    *slog.Logger
}

func New(path string, log *slog.Logger) (*Storage, error) {
	if path == "" {
		return nil, errors.New("sqlite: empty database path")
	}

	version, err := migration.NewMigration(path, migration.EmbeddedEngine).Up()
	if err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	db, err := sqlx.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	db.SetMaxOpenConns(readConns)
	db.SetMaxIdleConns(readConns)

	log = log.With(slog.String("component", "sqlite"))
	log.Debug("Схема базы актуальна", slog.Uint64("version", uint64(version)))
	return &Storage{
		db:     db,
		writer: NewWriter(db, log),
		log:    log,
	}, nil
}

func dsn(path string) string {
	return "file:" + path +
		"?_foreign_keys=on" +
		"&_journal_mode=WAL" +
		"&_synchronous=NORMAL" +
		"&_busy_timeout=5000" +
		"&_txlock=immediate"
}

// Close дожидается выполнения поставленных записей и закрывает базу
func (s *Storage) Close() error {
	s.writer.Close()
	return s.db.Close()
}

func (s *Storage) DB() *sqlx.DB {
	return s.db
}

func (s *Storage) Writer() *Writer {
	return s.writer
}

func (s *Storage) write(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return s.writer.Do(ctx, fn)
}

func notFound(err, target error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}
