package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"
)

var ErrWriterClosed = errors.New("sqlite writer is closed")

// Writer единственный владелец записи в базу. Задачи выполняются
// по одной в порядке постановки, каждая в своей транзакции.
type Writer struct {
	db      *sqlx.DB
	queue   *jobQueue
	log     *slog.Logger
	stopped chan struct{}
}

func NewWriter(db *sqlx.DB, log *slog.Logger) *Writer {
	w := &Writer{
		db:      db,
		queue:   newJobQueue(),
		log:     log,
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// Do ставит fn в очередь и ждет результата. fn работает только через tx
// и не должен сам вызывать Do.
func (w *Writer) Do(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	j := &job{ctx: ctx, fn: fn, done: make(chan error, 1)}
	if !w.queue.Enqueue(j) {
		return ErrWriterClosed
	}

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		if j.abandon() {
			return ctx.Err()
		}
		// задача уже в транзакции: ее результат и есть ответ
		return <-j.done
	}
}

// Pending число задач, ожидающих выполнения
func (w *Writer) Pending() int {
	return w.queue.Len()
}

// Close перестает принимать задачи и дожидается уже поставленных
func (w *Writer) Close() {
	w.queue.Close()
	<-w.stopped
}

func (w *Writer) run() {
	defer close(w.stopped)

	for {
		if j, ok := w.queue.TryDequeue(); ok {
			j.done <- w.exec(j)
			continue
		}
		if _, ok := <-w.queue.Wait(); !ok {
			for {
				j, ok := w.queue.TryDequeue()
				if !ok {
					return
				}
				j.done <- w.exec(j)
			}
		}
	}
}

func (w *Writer) exec(j *job) (err error) {
	if !j.start() {
		return j.ctx.Err()
	}
	if err := j.ctx.Err(); err != nil {
		return err
	}

	tx, err := w.db.BeginTxx(j.ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			w.log.Error("Паника в задаче записи", slog.Any("panic", p))
			err = fmt.Errorf("write job panic: %v", p)
		}
	}()

	if err := j.fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			w.log.Error("Ошибка отката транзакции", slog.Any("error", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
