package sqlite

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
)

// Состояния задачи: ожидающую задачу вызывающий может бросить,
// запущенную дожидается до конца.
const (
	jobQueued int32 = iota
	jobRunning
	jobAbandoned
)

type job struct {
	ctx   context.Context
	fn    func(tx *sqlx.Tx) error
	done  chan error
	state atomic.Int32
}

// start переводит задачу в выполнение, если ее еще не бросили
func (j *job) start() bool {
	return j.state.CompareAndSwap(jobQueued, jobRunning)
}

// abandon снимает задачу, пока она не начала выполняться
func (j *job) abandon() bool {
	return j.state.CompareAndSwap(jobQueued, jobAbandoned)
}

// jobQueue неограниченная FIFO-очередь записей. Сигнальный канал
// с буфером 1 склеивает уведомления и закрывается вместе с очередью.
type jobQueue struct {
	mu     sync.Mutex
	jobs   []*job
	closed bool
	signal chan struct{}
}

func newJobQueue() *jobQueue {
	return &jobQueue{
		jobs:   make([]*job, 0, 32),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue возвращает false, если очередь закрыта
func (q *jobQueue) Enqueue(j *job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.jobs = append(q.jobs, j)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

func (q *jobQueue) TryDequeue() (*job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return nil, false
	}

	j := q.jobs[0]
	q.jobs[0] = nil
	if len(q.jobs) == 1 {
		q.jobs = q.jobs[:0]
	} else {
		q.jobs = q.jobs[1:]
	}
	return j, true
}

// Wait сигнализирует о возможном появлении задач; закрыт после Close
func (q *jobQueue) Wait() <-chan struct{} {
	return q.signal
}

func (q *jobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *jobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
