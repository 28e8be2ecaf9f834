package monitor

import (
	"sync"
	"time"
)

const defaultNoticeLimit = 50

type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Notice сообщение для оператора
type Notice struct {
	At      time.Time `json:"at"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// Notices ограниченный журнал сообщений оператору. Старые вытесняются новыми.
type Notices struct {
	mu    sync.Mutex
	items []Notice
	limit int
	now   func() time.Time
}

// NewNotices создает журнал предупреждений на limit записей
func NewNotices(limit int, now func() time.Time) *Notices {
	if limit <= 0 {
		limit = defaultNoticeLimit
	}
	if now == nil {
		now = time.Now
	}
	return &Notices{limit: limit, now: now}
}

func (n *Notices) Warn(msg string) {
	n.add(LevelWarn, msg)
}

func (n *Notices) Info(msg string) {
	n.add(LevelInfo, msg)
}

func (n *Notices) add(level Level, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.items = append(n.items, Notice{At: n.now().UTC(), Level: level, Message: msg})
	if over := len(n.items) - n.limit; over > 0 {
		n.items = append([]Notice(nil), n.items[over:]...)
	}
}

// List сообщения от старых к новым
func (n *Notices) List() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.items...)
}

func (n *Notices) Clear() {
	n.mu.Lock()
	n.items = nil
	n.mu.Unlock()
}
