package shift

import (
	"sort"
	"sync"
	"time"
)

const dayLayout = "2006-01-02"

// Пункты чек-листа закрытия кассы
const (
	CheckCashCounted    = "cash_counted"
	CheckTerminalClosed = "terminal_closed"
	CheckKitchenClosed  = "kitchen_closed"
	CheckTablesCleared  = "tables_cleared"
)

var checklistItems = []string{
	CheckCashCounted,
	CheckTerminalClosed,
	CheckKitchenClosed,
	CheckTablesCleared,
}

// ChecklistState сохраняемое состояние чек-листа закрытия
type ChecklistState struct {
	Items       []string   `json:"items"`
	ClosedOn    string     `json:"closed_on,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Checklist чек-лист закрытия кассы. Завершенный чек-лист блокирует
// добавление товаров до конца текущего дня или до открытия новой смены.
type Checklist struct {
	mu       sync.Mutex
	state    ChecklistState
	now      func() time.Time
	onChange func(ChecklistState)
}

// NewChecklist создает чек-лист закрытия из сохраненного состояния
func NewChecklist(state ChecklistState, now func() time.Time, onChange func(ChecklistState)) *Checklist {
	if now == nil {
		now = time.Now
	}
	return &Checklist{
		state:    state,
		now:      now,
		onChange: onChange,
	}
}

// Items все пункты чек-листа
func Items() []string {
	out := make([]string, len(checklistItems))
	copy(out, checklistItems)
	return out
}

// Mark отмечает или снимает отметку с пункта
func (c *Checklist) Mark(item string, done bool) (ChecklistState, error) {
	if !known(item) {
		return ChecklistState{}, ErrUnknownChecklist
	}

	c.mu.Lock()
	items := make(map[string]bool, len(c.state.Items)+1)
	for _, i := range c.state.Items {
		items[i] = true
	}
	if done {
		items[item] = true
	} else {
		delete(items, item)
	}
	c.state.Items = keys(items)
	st := c.copyState()
	c.mu.Unlock()

	c.changed(st)
	return st, nil
}

// Complete завершает чек-лист и включает блокировку кассы на сегодня
func (c *Checklist) Complete() (ChecklistState, error) {
	c.mu.Lock()
	done := make(map[string]bool, len(c.state.Items))
	for _, i := range c.state.Items {
		done[i] = true
	}
	for _, i := range checklistItems {
		if !done[i] {
			c.mu.Unlock()
			return ChecklistState{}, ErrChecklistIncomplete
		}
	}

	now := c.now()
	c.state.ClosedOn = now.Format(dayLayout)
	c.state.CompletedAt = &now
	c.state.Items = nil
	st := c.copyState()
	c.mu.Unlock()

	c.changed(st)
	return st, nil
}

// ClearProgress сбрасывает незавершенные отметки, блокировка остается
func (c *Checklist) ClearProgress() {
	c.mu.Lock()
	c.state.Items = nil
	st := c.copyState()
	c.mu.Unlock()

	c.changed(st)
}

// Reset снимает блокировку дня, вызывается при открытии смены
func (c *Checklist) Reset() {
	c.mu.Lock()
	c.state = ChecklistState{}
	st := c.copyState()
	c.mu.Unlock()

	c.changed(st)
}

// Locked true, если чек-лист закрытия уже пройден сегодня
func (c *Checklist) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ClosedOn != "" && c.state.ClosedOn == c.now().Format(dayLayout)
}

func (c *Checklist) State() ChecklistState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyState()
}

func (c *Checklist) copyState() ChecklistState {
	st := c.state
	if c.state.Items != nil {
		st.Items = append([]string(nil), c.state.Items...)
	}
	return st
}

func (c *Checklist) changed(st ChecklistState) {
	if c.onChange != nil {
		c.onChange(st)
	}
}

func known(item string) bool {
	for _, i := range checklistItems {
		if i == item {
			return true
		}
	}
	return false
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
