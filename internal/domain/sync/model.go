package sync

import (
	"time"

	"gophregister/internal/domain/cart"
	"gophregister/internal/domain/catalog"
	"gophregister/internal/domain/delivery"
	"gophregister/internal/domain/expense"
	"gophregister/internal/domain/sale"
	"gophregister/internal/domain/shift"
)

// Сущности пакета выгрузки, по которым облако возвращает подтверждения
const (
	EntityShifts     = "shifts"
	EntitySales      = "sales"
	EntityExpenses   = "expenses"
	EntityDeliveries = "deliveries"
	EntityClients    = "clients"
)

// Entities порядок сущностей в пакете выгрузки
var Entities = []string{EntityShifts, EntitySales, EntityExpenses, EntityDeliveries, EntityClients}

// Snapshot ответ облака на загрузку филиала
type Snapshot struct {
	Products        []catalog.Product        `json:"products"`
	Profiles        []catalog.Profile        `json:"profiles"`
	Branches        []catalog.Branch         `json:"branches"`
	Tables          []catalog.Table          `json:"tables"`
	Expenses        []expense.Expense        `json:"expenses"`
	Sales           []sale.Sale              `json:"sales"`
	Deliveries      []delivery.Delivery      `json:"deliveries"`
	RappiDeliveries []delivery.RappiDelivery `json:"rappi_deliveries"`
}

// Batch локальные изменения филиала для выгрузки.
// Служебные поля моделей в JSON не попадают.
type Batch struct {
	BranchID   string              `json:"branch_id"`
	Shifts     []shift.Shift       `json:"shifts"`
	Sales      []sale.Sale         `json:"sales"`
	Expenses   []expense.Expense   `json:"expenses"`
	Orders     []cart.PendingOrder `json:"orders"`
	Deliveries []delivery.Delivery `json:"deliveries"`
	Clients    []delivery.Client   `json:"clients"`

	// Revisions ревизии строк на момент сборки пакета: сущность -> id -> ревизия
	Revisions map[string]map[string]int64 `json:"-"`
}

// Ack подтверждение строки, привязанное к отправленной ревизии
type Ack struct {
	ID       string
	Revision int64
}

// SetRevision запоминает ревизию отправляемой строки
func (b *Batch) SetRevision(entity, id string, revision int64) {
	if b.Revisions == nil {
		b.Revisions = make(map[string]map[string]int64)
	}
	if b.Revisions[entity] == nil {
		b.Revisions[entity] = make(map[string]int64)
	}
	b.Revisions[entity][id] = revision
}

// Acks подтверждения для ids с ревизиями из пакета
func (b *Batch) Acks(entity string, ids []string) []Ack {
	acks := make([]Ack, 0, len(ids))
	for _, id := range ids {
		acks = append(acks, Ack{ID: id, Revision: b.Revisions[entity][id]})
	}
	return acks
}

// IDs идентификаторы строк сущности в порядке отправки
func (b *Batch) IDs(entity string) []string {
	var ids []string
	switch entity {
	case EntityShifts:
		for _, s := range b.Shifts {
			ids = append(ids, s.ID)
		}
	case EntitySales:
		for _, s := range b.Sales {
			ids = append(ids, s.ID)
		}
	case EntityExpenses:
		for _, e := range b.Expenses {
			ids = append(ids, e.ID)
		}
	case EntityDeliveries:
		for _, d := range b.Deliveries {
			ids = append(ids, d.ID)
		}
	case EntityClients:
		for _, c := range b.Clients {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Dirty количество строк, ожидающих подтверждения
func (b *Batch) Dirty() int {
	n := 0
	for _, e := range Entities {
		n += len(b.IDs(e))
	}
	return n
}

type EntityResult struct {
	Success int      `json:"success"`
	IDs     []string `json:"ids,omitempty"`
}

type PushResponse struct {
	Results map[string]EntityResult `json:"results"`
}

// ApplyStats итог применения снимка к локальной базе
type ApplyStats struct {
	Upserted     int
	SkippedDirty int
	KeptStock    int
	Relinked     int
}

// Status состояние синхронизации для экрана диагностики
type Status struct {
	BranchID   string         `json:"branch_id"`
	LastPullAt *time.Time     `json:"last_pull_at,omitempty"`
	LastPushAt *time.Time     `json:"last_push_at,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
	Pending    map[string]int `json:"pending"`
}
