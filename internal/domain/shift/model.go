package shift

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

type ClosedBy string

const (
	ClosedByLocal  ClosedBy = "local"
	ClosedByRemote ClosedBy = "remote"
)

type TurnType string

const (
	TurnMorning   TurnType = "morning"
	TurnAfternoon TurnType = "afternoon"
	TurnSingle    TurnType = "single"
)

const (
	morningStartHour   = 6
	afternoonStartHour = 14
	afternoonEndHour   = 23
)

// Shift кассовая смена. Закрытая смена больше не открывается.
type Shift struct {
	ID            string              `db:"id" json:"id"`
	BranchID      string              `db:"branch_id" json:"branch_id"`
	OperatorID    string              `db:"operator_id" json:"operator_id"`
	StartTime     time.Time           `db:"start_time" json:"start_time"`
	EndTime       *time.Time          `db:"end_time" json:"end_time,omitempty"`
	InitialCash   decimal.Decimal     `db:"initial_cash" json:"initial_cash"`
	FinalCash     decimal.NullDecimal `db:"final_cash" json:"final_cash"`
	ExpectedCash  decimal.NullDecimal `db:"expected_cash" json:"expected_cash"`
	TurnType      TurnType            `db:"turn_type" json:"turn_type"`
	Status        Status              `db:"status" json:"status"`
	ClosedBy      ClosedBy            `db:"closed_by_method" json:"closed_by_method,omitempty"`
	LastHeartbeat *time.Time          `db:"last_heartbeat" json:"last_heartbeat,omitempty"`
	Synced        bool                `db:"synced" json:"-"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
}

func (s *Shift) IsOpen() bool {
	return s.Status == StatusOpen
}

// Totals сводка продаж и расходов смены для расчета ожидаемой наличности
type Totals struct {
	CashSales  decimal.Decimal `db:"cash_sales" json:"cash_sales"`
	OtherSales decimal.Decimal `db:"other_sales" json:"other_sales"`
	Tips       decimal.Decimal `db:"tips" json:"tips"`
	Expenses   decimal.Decimal `db:"expenses" json:"expenses"`
	SalesCount int             `db:"sales_count" json:"sales_count"`
}

// Closing данные закрытия смены
type Closing struct {
	ShiftID      string
	EndTime      time.Time
	FinalCash    decimal.Decimal
	ExpectedCash decimal.Decimal
	ClosedBy     ClosedBy
}

// TurnTypeAt определяет тип смены по часу открытия
func TurnTypeAt(t time.Time) TurnType {
	h := t.Hour()
	switch {
	case h >= morningStartHour && h < afternoonStartHour:
		return TurnMorning
	case h >= afternoonStartHour && h < afternoonEndHour:
		return TurnAfternoon
	default:
		return TurnSingle
	}
}

// ExpectedCash наличность в кассе: размен + наличные продажи − расходы
func ExpectedCash(initial decimal.Decimal, t Totals) decimal.Decimal {
	return initial.Add(t.CashSales).Sub(t.Expenses)
}
