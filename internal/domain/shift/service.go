package shift

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"gophregister/internal/utils/validate"
)

// Servicer жизненный цикл кассовой смены
type Servicer interface {
	// Open открывает смену или возвращает уже открытую (retaken)
	Open(ctx context.Context, req OpenRequest) (*OpenResult, error)

	// Heartbeat обновляет только last_heartbeat
	Heartbeat(ctx context.Context, shiftID string) error

	// Close закрывает смену с расчетом ожидаемой наличности
	Close(ctx context.Context, req CloseRequest) (*CloseResult, error)

	// Current возвращает открытую смену филиала
	Current(ctx context.Context, branchID string) (*Shift, error)

	Get(ctx context.Context, shiftID string) (*Shift, error)

	// History последние смены филиала
	History(ctx context.Context, branchID string, limit int) ([]Shift, error)

	// ApplyRemoteClose фиксирует закрытие смены облаком. Повторный вызов ничего не меняет.
	ApplyRemoteClose(ctx context.Context, change Change) (bool, error)
}

// Observer получает уведомления об открытии и закрытии смены
type Observer interface {
	ShiftOpened(ctx context.Context, s *Shift, retaken bool)
	ShiftClosed(ctx context.Context, s *Shift)
}

// Service жизненный цикл смены кассы
type Service struct {
	repo      Repository
	log       *slog.Logger
	now       func() time.Time
	mu        sync.RWMutex
	observers []Observer
}

// NewService создает сервис смен
func NewService(repo Repository, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		log:  log.With(slog.String("component", "shift")),
		now:  now,
	}
}

// Subscribe подписывает наблюдателя на события смены
func (s *Service) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Open открывает смену филиала или возвращает уже открытую
func (s *Service) Open(ctx context.Context, req OpenRequest) (*OpenResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, openValidationError(err)
	}

	local := s.now()
	now := local.UTC()
	candidate := &Shift{
		ID:          uuid.NewString(),
		BranchID:    req.BranchID,
		OperatorID:  req.OperatorID,
		StartTime:   now,
		InitialCash: req.InitialCash,
		TurnType:    TurnTypeAt(local),
		Status:      StatusOpen,
		CreatedAt:   now,
	}

	sh, retaken, err := s.repo.OpenOrGet(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("open shift: %w", err)
	}

	result := &OpenResult{Shift: sh, Retaken: retaken}
	if retaken {
		result.Message = "shift already open, resumed"
		s.log.Info("Смена уже открыта, продолжаем", slog.String("shift_id", sh.ID))
	} else {
		s.log.Info("Смена открыта",
			slog.String("shift_id", sh.ID),
			slog.String("branch_id", sh.BranchID),
			slog.String("turn_type", string(sh.TurnType)),
		)
	}

	for _, o := range s.snapshotObservers() {
		o.ShiftOpened(ctx, sh, retaken)
	}

	return result, nil
}

func openValidationError(err error) error {
	switch validate.FirstField(err) {
	case "BranchID":
		return ErrBranchRequired
	case "InitialCash":
		return ErrInvalidCash
	}
	return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
}

// Heartbeat отмечает, что касса со сменой жива
func (s *Service) Heartbeat(ctx context.Context, shiftID string) error {
	if shiftID == "" {
		return ErrShiftNotFound
	}
	if err := s.repo.Touch(ctx, shiftID, s.now().UTC()); err != nil {
		return fmt.Errorf("heartbeat %s: %w", shiftID, err)
	}
	return nil
}

// Close закрывает смену и считает ожидаемую наличность
func (s *Service) Close(ctx context.Context, req CloseRequest) (*CloseResult, error) {
	if err := validate.Struct(req); err != nil {
		if validate.FirstField(err) == "ShiftID" {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	sh, err := s.repo.GetByID(ctx, req.ShiftID)
	if err != nil {
		return nil, err
	}
	if !sh.IsOpen() {
		return nil, ErrShiftClosed
	}

	totals, err := s.repo.Totals(ctx, sh.ID)
	if err != nil {
		return nil, fmt.Errorf("shift totals: %w", err)
	}

	closing := &Closing{
		ShiftID:      sh.ID,
		EndTime:      s.now().UTC(),
		FinalCash:    req.FinalCash,
		ExpectedCash: ExpectedCash(sh.InitialCash, *totals),
		ClosedBy:     ClosedByLocal,
	}

	if err := s.repo.Close(ctx, closing); err != nil {
		return nil, fmt.Errorf("close shift: %w", err)
	}

	closed, err := s.repo.GetByID(ctx, sh.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Смена закрыта",
		slog.String("shift_id", closed.ID),
		slog.String("expected_cash", closing.ExpectedCash.String()),
		slog.String("final_cash", closing.FinalCash.String()),
	)

	for _, o := range s.snapshotObservers() {
		o.ShiftClosed(ctx, closed)
	}

	return &CloseResult{Shift: closed, Totals: *totals}, nil
}

// Current открытая смена филиала
func (s *Service) Current(ctx context.Context, branchID string) (*Shift, error) {
	if branchID == "" {
		return nil, ErrBranchRequired
	}
	return s.repo.GetOpen(ctx, branchID)
}

func (s *Service) Get(ctx context.Context, shiftID string) (*Shift, error) {
	return s.repo.GetByID(ctx, shiftID)
}

const defaultHistoryLimit = 20

func (s *Service) History(ctx context.Context, branchID string, limit int) ([]Shift, error) {
	if branchID == "" {
		return nil, ErrBranchRequired
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.repo.ListRecent(ctx, branchID, limit)
}

// ApplyRemoteClose применяет закрытие смены из облака. Повторный вызов ничего не меняет
func (s *Service) ApplyRemoteClose(ctx context.Context, change Change) (bool, error) {
	if !change.IsRemoteClose() {
		return false, nil
	}

	end := s.now().UTC()
	if change.EndTime != nil {
		end = change.EndTime.UTC()
	}

	changed, err := s.repo.MarkClosedRemotely(ctx, change.ID, end)
	if err != nil {
		if errors.Is(err, ErrShiftNotFound) {
			s.log.Warn("Удаленное закрытие неизвестной смены", slog.String("shift_id", change.ID))
		}
		return false, err
	}

	if changed {
		s.log.Warn("Смена закрыта удаленно", slog.String("shift_id", change.ID))
	}
	return changed, nil
}

func (s *Service) snapshotObservers() []Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Observer, len(s.observers))
	copy(out, s.observers)
	return out
}
