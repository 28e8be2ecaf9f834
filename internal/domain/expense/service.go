package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/shift"
	"gophregister/internal/utils/validate"
)

type Servicer interface {
	Create(ctx context.Context, req CreateRequest) (*Expense, error)
	Delete(ctx context.Context, id string) error
	ListByShift(ctx context.Context, shiftID string) ([]Expense, error)
}

// Service расходы из кассы
type Service struct {
	repo   Repository
	shifts Shifts
	log    *slog.Logger
	now    func() time.Time
}

// NewService создает сервис расходов
func NewService(repo Repository, shifts Shifts, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   repo,
		shifts: shifts,
		log:    log.With(slog.String("component", "expense")),
		now:    now,
	}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Expense, error) {
	if err := validate.Struct(req); err != nil {
		switch validate.FirstField(err) {
		case "BranchID":
			return nil, ErrNoBranch
		case "Amount":
			return nil, ErrInvalidAmount
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	current, err := s.shifts.Current(ctx, req.BranchID)
	if err != nil {
		if errors.Is(err, shift.ErrNoOpenShift) {
			return nil, ErrNoOpenShift
		}
		return nil, fmt.Errorf("current shift: %w", err)
	}

	e := &Expense{
		ID:          uuid.NewString(),
		BranchID:    req.BranchID,
		ShiftID:     current.ID,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		Voucher:     req.Voucher,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.log.Info("Расход записан",
		slog.String("expense_id", e.ID),
		slog.String("amount", e.Amount.String()),
	)
	return e, nil
}

// Delete удаляет расход, пока он не выгружен в облако
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrExpenseNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("Расход удален", slog.String("expense_id", id))
	return nil
}

func (s *Service) ListByShift(ctx context.Context, shiftID string) ([]Expense, error) {
	return s.repo.ListByShift(ctx, shiftID)
}
