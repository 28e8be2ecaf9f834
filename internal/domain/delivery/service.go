package delivery

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
	CreateClient(ctx context.Context, req CreateClientRequest) (*Client, error)
	Clients(ctx context.Context) ([]Client, error)
	Create(ctx context.Context, req CreateRequest) (*Delivery, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Delivery, error)
	ListByShift(ctx context.Context, shiftID string) ([]Delivery, error)
	Rappi(ctx context.Context, branchID string) ([]RappiDelivery, error)
}

// Service клиенты и доставки
type Service struct {
	repo   Repository
	shifts Shifts
	log    *slog.Logger
	now    func() time.Time
}

// NewService создает сервис доставок
func NewService(repo Repository, shifts Shifts, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   repo,
		shifts: shifts,
		log:    log.With(slog.String("component", "delivery")),
		now:    now,
	}
}

func (s *Service) CreateClient(ctx context.Context, req CreateClientRequest) (*Client, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	now := s.now().UTC()
	c := &Client{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.Info("Клиент создан", slog.String("client_id", c.ID))
	return c, nil
}

func (s *Service) Clients(ctx context.Context) ([]Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Delivery, error) {
	if err := validate.Struct(req); err != nil {
		if validate.FirstField(err) == "BranchID" {
			return nil, ErrNoBranch
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

	if req.ClientID != "" {
		if _, err := s.repo.GetClient(ctx, req.ClientID); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	d := &Delivery{
		ID:        uuid.NewString(),
		BranchID:  req.BranchID,
		ShiftID:   current.ID,
		ClientID:  req.ClientID,
		Address:   req.Address,
		Status:    StatusPending,
		Fee:       req.Fee,
		Total:     req.Total,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}

	s.log.Info("Доставка создана",
		slog.String("delivery_id", d.ID),
		slog.String("total", d.Total.String()),
	)
	return d, nil
}

// UpdateStatus переводит доставку в следующий статус
func (s *Service) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Delivery, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	d, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if d.Status == req.Status {
		return d, nil
	}
	if d.Status.Final() {
		return nil, ErrStatusFinal
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, d.ID, req.Status, now); err != nil {
		return nil, fmt.Errorf("update delivery status: %w", err)
	}

	s.log.Info("Статус доставки изменен",
		slog.String("delivery_id", d.ID),
		slog.String("from", string(d.Status)),
		slog.String("to", string(req.Status)),
	)

	d.Status = req.Status
	d.UpdatedAt = now
	d.Synced = false
	return d, nil
}

func (s *Service) ListByShift(ctx context.Context, shiftID string) ([]Delivery, error) {
	return s.repo.ListByShift(ctx, shiftID)
}

func (s *Service) Rappi(ctx context.Context, branchID string) ([]RappiDelivery, error) {
	return s.repo.ListRappi(ctx, branchID)
}
