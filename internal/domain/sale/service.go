package sale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/cart"
	"gophregister/internal/domain/shift"
	"gophregister/internal/utils/validate"
)

// Servicer оплата корзин и чтение продаж
type Servicer interface {
	// Checkout превращает корзину стола в продажу текущей смены
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	Get(ctx context.Context, id string) (*Sale, error)
	ListByShift(ctx context.Context, shiftID string) ([]Sale, error)
}

// Service оплата корзин
type Service struct {
	repo   Repository
	carts  Carts
	shifts Shifts
	log    *slog.Logger
	now    func() time.Time
}

// NewService создает сервис продаж
func NewService(repo Repository, carts Carts, shifts Shifts, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   repo,
		carts:  carts,
		shifts: shifts,
		log:    log.With(slog.String("component", "sale")),
		now:    now,
	}
}

// Checkout закрепляет корзину стола, пишет продажу и удаляет заказ
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
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

	c, err := s.carts.Claim(req.TableID)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrCartNotFound):
			return nil, ErrEmptyCart
		case errors.Is(err, cart.ErrCheckoutInProgress):
			return nil, ErrCheckoutBusy
		}
		return nil, err
	}
	created := false
	defer func() {
		if !created {
			s.carts.Release(req.TableID)
		}
	}()
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	sale := &Sale{
		ID:             uuid.NewString(),
		BranchID:       req.BranchID,
		ShiftID:        current.ID,
		OperatorID:     req.OperatorID,
		TableID:        req.TableID,
		PaymentMethod:  req.PaymentMethod,
		TipAmount:      req.TipAmount,
		DiscountAmount: req.Discount,
		Diners:         req.Diners,
		CreatedAt:      s.now().UTC(),
	}
	if sale.Diners == 0 {
		sale.Diners = c.Diners
	}
	if sale.OperatorID == "" {
		sale.OperatorID = current.OperatorID
	}

	for _, l := range c.Lines {
		sale.Items = append(sale.Items, Item{
			ID:         uuid.NewString(),
			SaleID:     sale.ID,
			ProductID:  l.ProductID,
			Name:       l.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.Total(),
		})
	}

	subtotal := sale.Subtotal()
	if req.Discount.GreaterThan(subtotal) {
		return nil, ErrInvalidDiscount
	}
	sale.TotalAmount = subtotal.Sub(req.Discount)

	if err := s.repo.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	created = true

	s.log.Info("Продажа создана",
		slog.String("sale_id", sale.ID),
		slog.String("shift_id", sale.ShiftID),
		slog.String("total", sale.TotalAmount.String()),
		slog.String("payment_method", sale.PaymentMethod),
	)

	result := &CheckoutResult{Sale: sale}
	if err := s.carts.Finalize(ctx, req.TableID); err != nil {
		s.log.Error("Продажа записана, но заказ стола не удален",
			slog.String("sale_id", sale.ID),
			slog.String("table_id", req.TableID),
			slog.Any("error", err),
		)
		result.FinalizeError = err.Error()
	}

	return result, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Sale, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByShift(ctx context.Context, shiftID string) ([]Sale, error) {
	return s.repo.ListByShift(ctx, shiftID)
}
