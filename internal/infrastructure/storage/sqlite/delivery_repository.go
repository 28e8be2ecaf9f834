package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/delivery"
)

const (
	clientColumns   = `id, name, phone, address, synced, created_at, updated_at`
	deliveryColumns = `id, branch_id, shift_id, client_id, address, status, fee, total, synced, created_at, updated_at`
	rappiColumns    = `id, branch_id, order_ref, status, total, created_at, updated_at`
)

type DeliveryRepository struct {
	s   *Storage
	log *slog.Logger
}

func NewDeliveryRepository(s *Storage, log *slog.Logger) *DeliveryRepository {
	return &DeliveryRepository{
		s:   s,
		log: log.With(slog.String("component", "delivery_repository")),
	}
}

func (r *DeliveryRepository) CreateClient(ctx context.Context, c *delivery.Client) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO clients (`+clientColumns+`)
			VALUES (:id, :name, :phone, :address, 0, :created_at, :updated_at)`, c)
		if err != nil {
			return fmt.Errorf("insert client: %w", err)
		}
		return nil
	})
}

func (r *DeliveryRepository) GetClient(ctx context.Context, id string) (*delivery.Client, error) {
	var c delivery.Client
	if err := r.s.db.GetContext(ctx, &c, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id); err != nil {
		return nil, notFound(err, delivery.ErrClientNotFound)
	}
	return &c, nil
}

func (r *DeliveryRepository) ListClients(ctx context.Context) ([]delivery.Client, error) {
	var out []delivery.Client
	if err := r.s.db.SelectContext(ctx, &out, `SELECT `+clientColumns+` FROM clients ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return out, nil
}

func (r *DeliveryRepository) Create(ctx context.Context, d *delivery.Delivery) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO deliveries (`+deliveryColumns+`)
			VALUES (:id, :branch_id, :shift_id, :client_id, :address, :status, :fee, :total, 0,
			        :created_at, :updated_at)`, d)
		if err != nil {
			return fmt.Errorf("insert delivery: %w", err)
		}
		return nil
	})
}

func (r *DeliveryRepository) GetByID(ctx context.Context, id string) (*delivery.Delivery, error) {
	var d delivery.Delivery
	if err := r.s.db.GetContext(ctx, &d, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = ?`, id); err != nil {
		return nil, notFound(err, delivery.ErrDeliveryNotFound)
	}
	return &d, nil
}

func (r *DeliveryRepository) UpdateStatus(ctx context.Context, id string, status delivery.Status, at time.Time) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE deliveries SET status = ?, updated_at = ?, synced = 0, revision = revision + 1 WHERE id = ?`, status, at, id)
		if err != nil {
			return fmt.Errorf("update delivery status: %w", err)
		}
		return requireRow(res, delivery.ErrDeliveryNotFound)
	})
}

func (r *DeliveryRepository) ListByShift(ctx context.Context, shiftID string) ([]delivery.Delivery, error) {
	var out []delivery.Delivery
	err := r.s.db.SelectContext(ctx, &out,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE shift_id = ? ORDER BY created_at`, shiftID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	return out, nil
}

func (r *DeliveryRepository) ListRappi(ctx context.Context, branchID string) ([]delivery.RappiDelivery, error) {
	var out []delivery.RappiDelivery
	err := r.s.db.SelectContext(ctx, &out,
		`SELECT `+rappiColumns+` FROM rappi_deliveries WHERE branch_id = ? ORDER BY created_at DESC`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list rappi deliveries: %w", err)
	}
	return out, nil
}
