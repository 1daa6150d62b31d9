package orderrepo

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
//
// The two update methods are guarded writes: each UPDATE carries the state
// predicate it expects, so a row mutated by a concurrent actor matches zero
// rows and the caller gets errs.ErrObjectChanged instead of a lost update.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByPaymentIntentID retrieves the order correlated to a provider payment intent.
func (r *GormOrderRepository) GetByPaymentIntentID(ctx context.Context, intentID string) (*order.Order, error) {
	if intentID == "" {
		return nil, errs.NewValueIsRequiredError("paymentIntentId")
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "payment_intent_id = ?", intentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", intentID)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllDispatchPending retrieves all approved orders still pending courier
// assignment, ordered by ID for a stable scan order. Rows that fail domain
// reconstruction are skipped; the error return is for store failures only.
func (r *GormOrderRepository) GetAllDispatchPending(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("admin_status = ? AND dispatch_status = ?", order.AdminApproved, order.DispatchPending).
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			// A row that does not reconstruct into a valid aggregate, such
			// as an out-of-range coordinate written by an external mutator,
			// is ineligible for this cycle rather than fatal to it.
			continue
		}
		orders = append(orders, o)
	}

	return orders, nil
}

// UpdateAssignment persists the dispatch fields of an assigned order.
// The UPDATE is predicated on the row still being approved and pending, so a
// concurrent assignment leaves zero affected rows and reports a conflict.
func (r *GormOrderRepository) UpdateAssignment(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND admin_status = ? AND dispatch_status = ?",
			dto.ID, order.AdminApproved, order.DispatchPending).
		Updates(map[string]any{
			"dispatch_status": dto.DispatchStatus,
			"status":          dto.Status,
			"courier_id":      dto.CourierID,
			"updated_at":      dto.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectChangedError("order", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// UpdatePayment persists the payment fields of an order.
// The UPDATE is predicated on the stored payment status not being paid, so a
// replayed or racing settlement leaves zero affected rows.
func (r *GormOrderRepository) UpdatePayment(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	updates := map[string]any{
		"payment_status":    dto.PaymentStatus,
		"payment_provider":  dto.PaymentProvider,
		"payment_intent_id": dto.PaymentIntentID,
		"payment_ref":       dto.PaymentRef,
		"paid_at":           dto.PaidAt,
		"updated_at":        dto.UpdatedAt,
	}
	// The lifecycle label is shared with the dispatch flow; only a
	// settlement may move it from here, otherwise a failed or expired
	// event could clobber a concurrent assignment's "matched" label.
	if aggregate.PaymentStatus() == order.PaymentPaid {
		updates["status"] = dto.Status
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND payment_status <> ?", dto.ID, order.PaymentPaid).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectChangedError("order", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}
