package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"
)

// ReconcileOutcome classifies how a provider notification was absorbed.
// Every outcome except OutcomeApplied leaves the order untouched.
type ReconcileOutcome string

const (
	// OutcomeApplied means the event transitioned an order's payment state.
	OutcomeApplied ReconcileOutcome = "applied"
	// OutcomeIgnoredDuplicate means the referenced order already settled;
	// replays and late failure events land here.
	OutcomeIgnoredDuplicate ReconcileOutcome = "ignored-duplicate"
	// OutcomeIgnoredUnmatched means no order could be correlated to the event.
	OutcomeIgnoredUnmatched ReconcileOutcome = "ignored-unmatched"
	// OutcomeRejectedInvalid means the signature or payload failed
	// verification. The caller should answer with a client error so the
	// provider does not retry forever.
	OutcomeRejectedInvalid ReconcileOutcome = "rejected-invalid"
)

// Provider event types the reconciler understands. Anything else is
// acknowledged without effect so new provider event types never bounce.
const (
	eventPaymentPaid    = "payment.paid"
	eventPaymentFailed  = "payment.failed"
	eventPaymentExpired = "payment.expired"
	eventQRExpired      = "qrph.expired"
)

// eventEnvelope mirrors the provider's nested webhook shape: the outer event
// wraps an inner payment resource whose attributes carry the intent reference
// and the metadata echoed back from intent creation.
type eventEnvelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Type string `json:"type"`
			Data struct {
				ID         string `json:"id"`
				Attributes struct {
					PaymentIntentID string            `json:"payment_intent_id"`
					Metadata        map[string]string `json:"metadata"`
				} `json:"attributes"`
			} `json:"data"`
		} `json:"attributes"`
	} `json:"data"`
}

// ReconcilePaymentCommandHandler absorbs provider payment notifications into
// order payment state.
//
// The pipeline is authenticate, parse, correlate, transition. Each step that
// cannot proceed resolves to a non-applied outcome instead of an error;
// errors are reserved for infrastructure failures, which the HTTP adapter
// maps to a retryable server error.
type ReconcilePaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	verifier   services.WebhookVerifier
}

// NewReconcilePaymentCommandHandler creates a handler for payment
// notifications authenticated by the given verifier.
func NewReconcilePaymentCommandHandler(
	uowFactory OrderUoWFactory,
	verifier services.WebhookVerifier,
) ReconcilePaymentCommandHandler {
	return ReconcilePaymentCommandHandler{
		uowFactory: uowFactory,
		verifier:   verifier,
	}
}

// Handle verifies and applies one provider notification.
//
// Idempotency holds at two levels: the domain rejects transitions on a
// settled order, and the guarded payment write rejects racing settlements at
// the store. Both resolve to OutcomeIgnoredDuplicate.
func (h ReconcilePaymentCommandHandler) Handle(
	ctx context.Context,
	cmd ReconcilePaymentCommand,
) (ReconcileOutcome, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	if !h.verifier.Verify(cmd.RawBody(), cmd.SignatureHeader()) {
		return OutcomeRejectedInvalid, nil
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(cmd.RawBody(), &envelope); err != nil {
		return OutcomeRejectedInvalid, nil
	}

	eventType := envelope.Data.Attributes.Type
	if eventType == "" {
		return OutcomeRejectedInvalid, nil
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("begin reconcile tx: %w", err)
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, outcome, err := h.correlate(ctx, uow, envelope)
	if err != nil {
		return "", err
	}
	if outcome != "" {
		return outcome, nil
	}

	now := time.Now().UTC()
	paymentRef := envelope.Data.Attributes.Data.ID

	switch eventType {
	case eventPaymentPaid:
		err = o.MarkPaid(paymentRef, now)
	case eventPaymentFailed:
		err = o.MarkPaymentFailed(now)
	case eventPaymentExpired, eventQRExpired:
		err = o.MarkPaymentExpired(now)
	default:
		// Unknown event type: acknowledge without touching the order.
		return OutcomeApplied, nil
	}

	if errors.Is(err, order.ErrPaymentIsFinal) {
		return OutcomeIgnoredDuplicate, nil
	}
	if err != nil {
		return "", err
	}

	if err := uow.OrderRepository().UpdatePayment(ctx, o); err != nil {
		if errors.Is(err, errs.ErrObjectChanged) {
			// A concurrent delivery settled the order first.
			return OutcomeIgnoredDuplicate, nil
		}
		return "", fmt.Errorf("persist payment transition: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit payment transition: %w", err)
	}

	return OutcomeApplied, nil
}

// correlate resolves the event's order: the metadata echo is authoritative
// when present, the provider intent id is the fallback. A non-empty outcome
// means correlation resolved the whole event (unmatched or duplicate) and no
// transition should run.
func (h ReconcilePaymentCommandHandler) correlate(
	ctx context.Context,
	uow OrderUoW,
	envelope eventEnvelope,
) (*order.Order, ReconcileOutcome, error) {
	attrs := envelope.Data.Attributes.Data.Attributes

	var (
		o   *order.Order
		err error
	)

	if orderRef := attrs.Metadata["order_id"]; orderRef != "" {
		o, err = h.getByOrderRef(ctx, uow, orderRef)
	} else if attrs.PaymentIntentID != "" {
		o, err = uow.OrderRepository().GetByPaymentIntentID(ctx, attrs.PaymentIntentID)
	} else {
		return nil, OutcomeIgnoredUnmatched, nil
	}

	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, OutcomeIgnoredUnmatched, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("correlate payment event: %w", err)
	}

	if o.PaymentStatus().IsTerminal() {
		return nil, OutcomeIgnoredDuplicate, nil
	}

	return o, "", nil
}

// getByOrderRef parses a metadata order reference and loads the order.
// An unparseable reference correlates to nothing, same as an unknown id.
func (h ReconcilePaymentCommandHandler) getByOrderRef(
	ctx context.Context,
	uow OrderUoW,
	orderRef string,
) (*order.Order, error) {
	id, err := kernel.UUIDFromString(orderRef)
	if err != nil {
		return nil, errs.NewObjectNotFoundErrorWithCause("orderId", orderRef, err)
	}
	return uow.OrderRepository().Get(ctx, id)
}
