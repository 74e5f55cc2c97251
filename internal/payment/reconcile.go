package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wichananm65/boutique-backend/internal/apperror"
	"github.com/wichananm65/boutique-backend/internal/logger"
	"github.com/wichananm65/boutique-backend/internal/order"
	"go.uber.org/zap"
)

var errStaleOrder = errors.New("order changed during reconciliation")

// Reconciler applies verified provider notifications to the store.
type Reconciler struct {
	store Store
	now   func() time.Time
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store, now: time.Now}
}

// Reconcile creates or advances the order behind rec inside one unit of
// work. A second delivery of the same notification converges on the same
// rows. When a verified status contradicts a settled order, the latest
// verification wins and the contradiction is logged.
func (r *Reconciler) Reconcile(ctx context.Context, rec Reconciliation) (Result, error) {
	orderStatus, paymentStatus := targetStatus(rec.Status)

	var res Result
	err := r.store.WithinTx(ctx, func(tx Tx) error {
		existing, found, err := tx.FindOrder(ctx, rec.ProviderTxID, rec.OrderID)
		if err != nil {
			return err
		}
		if found {
			res, err = r.advance(ctx, tx, existing, rec, orderStatus, paymentStatus)
		} else {
			res, err = r.create(ctx, tx, rec, orderStatus, paymentStatus)
		}
		return err
	})

	fields := []zap.Field{
		zap.String("source", rec.Source),
		zap.String("order_id", rec.OrderID),
		zap.String("provider_transaction_id", rec.ProviderTxID),
		zap.String("status", rec.Status),
	}
	switch {
	case err == nil:
		logger.Log.Info("payment reconciled", append(fields, zap.String("outcome", string(res.Outcome)))...)
		return res, nil
	case errors.Is(err, ErrDuplicate):
		logger.Log.Info("payment already reconciled by a concurrent writer", fields...)
		return Result{Outcome: OutcomeDuplicate, OrderID: rec.OrderID, OrderStatus: orderStatus, PaymentStatus: paymentStatus}, nil
	case errors.Is(err, ErrOrderNotFound):
		logger.Log.Warn("payment references an unknown order", fields...)
		return Result{}, err
	default:
		logger.Log.Error("payment reconciliation rolled back", append(fields, zap.Error(err))...)
		return Result{}, apperror.Wrap(ErrPersistence, err)
	}
}

func (r *Reconciler) advance(ctx context.Context, tx Tx, existing OrderState, rec Reconciliation, orderStatus, paymentStatus string) (Result, error) {
	res := Result{OrderID: existing.ID, OrderStatus: existing.Status, PaymentStatus: existing.PaymentStatus}

	if orderStatus == order.StatusPending {
		// A pending notice never reopens a settled order.
		if existing.Status != order.StatusPending {
			logger.Log.Info("ignoring pending notice for settled order",
				zap.String("order_id", existing.ID), zap.String("order_status", existing.Status))
			res.Outcome = OutcomePending
			return res, nil
		}
		if err := tx.UpsertPayment(ctx, r.payment(existing.ID, rec, paymentStatus)); err != nil {
			return Result{}, err
		}
		res.Outcome = OutcomePending
		res.PaymentStatus = paymentStatus
		return res, nil
	}

	if contradicts(existing.PaymentStatus, paymentStatus) {
		logger.Log.Warn("verified status contradicts settled order, applying latest",
			zap.String("order_id", existing.ID),
			zap.String("previous_payment_status", existing.PaymentStatus),
			zap.String("payment_status", paymentStatus),
			zap.String("source", rec.Source))
	}

	newStatus := orderStatus
	if fulfilment(existing.Status) {
		newStatus = existing.Status
	}
	ok, err := tx.UpdateOrderState(ctx, existing.ID, existing.Status, newStatus, paymentStatus, rec.ProviderTxID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, errStaleOrder
	}
	if err := tx.UpsertPayment(ctx, r.payment(existing.ID, rec, paymentStatus)); err != nil {
		return Result{}, err
	}
	if existing.PaymentStatus != order.PaymentCompleted && paymentStatus == order.PaymentCompleted {
		if err := r.settle(ctx, tx, existing, rec); err != nil {
			return Result{}, err
		}
	}

	res.OrderStatus = newStatus
	res.PaymentStatus = paymentStatus
	res.Outcome = OutcomeUpdated
	if paymentStatus == order.PaymentFailed {
		res.Outcome = OutcomeFailed
	}
	return res, nil
}

func (r *Reconciler) create(ctx context.Context, tx Tx, rec Reconciliation, orderStatus, paymentStatus string) (Result, error) {
	res := Result{OrderID: rec.OrderID, OrderStatus: orderStatus, PaymentStatus: paymentStatus}

	if orderStatus == order.StatusPending {
		res.Outcome = OutcomePending
		return res, nil
	}
	if rec.OrderID == "" || rec.Draft.UserID == "" {
		return Result{}, fmt.Errorf("%w: order %q", ErrOrderNotFound, rec.OrderID)
	}

	o := NewOrder{
		OrderState: OrderState{
			ID:            rec.OrderID,
			UserID:        rec.Draft.UserID,
			Status:        orderStatus,
			PaymentStatus: paymentStatus,
			ProviderTxID:  rec.ProviderTxID,
		},
		TotalAmount:       rec.Draft.TotalAmount,
		Shipping:          rec.Draft.Shipping(),
		ShippingAddressID: rec.Draft.ShippingAddress.ID,
		OrderDate:         r.now().UTC(),
	}
	if o.TotalAmount == 0 {
		o.TotalAmount = rec.Amount
	}
	if paymentStatus == order.PaymentCompleted {
		o.Items = rec.Draft.OrderItems()
	}

	if err := tx.CreateOrder(ctx, o); err != nil {
		return Result{}, err
	}
	if err := tx.UpsertPayment(ctx, r.payment(rec.OrderID, rec, paymentStatus)); err != nil {
		return Result{}, err
	}

	if paymentStatus != order.PaymentCompleted {
		res.Outcome = OutcomeFailed
		return res, nil
	}
	if err := tx.ClearCart(ctx, rec.Draft.UserID); err != nil {
		return Result{}, err
	}
	res.Outcome = OutcomeCreated
	return res, nil
}

// settle completes an order whose first successful verification arrives
// after it was created: the items it was saved without are added from the
// echoed draft and the buyer's cart is emptied.
func (r *Reconciler) settle(ctx context.Context, tx Tx, existing OrderState, rec Reconciliation) error {
	n, err := tx.CountItems(ctx, existing.ID)
	if err != nil {
		return err
	}
	if items := rec.Draft.OrderItems(); n == 0 && len(items) > 0 {
		if err := tx.AddItems(ctx, existing.ID, items); err != nil {
			return err
		}
	} else if n == 0 {
		logger.Log.Warn("paid order has no items to restore", zap.String("order_id", existing.ID))
	}
	userID := firstNonEmpty(existing.UserID, rec.Draft.UserID)
	if userID == "" {
		return nil
	}
	return tx.ClearCart(ctx, userID)
}

// payment takes amount and currency from the provider; the draft currency
// only fills a gap.
func (r *Reconciler) payment(orderID string, rec Reconciliation, status string) PaymentRecord {
	return PaymentRecord{
		OrderID:       orderID,
		TransactionID: rec.ProviderTxID,
		Method:        firstNonEmpty(rec.PaymentMethod, defaultPaymentMethod),
		Amount:        rec.Amount,
		Currency:      firstNonEmpty(rec.Currency, rec.Draft.Currency, defaultCurrency),
		Status:        status,
		PaidAt:        r.now().UTC(),
	}
}

func contradicts(previous, next string) bool {
	return (previous == order.PaymentCompleted && next == order.PaymentFailed) ||
		(previous == order.PaymentFailed && next == order.PaymentCompleted)
}

// fulfilment statuses are owned by the back office.
func fulfilment(status string) bool {
	switch status {
	case order.StatusShipped, order.StatusDelivered, order.StatusCancelled:
		return true
	}
	return false
}
