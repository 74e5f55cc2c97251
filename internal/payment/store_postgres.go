package payment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/wichananm65/boutique-backend/internal/database"
	"github.com/wichananm65/boutique-backend/internal/order"
)

const (
	findByProviderQuery = `
		SELECT id, "userId", status, "paymentStatus", COALESCE("kakapayTransactionId", '')
		FROM orders WHERE "kakapayTransactionId" = $1
		FOR UPDATE`
	findByIDQuery = `
		SELECT id, "userId", status, "paymentStatus", COALESCE("kakapayTransactionId", '')
		FROM orders WHERE id = $1
		FOR UPDATE`
	insertOrderQuery = `
		INSERT INTO orders (id, "userId", "totalAmount", "kakapayTransactionId", status, "paymentStatus",
			"shippingAddressLine1", "shippingAddressLine2", "shippingCity", "shippingState", "shippingZipCode",
			"shippingCountry", "shippingAddressId", "orderDate")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	insertOrderItemQuery = `
		INSERT INTO order_items (id, "orderId", "productId", quantity, "priceAtOrder", "position")
		VALUES ($1, $2, $3, $4, $5, $6)`
	updateOrderStateQuery = `
		UPDATE orders
		SET status = $3, "paymentStatus" = $4, "kakapayTransactionId" = COALESCE($5, "kakapayTransactionId")
		WHERE id = $1 AND status = $2`
	upsertPaymentQuery = `
		INSERT INTO payments (id, "orderId", "paymentMethod", "transactionId", amount, currency, status, "paymentDate", "updatedAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT ("transactionId") DO UPDATE SET
			"orderId" = EXCLUDED."orderId",
			"paymentMethod" = EXCLUDED."paymentMethod",
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			status = EXCLUDED.status,
			"paymentDate" = EXCLUDED."paymentDate",
			"updatedAt" = EXCLUDED."updatedAt"`
	countItemsQuery = `SELECT COUNT(*) FROM order_items WHERE "orderId" = $1`
	clearCartQuery  = `DELETE FROM cart_items WHERE "userId" = $1`
)

// PostgresStore runs each unit of work in one database transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) FindOrder(ctx context.Context, providerTxID, orderID string) (OrderState, bool, error) {
	if providerTxID != "" {
		o, err := t.scanOrder(ctx, findByProviderQuery, providerTxID)
		if err == nil {
			return o, true, nil
		}
		if err != sql.ErrNoRows {
			return OrderState{}, false, err
		}
	}
	if orderID == "" {
		return OrderState{}, false, nil
	}
	o, err := t.scanOrder(ctx, findByIDQuery, orderID)
	if err == sql.ErrNoRows {
		return OrderState{}, false, nil
	}
	if err != nil {
		return OrderState{}, false, err
	}
	return o, true, nil
}

func (t *postgresTx) scanOrder(ctx context.Context, query, arg string) (OrderState, error) {
	var o OrderState
	err := t.tx.QueryRowContext(ctx, query, arg).Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.ProviderTxID)
	return o, err
}

func (t *postgresTx) CreateOrder(ctx context.Context, o NewOrder) error {
	_, err := t.tx.ExecContext(ctx, insertOrderQuery,
		o.ID, o.UserID, o.TotalAmount, nullString(o.ProviderTxID), o.Status, o.PaymentStatus,
		o.Shipping.Line1, o.Shipping.Line2, o.Shipping.City, o.Shipping.State, o.Shipping.ZipCode,
		o.Shipping.Country, nullString(o.ShippingAddressID), o.OrderDate)
	if err != nil {
		return duplicateOr(err)
	}
	return t.AddItems(ctx, o.ID, o.Items)
}

func (t *postgresTx) CountItems(ctx context.Context, orderID string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, countItemsQuery, orderID).Scan(&n)
	return n, err
}

func (t *postgresTx) AddItems(ctx context.Context, orderID string, items []order.Item) error {
	for i, it := range items {
		if _, err := t.tx.ExecContext(ctx, insertOrderItemQuery, uuid.NewString(), orderID, it.ProductID, it.Quantity, it.PriceAtOrder, i); err != nil {
			return err
		}
	}
	return nil
}

func (t *postgresTx) UpdateOrderState(ctx context.Context, id, expectedStatus, status, paymentStatus, providerTxID string) (bool, error) {
	result, err := t.tx.ExecContext(ctx, updateOrderStateQuery, id, expectedStatus, status, paymentStatus, nullString(providerTxID))
	if err != nil {
		return false, duplicateOr(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (t *postgresTx) UpsertPayment(ctx context.Context, p PaymentRecord) error {
	_, err := t.tx.ExecContext(ctx, upsertPaymentQuery,
		uuid.NewString(), p.OrderID, p.Method, p.TransactionID, p.Amount, p.Currency, p.Status, p.PaidAt)
	return duplicateOr(err)
}

func (t *postgresTx) ClearCart(ctx context.Context, userID string) error {
	_, err := t.tx.ExecContext(ctx, clearCartQuery, userID)
	return err
}

func duplicateOr(err error) error {
	if err != nil && database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
