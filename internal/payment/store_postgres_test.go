package payment

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderStateColumns = []string{"id", "userId", "status", "paymentStatus", "kakapayTransactionId"}

func TestPostgresStore_CreatesOrderOnFirstSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := newTestReconciler(NewPostgresStore(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE "kakapayTransactionId" = $1`)).WithArgs("kk_abc123").WillReturnRows(sqlmock.NewRows(orderStateColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).WithArgs("ord_001").WillReturnRows(sqlmock.NewRows(orderStateColumns))
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("ord_001", "u-1", 15000.0, "kk_abc123", "PAID_SUCCESS", "COMPLETED",
			"Awa K", "Haie Vive", "Cotonou", "", "", "Bénin", nil, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(sqlmock.AnyArg(), "ord_001", "p-1", 2, 5000.0, 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(sqlmock.AnyArg(), "ord_001", "p-2", 1, 5000.0, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT ("transactionId")`)).
		WithArgs(sqlmock.AnyArg(), "ord_001", "mtn-benin", "kk_abc123", 15000.0, "XOF", "COMPLETED", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items").WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	res, err := r.Reconcile(context.Background(), exampleReconciliation(ProviderSuccess, "callback"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdatesExistingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := newTestReconciler(NewPostgresStore(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE "kakapayTransactionId" = $1`)).WithArgs("kk_abc123").
		WillReturnRows(sqlmock.NewRows(orderStateColumns).AddRow("ord_001", "u-1", "PAID_SUCCESS", "COMPLETED", "kk_abc123"))
	mock.ExpectExec("UPDATE orders").
		WithArgs("ord_001", "PAID_SUCCESS", "PAID_SUCCESS", "COMPLETED", "kk_abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := r.Reconcile(context.Background(), exampleReconciliation(ProviderSuccess, "webhook"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FailedThenSuccessBackfillsItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := newTestReconciler(NewPostgresStore(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE "kakapayTransactionId" = $1`)).WithArgs("kk_abc123").
		WillReturnRows(sqlmock.NewRows(orderStateColumns).AddRow("ord_001", "u-1", "PAYMENT_FAILED", "FAILED", "kk_abc123"))
	mock.ExpectExec("UPDATE orders").
		WithArgs("ord_001", "PAYMENT_FAILED", "PAID_SUCCESS", "COMPLETED", "kk_abc123").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM order_items`)).WithArgs("ord_001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(sqlmock.AnyArg(), "ord_001", "p-1", 2, 5000.0, 0).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WithArgs(sqlmock.AnyArg(), "ord_001", "p-2", 1, 5000.0, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items").WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	res, err := r.Reconcile(context.Background(), exampleReconciliation(ProviderSuccess, "callback"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UniqueViolationIsDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := newTestReconciler(NewPostgresStore(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE "kakapayTransactionId" = $1`)).WillReturnRows(sqlmock.NewRows(orderStateColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).WillReturnRows(sqlmock.NewRows(orderStateColumns))
	mock.ExpectExec("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	res, err := r.Reconcile(context.Background(), exampleReconciliation(ProviderSuccess, "webhook"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, res.Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := newTestReconciler(NewPostgresStore(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE "kakapayTransactionId" = $1`)).
		WillReturnRows(sqlmock.NewRows(orderStateColumns).AddRow("ord_001", "u-1", "PENDING", "PENDING", ""))
	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payments").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err = r.Reconcile(context.Background(), exampleReconciliation(ProviderFailed, "callback"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_StaleOrderRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := newTestReconciler(NewPostgresStore(db))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE "kakapayTransactionId" = $1`)).
		WillReturnRows(sqlmock.NewRows(orderStateColumns).AddRow("ord_001", "u-1", "PENDING", "PENDING", ""))
	mock.ExpectExec("UPDATE orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err = r.Reconcile(context.Background(), exampleReconciliation(ProviderSuccess, "callback"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NoError(t, mock.ExpectationsWereMet())
}
