package cart

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresAdd_UpsertsIncrement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("p-1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta(`quantity = cart_items.quantity + EXCLUDED.quantity`)).
		WithArgs(sqlmock.AnyArg(), "u-1", "p-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("ghost").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	require.NoError(t, repo.Add("u-1", "p-1", 2))
	assert.Equal(t, ErrProductNotFound, repo.Add("u-1", "ghost", 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSet_ZeroDeletes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("DELETE FROM cart_items").WithArgs("u-1", "p-1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Set("u-1", "p-1", 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetCart(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"productId", "name", "price", "offerPrice", "imgUrl", "quantity"}).
		AddRow("p-1", "Pagne wax", 12000.0, 9000.0, "/img/wax.png", 2).
		AddRow("p-2", "Savon noir", 1500.0, nil, "", 1)
	mock.ExpectQuery("FROM cart_items ci").WithArgs("u-1").WillReturnRows(rows)

	items, err := repo.GetCart("u-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].OfferPrice)
	assert.Equal(t, 9000.0, *items[0].OfferPrice)
	assert.Nil(t, items[1].OfferPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}
