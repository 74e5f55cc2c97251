package category

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestPostgresCreate_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO categories").WithArgs("Textile", nil, nil).WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery("INSERT INTO categories").WithArgs("Beauté", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	if _, err := repo.Create(Category{Name: "Textile"}); err != ErrNameExists {
		t.Fatalf("expected ErrNameExists, got %v", err)
	}
	c, err := repo.Create(Category{Name: "Beauté"})
	if err != nil || c.ID != 7 {
		t.Fatalf("unexpected create result %+v %v", c, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "imageUrl"}).
		AddRow(1, "Beauté", "Soins", nil).
		AddRow(2, "Textile", nil, "/img/textile.png")
	mock.ExpectQuery("FROM categories").WillReturnRows(rows)

	items, err := repo.List()
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(items) != 2 || items[0].Description == nil || items[0].ImageURL != nil || items[1].ImageURL == nil {
		t.Fatalf("unexpected categories %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
