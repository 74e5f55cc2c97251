package product

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	productColumns = `id, name, description, category, price, "offerPrice", stock, "imgUrl", "createdAt"`

	listProductsQuery           = `SELECT ` + productColumns + ` FROM products ORDER BY "createdAt" DESC`
	listProductsByCategoryQuery = `SELECT ` + productColumns + ` FROM products WHERE LOWER(category) = LOWER($1) ORDER BY "createdAt" DESC`
	getProductQuery             = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	insertProductQuery          = `
		INSERT INTO products (id, name, description, category, price, "offerPrice", stock, "imgUrl", "createdAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	updateProductQuery = `
		UPDATE products
		SET name = $2, description = $3, category = $4, price = $5, "offerPrice" = $6, stock = $7, "imgUrl" = $8
		WHERE id = $1
		RETURNING ` + productColumns
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(category string) ([]Product, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if category == "" {
		rows, err = r.db.Query(listProductsQuery)
	} else {
		rows, err = r.db.Query(listProductsByCategoryQuery, category)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) GetByID(id string) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(insertProductQuery, p.ID, p.Name, p.Description, p.Category, p.Price, nullFloat(p.OfferPrice), p.Stock, p.ImgURL, p.CreatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(id string, p Product) (Product, error) {
	row := r.db.QueryRow(updateProductQuery, id, p.Name, p.Description, p.Category, p.Price, nullFloat(p.OfferPrice), p.Stock, p.ImgURL)
	updated, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(id string) error {
	result, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func scanProduct(scanner rowScanner) (Product, error) {
	var p Product
	var offer sql.NullFloat64
	if err := scanner.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &offer, &p.Stock, &p.ImgURL, &p.CreatedAt); err != nil {
		return Product{}, err
	}
	if offer.Valid {
		p.OfferPrice = &offer.Float64
	}
	return p, nil
}
