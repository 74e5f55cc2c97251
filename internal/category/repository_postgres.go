package category

import (
	"database/sql"

	"github.com/wichananm65/boutique-backend/internal/database"
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

const (
	listCategoriesQuery = `SELECT id, name, description, "imageUrl" FROM categories ORDER BY name`
	insertCategoryQuery = `
		INSERT INTO categories (name, description, "imageUrl")
		VALUES ($1, $2, $3)
		RETURNING id
	`
	updateCategoryQuery = `UPDATE categories SET name = $2, description = $3, "imageUrl" = $4 WHERE id = $1`
	deleteCategoryQuery = `DELETE FROM categories WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]Category, error) {
	rows, err := r.db.Query(listCategoriesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var (
			item Category
			desc sql.NullString
			img  sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Name, &desc, &img); err != nil {
			return nil, err
		}
		if desc.Valid {
			item.Description = &desc.String
		}
		if img.Valid {
			item.ImageURL = &img.String
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Create relies on the unique index on name to report duplicates.
func (r *PostgresRepository) Create(c Category) (Category, error) {
	if err := r.db.QueryRow(insertCategoryQuery, c.Name, c.Description, c.ImageURL).Scan(&c.ID); err != nil {
		if database.IsUniqueViolation(err) {
			return Category{}, ErrNameExists
		}
		return Category{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Update(id int, c Category) (Category, error) {
	result, err := r.db.Exec(updateCategoryQuery, id, c.Name, c.Description, c.ImageURL)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Category{}, ErrNameExists
		}
		return Category{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Category{}, err
	}
	if affected == 0 {
		return Category{}, ErrNotFound
	}
	c.ID = id
	return c, nil
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteCategoryQuery, id)
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
