package cart

import (
	"database/sql"

	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery = `
		SELECT ci."productId", p.name, p.price, p."offerPrice", p."imgUrl", ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci."productId"
		WHERE ci."userId" = $1
		ORDER BY ci."createdAt"
	`
	productExistsQuery = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
	incrementItemQuery = `
		INSERT INTO cart_items (id, "userId", "productId", quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ("userId", "productId") DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`
	setItemQuery = `
		INSERT INTO cart_items (id, "userId", "productId", quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ("userId", "productId") DO UPDATE SET quantity = EXCLUDED.quantity
	`
	removeItemQuery = `DELETE FROM cart_items WHERE "userId" = $1 AND "productId" = $2`
	clearCartQuery  = `DELETE FROM cart_items WHERE "userId" = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetCart(userID string) ([]CartItem, error) {
	rows, err := r.db.Query(getCartQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CartItem, 0)
	for rows.Next() {
		var (
			item  CartItem
			offer sql.NullFloat64
		)
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &offer, &item.ImgURL, &item.Quantity); err != nil {
			return nil, err
		}
		if offer.Valid {
			v := offer.Float64
			item.OfferPrice = &v
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ensureProduct(productID string) error {
	var ok bool
	if err := r.db.QueryRow(productExistsQuery, productID).Scan(&ok); err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	return nil
}

func (r *PostgresRepository) Add(userID, productID string, qty int) error {
	if err := r.ensureProduct(productID); err != nil {
		return err
	}
	_, err := r.db.Exec(incrementItemQuery, uuid.NewString(), userID, productID, qty)
	return err
}

func (r *PostgresRepository) Set(userID, productID string, qty int) error {
	if qty <= 0 {
		return r.Remove(userID, productID)
	}
	if err := r.ensureProduct(productID); err != nil {
		return err
	}
	_, err := r.db.Exec(setItemQuery, uuid.NewString(), userID, productID, qty)
	return err
}

func (r *PostgresRepository) Remove(userID, productID string) error {
	result, err := r.db.Exec(removeItemQuery, userID, productID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(userID string) error {
	_, err := r.db.Exec(clearCartQuery, userID)
	return err
}
