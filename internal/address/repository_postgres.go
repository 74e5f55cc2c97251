package address

import (
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	addressColumns = `id, "userId", "fullName", "phoneNumber", pincode, area, city, state, "isDefault", "createdAt"`

	listAddressesQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE "userId" = $1 ORDER BY "isDefault" DESC, "createdAt" DESC`
	clearDefaultQuery  = `UPDATE addresses SET "isDefault" = FALSE WHERE "userId" = $1 AND id <> $2 AND "isDefault"`
	insertAddressQuery = `
		INSERT INTO addresses (id, "userId", "fullName", "phoneNumber", pincode, area, city, state, "isDefault", "createdAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	updateAddressQuery = `
		UPDATE addresses
		SET "fullName" = $3, "phoneNumber" = $4, pincode = $5, area = $6, city = $7, state = $8, "isDefault" = $9
		WHERE id = $1 AND "userId" = $2
		RETURNING "createdAt"
	`
	deleteAddressQuery = `DELETE FROM addresses WHERE id = $1 AND "userId" = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(userID string) ([]Address, error) {
	rows, err := r.db.Query(listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.FullName, &a.PhoneNumber, &a.Pincode, &a.Area, &a.City, &a.State, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create inserts the address and, when it is the new default, demotes the
// user's other addresses in the same transaction.
func (r *PostgresRepository) Create(a Address) (Address, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.Exec(clearDefaultQuery, a.UserID, a.ID); err != nil {
			return Address{}, err
		}
	}
	if _, err := tx.Exec(insertAddressQuery, a.ID, a.UserID, a.FullName, a.PhoneNumber, a.Pincode, a.Area, a.City, a.State, a.IsDefault, a.CreatedAt); err != nil {
		return Address{}, err
	}
	if err := tx.Commit(); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Update(a Address) (Address, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return Address{}, err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.Exec(clearDefaultQuery, a.UserID, a.ID); err != nil {
			return Address{}, err
		}
	}
	err = tx.QueryRow(updateAddressQuery, a.ID, a.UserID, a.FullName, a.PhoneNumber, a.Pincode, a.Area, a.City, a.State, a.IsDefault).Scan(&a.CreatedAt)
	if err == sql.ErrNoRows {
		return Address{}, ErrNotFound
	}
	if err != nil {
		return Address{}, err
	}
	if err := tx.Commit(); err != nil {
		return Address{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Delete(userID, id string) error {
	result, err := r.db.Exec(deleteAddressQuery, id, userID)
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
