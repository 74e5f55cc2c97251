package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/wichananm65/boutique-backend/internal/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns = `id, "firstName", "lastName", email, password, role, "resetToken", "resetTokenExpiry", "createdAt"`

	listUsersQuery        = `SELECT ` + userColumns + ` FROM users ORDER BY "createdAt" DESC`
	getUserByIDQuery      = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	getUserByEmailQuery   = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	getUserByTokenQuery   = `SELECT ` + userColumns + ` FROM users WHERE "resetToken" = $1`
	insertUserQuery       = `
		INSERT INTO users (id, "firstName", "lastName", email, password, role, "createdAt")
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	updateRoleQuery       = `UPDATE users SET role = $2 WHERE id = $1`
	setResetTokenQuery    = `UPDATE users SET "resetToken" = $2, "resetTokenExpiry" = $3 WHERE id = $1`
	updatePasswordQuery   = `
		UPDATE users
		SET password = $2, "resetToken" = NULL, "resetTokenExpiry" = NULL
		WHERE id = $1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List() ([]User, error) {
	rows, err := r.db.Query(listUsersQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) GetByID(id string) (User, error) {
	return r.getOne(getUserByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	return r.getOne(getUserByEmailQuery, email)
}

func (r *PostgresRepository) GetByResetToken(token string) (User, error) {
	return r.getOne(getUserByTokenQuery, token)
}

func (r *PostgresRepository) getOne(query string, arg any) (User, error) {
	user, err := scanUser(r.db.QueryRow(query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Create(user User) (User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(insertUserQuery, user.ID, user.FirstName, user.LastName, user.Email, user.Password, user.Role, user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) UpdateRole(id, role string) (User, error) {
	if err := r.execAffectingOne(updateRoleQuery, id, role); err != nil {
		return User{}, err
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) SetResetToken(id, token string, expiry time.Time) error {
	return r.execAffectingOne(setResetTokenQuery, id, token, expiry)
}

func (r *PostgresRepository) UpdatePassword(id, hash string) error {
	return r.execAffectingOne(updatePasswordQuery, id, hash)
}

func (r *PostgresRepository) execAffectingOne(query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
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

func scanUser(scanner rowScanner) (User, error) {
	user := User{}
	var token sql.NullString
	var expiry sql.NullTime

	if err := scanner.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Password,
		&user.Role,
		&token,
		&expiry,
		&user.CreatedAt,
	); err != nil {
		return User{}, err
	}

	if token.Valid {
		user.ResetToken = &token.String
	}
	if expiry.Valid {
		user.ResetTokenExpiry = &expiry.Time
	}
	return user, nil
}
