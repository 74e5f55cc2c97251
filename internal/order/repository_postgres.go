package order

import (
	"database/sql"
	"strconv"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	orderColumns = `o.id, o."userId", COALESCE(u.email, ''), o."totalAmount", o.status,
		COALESCE(pay.status, o."paymentStatus"), o."kakapayTransactionId",
		o."shippingAddressLine1", o."shippingAddressLine2", o."shippingCity", o."shippingState",
		o."shippingZipCode", o."shippingCountry", o."shippingAddressId", o."orderDate"`

	orderFrom = `
		FROM orders o
		LEFT JOIN users u ON u.id = o."userId"
		LEFT JOIN LATERAL (
			SELECT status FROM payments WHERE "orderId" = o.id ORDER BY "updatedAt" DESC LIMIT 1
		) pay ON TRUE`

	listByUserQuery = `SELECT ` + orderColumns + orderFrom + `
		WHERE o."userId" = $1
		ORDER BY o."orderDate" DESC
		LIMIT $2`

	listAllQuery = `SELECT ` + orderColumns + orderFrom + `
		ORDER BY o."orderDate" DESC`

	itemsByOrderQuery = `
		SELECT oi."orderId", oi."productId", COALESCE(p.name, ''), COALESCE(p."imgUrl", ''), oi.quantity, oi."priceAtOrder"
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi."productId"
		WHERE oi."orderId" = ANY($1::text[])
		ORDER BY oi."orderId", oi."position", oi.id`

	updateStatusQuery = `UPDATE orders SET status = $2 WHERE id = $1`

	deleteItemsQuery    = `DELETE FROM order_items WHERE "orderId" = $1`
	deletePaymentsQuery = `DELETE FROM payments WHERE "orderId" = $1`
	deleteOrderQuery    = `DELETE FROM orders WHERE id = $1`

	countersQuery = `
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = 'PENDING'),
			(SELECT COUNT(*) FROM users),
			(SELECT COALESCE(SUM("totalAmount"), 0) FROM orders WHERE "paymentStatus" = 'COMPLETED')`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o      Order
		txID   sql.NullString
		addrID sql.NullString
	)
	err := row.Scan(&o.ID, &o.UserID, &o.CustomerEmail, &o.TotalAmount, &o.Status, &o.PaymentStatus, &txID,
		&o.Shipping.Line1, &o.Shipping.Line2, &o.Shipping.City, &o.Shipping.State,
		&o.Shipping.ZipCode, &o.Shipping.Country, &addrID, &o.OrderDate)
	if err != nil {
		return Order{}, err
	}
	if txID.Valid {
		o.KakapayTransactionID = &txID.String
	}
	if addrID.Valid {
		o.ShippingAddressID = &addrID.String
	}
	o.Items = []Item{}
	return o, nil
}

func (r *PostgresRepository) queryOrders(query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, r.attachItems(orders)
}

// attachItems loads the items of every order in a single query.
func (r *PostgresRepository) attachItems(orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.db.Query(itemsByOrderQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    Item
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.ImgURL, &item.Quantity, &item.PriceAtOrder); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) ListByUser(userID string, limit int) ([]Order, error) {
	return r.queryOrders(listByUserQuery, userID, limit)
}

func (r *PostgresRepository) ListAll(limit int) ([]Order, error) {
	if limit > 0 {
		return r.queryOrders(listAllQuery+` LIMIT `+strconv.Itoa(limit))
	}
	return r.queryOrders(listAllQuery)
}

func (r *PostgresRepository) UpdateStatus(id, status string) error {
	result, err := r.db.Exec(updateStatusQuery, id, status)
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

func (r *PostgresRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(deleteItemsQuery, id); err != nil {
		return err
	}
	if _, err := tx.Exec(deletePaymentsQuery, id); err != nil {
		return err
	}
	result, err := tx.Exec(deleteOrderQuery, id)
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
	return tx.Commit()
}

func (r *PostgresRepository) Stats(recent int) (Stats, error) {
	var s Stats
	if err := r.db.QueryRow(countersQuery).Scan(&s.Products, &s.Orders, &s.PendingOrders, &s.Users, &s.Revenue); err != nil {
		return Stats{}, err
	}
	orders, err := r.ListAll(recent)
	if err != nil {
		return Stats{}, err
	}
	s.RecentOrders = orders
	return s, nil
}
