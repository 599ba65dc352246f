package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"

	"github.com/susu25/dailyfresh/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) GetVariant(ctx context.Context, id int64) (*domain.ProductVariant, error) {
	query := `SELECT id, name, price, stock, sales, updated_at FROM variants WHERE id = $1`

	var v domain.ProductVariant
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.Name,
		&v.Price,
		&v.Stock,
		&v.Sales,
		&v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query variant by id: %w", err)
	}

	return &v, nil
}

func (r *Repository) UpsertVariant(ctx context.Context, variant *domain.ProductVariant) error {
	if variant.ID == 0 {
		query := `INSERT INTO variants (name, price, stock, sales, updated_at)
		          VALUES ($1, $2, $3, $4, NOW()) RETURNING id`
		err := r.db.QueryRowContext(ctx, query,
			variant.Name, variant.Price, variant.Stock, variant.Sales).Scan(&variant.ID)
		if err != nil {
			return fmt.Errorf("insert variant: %w", err)
		}
		return nil
	}

	query := `UPDATE variants SET name = $2, price = $3, stock = $4, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, variant.ID, variant.Name, variant.Price, variant.Stock)
	if err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update variant rows affected: %w", err)
	}
	if rows == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (r *Repository) DeleteVariant(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM variants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete variant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete variant rows affected: %w", err)
	}
	if rows == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (r *Repository) GetAddress(ctx context.Context, userID, addressID int64) (*domain.Address, error) {
	query := `SELECT id, user_id, receiver, addr, zip_code, phone, is_default
	          FROM addresses WHERE id = $1 AND user_id = $2`

	var a domain.Address
	err := r.db.QueryRowContext(ctx, query, addressID, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.Receiver,
		&a.Addr,
		&a.ZipCode,
		&a.Phone,
		&a.IsDefault,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query address by id: %w", err)
	}

	return &a, nil
}

func (r *Repository) ListAddresses(ctx context.Context, userID int64) ([]domain.Address, error) {
	query := `SELECT id, user_id, receiver, addr, zip_code, phone, is_default
	          FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query addresses by user id: %w", err)
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Receiver, &a.Addr, &a.ZipCode, &a.Phone, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return addresses, nil
}

// CommitOrder persists the order header, decrements stock for every line item
// and inserts the line items in a single transaction. The decrement is
// conditional on remaining stock, so two commits racing for the same variant
// serialize on the row and the loser sees zero rows affected. Any failure
// rolls the whole attempt back.
func (r *Repository) CommitOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit transaction: %w", err)
	}
	defer tx.Rollback()

	headerQuery := `INSERT INTO orders (id, user_id, address_id, pay_method, total_count, total_price, transit_price, status, created_at, updated_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	_, insertErr := tx.ExecContext(ctx, headerQuery,
		order.ID,
		order.UserID,
		order.AddressID,
		order.PayMethod,
		order.TotalCount,
		order.TotalPrice,
		order.TransitPrice,
		order.Status)
	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrderID
		}
		return fmt.Errorf("insert order header: %w", insertErr)
	}

	decrementQuery := `UPDATE variants SET stock = stock - $2, sales = sales + $2, updated_at = NOW()
	                   WHERE id = $1 AND stock >= $2`
	itemQuery := `INSERT INTO order_items (order_id, variant_id, variant_name, quantity, unit_price)
	              VALUES ($1, $2, $3, $4, $5)`

	for _, item := range order.Items {
		res, err := tx.ExecContext(ctx, decrementQuery, item.VariantID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock for variant %d: %w", item.VariantID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("decrement rows affected: %w", err)
		}
		if rows == 0 {
			return &InsufficientStockError{VariantID: item.VariantID}
		}

		if _, err := tx.ExecContext(ctx, itemQuery,
			order.ID, item.VariantID, item.VariantName, item.Quantity, item.UnitPrice); err != nil {
			return fmt.Errorf("insert line item for variant %d: %w", item.VariantID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, userID int64, orderID string) (*domain.Order, error) {
	query := `SELECT id, user_id, address_id, pay_method, total_count, total_price, transit_price, status, created_at, updated_at
	          FROM orders WHERE id = $1 AND user_id = $2`

	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, orderID, userID).Scan(
		&order.ID,
		&order.UserID,
		&order.AddressID,
		&order.PayMethod,
		&order.TotalCount,
		&order.TotalPrice,
		&order.TransitPrice,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	items, err := r.listLineItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	query := `SELECT id, user_id, address_id, pay_method, total_count, total_price, transit_price, status, created_at, updated_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.AddressID,
			&order.PayMethod,
			&order.TotalCount,
			&order.TotalPrice,
			&order.TransitPrice,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		items, err := r.listLineItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

func (r *Repository) listLineItems(ctx context.Context, orderID string) ([]domain.OrderLineItem, error) {
	query := `SELECT variant_id, variant_name, quantity, unit_price
	          FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query line items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderLineItem
	for rows.Next() {
		var item domain.OrderLineItem
		if err := rows.Scan(&item.VariantID, &item.VariantName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan line item row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
