package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository (ledger).
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// Create пишет заказ и его позиции одной транзакцией.
func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, customer, status, total_minor, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		order.ID, order.Customer, string(order.Status),
		int64(order.Total), order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (
				id, order_id, product_id, sku, name, unit_price_minor, qty, subtotal_minor
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			line.ID, order.ID, line.ProductID, line.SKU, line.Name,
			int64(line.UnitPrice), line.Qty, int64(line.Subtotal),
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

// Get возвращает заказ с позициями или ErrOrderNotFound.
func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, `
		SELECT id, customer, status, total_minor, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		return domain.Order{}, err
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines

	return order, nil
}

// ListByCustomer возвращает заказы покупателя, новые первыми.
func (r *orderRepository) ListByCustomer(customer string, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, customer, status, total_minor, created_at, updated_at
		FROM orders
		WHERE customer = $1
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)

	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", customer, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, customer)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	return r.collectOrders(ctx, rows)
}

// ListAll возвращает заказы по административному фильтру.
func (r *orderRepository) ListAll(filter domain.OrderFilter) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, customer, status, total_minor, created_at, updated_at
		FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR customer = $2)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, string(filter.Status), filter.Customer)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	defer rows.Close()

	return r.collectOrders(ctx, rows)
}

// Cancel переводит заказ в canceled. Уже отменённый заказ возвращается как есть.
func (r *orderRepository) Cancel(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    updated_at = $2
		WHERE id = $3
		  AND status <> $1
	`, string(domain.OrderStatusCanceled), time.Now().UTC(), id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("cancel order: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return domain.Order{}, fmt.Errorf("cancel rows affected: %w", err)
	}

	return r.Get(id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *orderRepository) scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order      domain.Order
		status     string
		totalMinor int64
	)
	err := row.Scan(
		&order.ID, &order.Customer, &status, &totalMinor,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	order.Total = domain.Money(totalMinor)
	return order, nil
}

func (r *orderRepository) collectOrders(ctx context.Context, rows *sql.Rows) ([]domain.Order, error) {
	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}

	return orders, nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, sku, name, unit_price_minor, qty, subtotal_minor
		FROM order_lines
		WHERE order_id = $1
		ORDER BY product_id ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var (
			line          domain.OrderLine
			unitMinor     int64
			subtotalMinor int64
		)
		if err := rows.Scan(
			&line.ID, &line.ProductID, &line.SKU, &line.Name,
			&unitMinor, &line.Qty, &subtotalMinor,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		line.UnitPrice = domain.Money(unitMinor)
		line.Subtotal = domain.Money(subtotalMinor)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
