package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

// Create сохраняет товар. Занятый SKU и отрицательный остаток
// отклоняются ограничениями схемы и переводятся в доменные ошибки.
func (r *productRepository) Create(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, sku, name, description, price_minor, stock, is_active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		product.ID, product.SKU, product.Name, product.Description,
		int64(product.Price), product.Stock, product.IsActive,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSKUConflict
		}
		if isCheckViolation(err) {
			return domain.ErrNegativeStock
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepository) Get(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.scanProduct(r.db.QueryRowContext(ctx, `
		SELECT id, sku, name, description, price_minor, stock, is_active, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id))
}

// List возвращает товары по фильтру, отсортированные по имени.
func (r *productRepository) List(filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		minMinor sql.NullInt64
		maxMinor sql.NullInt64
		isActive sql.NullBool
	)
	if filter.MinPrice != nil {
		minMinor = sql.NullInt64{Int64: int64(*filter.MinPrice), Valid: true}
	}
	if filter.MaxPrice != nil {
		maxMinor = sql.NullInt64{Int64: int64(*filter.MaxPrice), Valid: true}
	}
	if filter.IsActive != nil {
		isActive = sql.NullBool{Bool: *filter.IsActive, Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sku, name, description, price_minor, stock, is_active, created_at, updated_at
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		  AND ($2::bigint IS NULL OR price_minor >= $2)
		  AND ($3::bigint IS NULL OR price_minor <= $3)
		  AND ($4::boolean IS NULL OR is_active = $4)
		ORDER BY name ASC, id ASC
	`, filter.Query, minMinor, maxMinor, isActive)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// Update применяет частичное обновление внутри транзакции: текущая строка
// читается под FOR UPDATE, патч накладывается и записывается целиком.
func (r *productRepository) Update(id string, patch domain.ProductPatch) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Product{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	product, err := r.scanProduct(tx.QueryRowContext(ctx, `
		SELECT id, sku, name, description, price_minor, stock, is_active, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		return domain.Product{}, err
	}

	if patch.SKU != nil {
		product.SKU = *patch.SKU
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			err = domain.ErrNegativeStock
			return domain.Product{}, err
		}
		product.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	product.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE products
		SET sku = $1,
		    name = $2,
		    description = $3,
		    price_minor = $4,
		    stock = $5,
		    is_active = $6,
		    updated_at = $7
		WHERE id = $8
	`,
		product.SKU, product.Name, product.Description,
		int64(product.Price), product.Stock, product.IsActive,
		product.UpdatedAt, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			err = domain.ErrSKUConflict
			return domain.Product{}, err
		}
		if isCheckViolation(err) {
			err = domain.ErrNegativeStock
			return domain.Product{}, err
		}
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Product{}, fmt.Errorf("commit update product: %w", err)
	}

	return product, nil
}

// Delete удаляет товар; отсутствие строки ошибкой не считается.
func (r *productRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (r *productRepository) scanProduct(row rowScanner) (domain.Product, error) {
	var (
		product    domain.Product
		priceMinor int64
	)
	err := row.Scan(
		&product.ID, &product.SKU, &product.Name, &product.Description,
		&priceMinor, &product.Stock, &product.IsActive,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("scan product: %w", err)
	}
	product.Price = domain.Money(priceMinor)
	return product, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
