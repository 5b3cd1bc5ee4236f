package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	opTimeout = 3 * time.Second

	cartKeyPrefix   = "cart:"
	ordersKeyPrefix = "orders:"
	orderKeyPrefix  = "order:"
)

// cartRepositoryRedis хранит корзины в Redis: хеш cart:{identity}
// (product_id -> qty), список orders:{identity} со сводками заказов
// (новые первыми) и строку order:{id} для выборки сводки по ID.
type cartRepositoryRedis struct {
	client *redis.Client
}

// NewCartRepository создаёт Redis-реализацию CartRepository.
func NewCartRepository(client *redis.Client) domain.CartRepository {
	return &cartRepositoryRedis{client: client}
}

// Open подключается к Redis и проверяет доступность.
func Open(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Items возвращает содержимое корзины product_id -> qty.
func (r *cartRepositoryRedis) Items(identity string) (map[string]int32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, err := r.client.HGetAll(ctx, cartKeyPrefix+identity).Result()
	if err != nil {
		return nil, fmt.Errorf("read cart hash: %w", err)
	}

	items := make(map[string]int32, len(raw))
	for productID, qtyRaw := range raw {
		qty, err := strconv.ParseInt(qtyRaw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse cart qty for %s: %w", productID, err)
		}
		if qty <= 0 {
			// Повреждённая запись; в снапшот не попадает.
			continue
		}
		items[productID] = int32(qty)
	}

	return items, nil
}

// Add увеличивает количество товара на qty.
func (r *cartRepositoryRedis) Add(identity, productID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrCartQtyInvalid
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.HIncrBy(ctx, cartKeyPrefix+identity, productID, int64(qty)).Err(); err != nil {
		return fmt.Errorf("increment cart item: %w", err)
	}
	return nil
}

// Set выставляет количество; qty <= 0 удаляет позицию.
func (r *cartRepositoryRedis) Set(identity, productID string, qty int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if qty <= 0 {
		if err := r.client.HDel(ctx, cartKeyPrefix+identity, productID).Err(); err != nil {
			return fmt.Errorf("delete cart item: %w", err)
		}
		return nil
	}

	if err := r.client.HSet(ctx, cartKeyPrefix+identity, productID, int64(qty)).Err(); err != nil {
		return fmt.Errorf("set cart item: %w", err)
	}
	return nil
}

// Remove удаляет позицию из корзины.
func (r *cartRepositoryRedis) Remove(identity, productID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.HDel(ctx, cartKeyPrefix+identity, productID).Err(); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// Clear удаляет корзину целиком.
func (r *cartRepositoryRedis) Clear(identity string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := r.client.Del(ctx, cartKeyPrefix+identity).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// AppendOrder дописывает сводку заказа в журнал покупателя и индекс по ID.
func (r *cartRepositoryRedis) AppendOrder(identity, orderID string, summary []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, ordersKeyPrefix+identity, summary)
	pipe.Set(ctx, orderKeyPrefix+orderID, summary, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append order summary: %w", err)
	}
	return nil
}

// ListOrders возвращает журнал сводок покупателя, новые первыми.
func (r *cartRepositoryRedis) ListOrders(identity string) ([][]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	raw, err := r.client.LRange(ctx, ordersKeyPrefix+identity, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list order summaries: %w", err)
	}

	result := make([][]byte, 0, len(raw))
	for _, summary := range raw {
		result = append(result, []byte(summary))
	}
	return result, nil
}

// GetOrder возвращает сводку по ID заказа или ErrOrderNotFound.
func (r *cartRepositoryRedis) GetOrder(orderID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	summary, err := r.client.Get(ctx, orderKeyPrefix+orderID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order summary: %w", err)
	}
	return summary, nil
}

var _ domain.CartRepository = (*cartRepositoryRedis)(nil)
