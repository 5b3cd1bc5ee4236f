package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func testOrder(id, customer string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:       id,
		Customer: customer,
		Status:   domain.OrderStatusPaid,
		Total:    1000,
		Lines: []domain.OrderLine{
			{ID: id + "-line", ProductID: "p1", SKU: "SKU-1", Name: "Widget", UnitPrice: 500, Qty: 2, Subtotal: 1000},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOrderRepositoryCreateAndGet(t *testing.T) {
	repo := NewOrderRepository()
	order := testOrder("o1", "user@example.com", time.Now().UTC())

	require.NoError(t, repo.Create(order))

	got, err := repo.Get("o1")
	require.NoError(t, err)
	assert.Equal(t, order.Total, got.Total)
	require.Len(t, got.Lines, 1)

	// Повторное создание с тем же ID отклоняется.
	assert.ErrorIs(t, repo.Create(order), domain.ErrOrderAlreadyExists)
}

func TestOrderRepositoryGetMissing(t *testing.T) {
	repo := NewOrderRepository()

	_, err := repo.Get("missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepositoryListByCustomer(t *testing.T) {
	repo := NewOrderRepository()
	base := time.Now().UTC()

	require.NoError(t, repo.Create(testOrder("o1", "alice@example.com", base.Add(-2*time.Hour))))
	require.NoError(t, repo.Create(testOrder("o2", "alice@example.com", base)))
	require.NoError(t, repo.Create(testOrder("o3", "bob@example.com", base)))

	orders, err := repo.ListByCustomer("alice@example.com", 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	// Новые первыми.
	assert.Equal(t, "o2", orders[0].ID)
	assert.Equal(t, "o1", orders[1].ID)

	limited, err := repo.ListByCustomer("alice@example.com", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "o2", limited[0].ID)
}

func TestOrderRepositoryListAll(t *testing.T) {
	repo := NewOrderRepository()
	base := time.Now().UTC()

	require.NoError(t, repo.Create(testOrder("o1", "alice@example.com", base)))
	require.NoError(t, repo.Create(testOrder("o2", "bob@example.com", base.Add(time.Minute))))

	canceled, err := repo.Cancel("o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCanceled, canceled.Status)

	byStatus, err := repo.ListAll(domain.OrderFilter{Status: domain.OrderStatusCanceled})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "o1", byStatus[0].ID)

	byCustomer, err := repo.ListAll(domain.OrderFilter{Customer: "bob@example.com"})
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, "o2", byCustomer[0].ID)

	all, err := repo.ListAll(domain.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOrderRepositoryCancelIdempotent(t *testing.T) {
	repo := NewOrderRepository()
	require.NoError(t, repo.Create(testOrder("o1", "alice@example.com", time.Now().UTC())))

	first, err := repo.Cancel("o1")
	require.NoError(t, err)
	second, err := repo.Cancel("o1")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCanceled, first.Status)
	assert.Equal(t, domain.OrderStatusCanceled, second.Status)
	// Повторная отмена не двигает updated_at.
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)

	_, err = repo.Cancel("missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
