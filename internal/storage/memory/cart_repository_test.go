package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestCartRepositoryAddSetRemove(t *testing.T) {
	repo := NewCartRepository()

	require.NoError(t, repo.Add("alice", "p1", 2))
	require.NoError(t, repo.Add("alice", "p1", 3))
	require.NoError(t, repo.Add("alice", "p2", 1))

	items, err := repo.Items("alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"p1": 5, "p2": 1}, items)

	// Add с некорректным количеством отклоняется.
	assert.ErrorIs(t, repo.Add("alice", "p1", 0), domain.ErrCartQtyInvalid)

	// Set перезаписывает количество, qty <= 0 удаляет позицию.
	require.NoError(t, repo.Set("alice", "p1", 10))
	require.NoError(t, repo.Set("alice", "p2", 0))

	items, err = repo.Items("alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"p1": 10}, items)

	require.NoError(t, repo.Remove("alice", "p1"))
	items, err = repo.Items("alice")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartRepositoryClearIsScopedToIdentity(t *testing.T) {
	repo := NewCartRepository()
	require.NoError(t, repo.Add("alice", "p1", 1))
	require.NoError(t, repo.Add("bob", "p2", 2))

	require.NoError(t, repo.Clear("alice"))

	aliceItems, err := repo.Items("alice")
	require.NoError(t, err)
	assert.Empty(t, aliceItems)

	bobItems, err := repo.Items("bob")
	require.NoError(t, err)
	assert.Equal(t, map[string]int32{"p2": 2}, bobItems)
}

func TestCartRepositoryOrderJournal(t *testing.T) {
	repo := NewCartRepository()

	require.NoError(t, repo.AppendOrder("alice", "o1", []byte(`{"id":"o1"}`)))
	require.NoError(t, repo.AppendOrder("alice", "o2", []byte(`{"id":"o2"}`)))

	summaries, err := repo.ListOrders("alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	// Новые первыми.
	assert.JSONEq(t, `{"id":"o2"}`, string(summaries[0]))
	assert.JSONEq(t, `{"id":"o1"}`, string(summaries[1]))

	byID, err := repo.GetOrder("o1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"o1"}`, string(byID))

	_, err = repo.GetOrder("missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
