package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartSnapshotOrdersLinesByProductID(t *testing.T) {
	snapshot := NewCartSnapshot("user@example.com", map[string]int32{
		"p3": 1,
		"p1": 2,
		"p2": 5,
	})

	require.Len(t, snapshot.Lines, 3)
	assert.Equal(t, "p1", snapshot.Lines[0].ProductID)
	assert.Equal(t, "p2", snapshot.Lines[1].ProductID)
	assert.Equal(t, "p3", snapshot.Lines[2].ProductID)
	assert.Equal(t, "user@example.com", snapshot.Identity)
}

func TestCartSnapshotEmpty(t *testing.T) {
	assert.True(t, NewCartSnapshot("u", nil).Empty())
	assert.False(t, NewCartSnapshot("u", map[string]int32{"p1": 1}).Empty())
}

func TestCartSnapshotValidate(t *testing.T) {
	snapshot := CartSnapshot{
		Identity: "u",
		Lines:    []CartLine{{ProductID: "p1", Qty: 0}, {ProductID: "p2", Qty: 3}},
	}

	errs := snapshot.Validate()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrCartQtyInvalid)
}
