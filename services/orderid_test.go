package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderIDFormat(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		id := NewOrderID()
		assert.Regexp(t, orderIDPattern, id)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestCanonicalTables(t *testing.T) {
	canon, numbers, err := canonicalTables([]string{" 12", "003", "7"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"12", "3", "7"}, canon)
	assert.Equal(t, []int{3, 7, 12}, numbers)

	_, _, err = canonicalTables([]string{"1.5"})
	assert.Error(t, err)
}

func TestDiffInts(t *testing.T) {
	removed, added := diffInts([]int{5, 6}, []int{5, 8})
	assert.Equal(t, []int{6}, removed)
	assert.Equal(t, []int{8}, added)

	removed, added = diffInts([]int{1}, []int{1})
	assert.Empty(t, removed)
	assert.Empty(t, added)
}
