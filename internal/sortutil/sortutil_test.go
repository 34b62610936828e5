package sortutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStablePathSortDoesNotMutate(t *testing.T) {
	in := []string{"b", "a", "c"}
	out := StablePathSort(in)
	assert.Equal(t, []string{"a", "b", "c"}, out)
	assert.Equal(t, []string{"b", "a", "c"}, in)
}

func TestKeysAndUnique(t *testing.T) {
	assert.Equal(t, []string{"x", "y"}, Keys(map[string]int{"y": 1, "x": 2}))
	assert.Empty(t, Keys(map[string]bool{}))
	assert.Equal(t, []string{"a", "b"}, Unique([]string{"b", "", "a", "b"}))
}
