package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedCounter_TopTieBreak(t *testing.T) {
	c := newOrderedCounter()
	c.Increment("first")
	c.Increment("second")
	c.Increment("second")
	c.Increment("first")

	key, count, ok := c.Top()
	assert.True(t, ok)
	assert.Equal(t, "first", key, "on a tie the first-incremented key wins")
	assert.Equal(t, 2, count)
}

func TestOrderedCounter_TopEmpty(t *testing.T) {
	c := newOrderedCounter()
	key, count, ok := c.Top()
	assert.False(t, ok)
	assert.Equal(t, "", key)
	assert.Equal(t, 0, count)
}

func TestOrderedCounter_MostCommon(t *testing.T) {
	c := newOrderedCounter()
	for _, k := range []string{"a", "b", "b", "c", "c", "b", "d"} {
		c.Increment(k)
	}

	got := c.MostCommon()
	assert.Equal(t, []keyCount{
		{Key: "b", Count: 3},
		{Key: "c", Count: 2},
		{Key: "a", Count: 1},
		{Key: "d", Count: 1},
	}, got)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 7, c.Total())
}
