package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetMissesOnEmptyCache(t *testing.T) {
	c := NewMemory(time.Minute)
	_, ok := c.Get("todo")
	assert.False(t, ok)
}

func TestSetThenGet(t *testing.T) {
	c := NewMemory(time.Minute)
	c.Set("todo", true)

	val, ok := c.Get("todo")
	assert.True(t, ok)
	assert.True(t, val)
}

func TestEntriesExpire(t *testing.T) {
	c := NewMemory(10 * time.Millisecond)
	c.Set("todo", true)
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("todo")
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	c := NewMemory(time.Minute)
	c.Set("todo", false)
	c.Delete("todo")

	_, ok := c.Get("todo")
	assert.False(t, ok)
}
