package headercache

import (
	"fmt"
	"testing"
)

func TestGetSet(t *testing.T) {
	c := New[string](4)

	if _, ok := c.Get("missing"); ok {
		t.Error("unexpected hit")
	}

	c.Set("eyJhbGciOiJIUzI1NiJ9", "parsed")
	got, ok := c.Get("eyJhbGciOiJIUzI1NiJ9")
	if !ok || got != "parsed" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestCapacityBound(t *testing.T) {
	c := New[int](4)

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("h%d", i), i)
	}

	if c.Len() > 4 {
		t.Errorf("cache grew to %d entries", c.Len())
	}

	// The most recently inserted entry must survive.
	if v, ok := c.Get("h9"); !ok || v != 9 {
		t.Errorf("got %d, %v", v, ok)
	}
}

func TestDefaultCapacity(t *testing.T) {
	c := New[int](0)
	for i := 0; i < DefaultCapacity*2; i++ {
		c.Set(fmt.Sprintf("h%d", i), i)
	}
	if c.Len() > DefaultCapacity {
		t.Errorf("cache grew to %d entries", c.Len())
	}
}

func TestReset(t *testing.T) {
	c := New[int](4)
	c.Set("a", 1)
	c.Reset()

	if _, ok := c.Get("a"); ok {
		t.Error("entry survived reset")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d after reset", c.Len())
	}
}
