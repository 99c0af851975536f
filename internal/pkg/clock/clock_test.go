package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual(t *testing.T) {
	// Arrange
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewManual(t0)

	// Act
	c.Advance(90 * time.Second)

	// Assert
	assert.Equal(t, t0.Add(90*time.Second), c.Now())

	c.Set(t0)
	assert.Equal(t, t0, c.Now())
}

func TestTimeClocker(t *testing.T) {
	before := time.Now()
	got := New().Now()
	assert.False(t, got.Before(before))
}
