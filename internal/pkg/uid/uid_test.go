package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeIsMonotonic(t *testing.T) {
	gen, err := NewSnowflake(7)
	require.NoError(t, err)

	prev := gen.Generate()
	for range 1000 {
		next := gen.Generate()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestSnowflakeNodeBounds(t *testing.T) {
	_, err := NewSnowflake(1024)
	assert.ErrorIs(t, err, ErrInvalidNode)

	t.Setenv("SNOWFLAKE_NODE", "12")
	gen, err := NewSnowflake(-1)
	require.NoError(t, err)
	assert.Positive(t, gen.Generate())
}

func TestUUIDVersion(t *testing.T) {
	id, err := uuid.Parse(NewUUID().Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}
