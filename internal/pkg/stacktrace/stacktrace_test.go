package stacktrace

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const thisFile = "internal/pkg/stacktrace/stacktrace_test.go:"

//go:noinline
func explode() {
	panic("kaboom")
}

func TestCapture(t *testing.T) {
	frames := Capture()

	require.NotEmpty(t, frames)
	assert.True(t, strings.HasPrefix(frames[0], thisFile), frames[0])
	for _, f := range frames {
		assert.True(t, strings.HasPrefix(f, "internal/"), f)
		assert.NotContains(t, f, "stacktrace.go:")
	}
}

func TestCapture_FromRecover(t *testing.T) {
	var frames []string
	func() {
		defer func() {
			if recover() != nil {
				frames = Capture()
			}
		}()
		explode()
	}()

	require.GreaterOrEqual(t, len(frames), 2)
	for _, f := range frames {
		assert.True(t, strings.HasPrefix(f, thisFile), f)
	}
}

func TestAttr(t *testing.T) {
	attr := Attr()

	assert.Equal(t, "stack", attr.Key)
	require.Equal(t, slog.KindAny, attr.Value.Kind())
	frames, ok := attr.Value.Any().([]string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(frames[0], thisFile), frames[0])
}
