package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsSentinel(t *testing.T) {
	err := Wrap(ErrUnknownCategory, "axis discipline")
	require.Error(t, err)
	assert.True(t, Is(err, ErrUnknownCategory))
	assert.Contains(t, err.Error(), "axis discipline")
}

func TestNewInvalidNodeError(t *testing.T) {
	err := NewInvalidNodeError("node %q: radius %v", "n1", -1.0)
	assert.True(t, Is(err, ErrInvalidNode))
	assert.Contains(t, err.Error(), `node "n1": radius -1`)
}

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrNotFound, true},
		{"wrapped", Wrap(ErrNotFound, "instance abc"), true},
		{"formatted", NewNotFoundError("node %s", "x"), true},
		{"unrelated", New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFoundError(tt.err))
		})
	}
}

func TestWithHint(t *testing.T) {
	err := WithHint(NewInvalidRequestError("bad zoom factor"), "factor must be > 0")
	assert.True(t, IsInvalidRequestError(err))
	assert.Contains(t, FlattenHints(err), "factor must be > 0")
}
