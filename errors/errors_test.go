package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrDependencyCycle, "X -> Y -> X")

	assert.True(t, Is(err, ErrDependencyCycle))
	assert.False(t, Is(err, ErrMissingSymbol))
	assert.Contains(t, err.Error(), "X -> Y -> X")
	assert.Contains(t, err.Error(), "dependency cycle")
}

func TestNewMissingSymbolError(t *testing.T) {
	err := NewMissingSymbolError("class FBModel")

	require.True(t, Is(err, ErrMissingSymbol))
	assert.Contains(t, err.Error(), "FBModel")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Contains(t, hints[0], "snapshot")
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"nil", nil, false},
		{"missing symbol", NewMissingSymbolError("Add"), true},
		{"cycle", Wrap(ErrDependencyCycle, "A -> A"), true},
		{"fetch", Wrap(ErrFetch, "GET http://example.com"), false},
		{"not found", NewNotFoundError("page %s", "FBModel"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.err))
		})
	}
}

func TestIsNotFoundError(t *testing.T) {
	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsNotFoundError(New("other")))
	assert.True(t, IsNotFoundError(NewNotFoundError("entity %q", "FBModel")))
	assert.True(t, IsNotFoundError(Wrap(ErrNotFound, "toc")))
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithHint(nil, "hint"))
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func ExampleWrap() {
	err := Wrap(ErrFetch, "GET toctree.json")
	fmt.Println(err)
	// Output: GET toctree.json: fetch failed
}
