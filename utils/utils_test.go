package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type myError struct{}

func (*myError) Error() string { return "mine" }

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { Must(error(nil)) })
	assert.Panics(t, func() { Must(errors.New("boom")) })

	var typed *myError
	assert.NotPanics(t, func() { Must(typed) })

	assert.Equal(t, 3, Must1(3, error(nil)))
	assert.Panics(t, func() { Must1(3, errors.New("boom")) })
}

func TestOr(t *testing.T) {
	assert.Equal(t, "a", Or("a", "b"))
	assert.Equal(t, "b", Or("", "b"))
	assert.Equal(t, 7, Or(0, 7))
}

func TestAssert(t *testing.T) {
	assert.NotPanics(t, func() { Assert(1, "never") })
	assert.PanicsWithValue(t, "Assert failed: got 0 items", func() { Assert(0, "got %d items", 0) })
}
