package debug

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stringer struct{}

func (stringer) String() string { return "from stringer" }

func TestGetStringValue(t *testing.T) {
	assert.Equal(t, "plain", getStringValue("plain"))
	assert.Equal(t, "lazy", getStringValue(func() string { return "lazy" }))
	assert.Equal(t, "boom", getStringValue(errors.New("boom")))
	assert.Equal(t, "from stringer", getStringValue(stringer{}))
	assert.Panics(t, func() { getStringValue(42) })
}

func TestAssertPassesOnTrue(t *testing.T) {
	assert.NotPanics(t, func() { Assert(true, "never") })
}

func TestAssertFailsOnlyWhenEnabled(t *testing.T) {
	if Enabled {
		assert.PanicsWithValue(t, "broken", func() { Assert(false, "broken") })
		errBroken := errors.New("broken")
		assert.PanicsWithError(t, "broken", func() { Assert(false, errBroken) })
	} else {
		assert.NotPanics(t, func() { Assert(false, "broken") })
	}
}
