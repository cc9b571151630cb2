package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = New("sentinel")

type codedError struct{ code string }

func (e *codedError) Error() string { return e.code }

func TestWrapKeepsIdentity(t *testing.T) {
	wrapped := Wrapf(WithStack(errSentinel), "loading %s", "user")

	assert.True(t, Is(wrapped, errSentinel))
	assert.Equal(t, "loading user: sentinel", wrapped.Error())
	assert.Contains(t, fmt.Sprintf("%+v", wrapped), "TestWrapKeepsIdentity")
	assert.NoError(t, Wrap(nil, "ignored"))
}

func TestAsFindsTypedError(t *testing.T) {
	err := Wrap(&codedError{code: "E42"}, "outer")

	var target *codedError
	assert.True(t, As(err, &target))
	assert.Equal(t, "E42", target.code)
}
