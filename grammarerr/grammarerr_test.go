package grammarerr

import (
	"errors"
	"testing"

	"github.com/dekarrin/gudgeon/location"
	"github.com/stretchr/testify/assert"
)

func Test_New_HasNoLocation(t *testing.T) {
	assert := assert.New(t)

	err := New("unknown symbol %q", "Foo")
	assert.Equal("unknown symbol \"Foo\"", err.Error())
	assert.Nil(err.Location())
}

func Test_At_IncludesLocation(t *testing.T) {
	assert := assert.New(t)

	loc := location.New("g.pg", "S: \"a\";", 0)
	err := At(loc, "duplicate terminal %q", "a")
	assert.Equal("g.pg:1:1: duplicate terminal \"a\"", err.Error())
}

func Test_Wrap_PreservesCause(t *testing.T) {
	assert := assert.New(t)

	cause := errors.New("regex syntax error")
	loc := location.New("", "/[/", 0)
	err := Wrap(cause, loc, "regex compile error in /%s/", "[")

	assert.ErrorIs(err, cause)
}

func Test_FullMessage_WrapsDetail(t *testing.T) {
	assert := assert.New(t)

	err := New("bad grammar").WithDetail("a very long explanation that should be wrapped across more than one line of terminal output")
	full := err.FullMessage()
	assert.Contains(full, "bad grammar")
	assert.Contains(full, "\n")
}
