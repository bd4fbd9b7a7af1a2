package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Location_LineColumn(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		position   int
		expectLine int
		expectCol  int
	}{
		{
			name:       "start of input",
			input:      "S: \"a\";",
			position:   0,
			expectLine: 1,
			expectCol:  1,
		},
		{
			name:       "second line",
			input:      "S: \"a\";\nT: \"b\";",
			position:   9,
			expectLine: 2,
			expectCol:  2,
		},
		{
			name:       "third line after two newlines",
			input:      "a\nb\nc",
			position:   4,
			expectLine: 3,
			expectCol:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			loc := New("", tc.input, tc.position)
			assert.Equal(tc.expectLine, loc.Line())
			assert.Equal(tc.expectCol, loc.Column())
		})
	}
}

func Test_Location_String_IncludesFileName(t *testing.T) {
	assert := assert.New(t)

	loc := New("grammar.pg", "S: \"a\";", 3)
	assert.Equal("grammar.pg:1:4", loc.String())
}

func Test_Location_LazyEvaluation(t *testing.T) {
	assert := assert.New(t)

	loc := New("", "a\nb", 2)
	assert.False(loc.lineColSet)
	_ = loc.Line()
	assert.True(loc.lineColSet)
}
