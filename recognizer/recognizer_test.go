package recognizer

import (
	"testing"

	"github.com/dekarrin/gudgeon/location"
	"github.com/stretchr/testify/assert"
)

func Test_Literal_Match(t *testing.T) {
	testCases := []struct {
		name       string
		value      string
		ignoreCase bool
		input      string
		pos        int
		expectOK   bool
		expectText string
	}{
		{name: "exact match", value: "if", input: "if (x)", pos: 0, expectOK: true, expectText: "if"},
		{name: "no match", value: "if", input: "else", pos: 0, expectOK: false},
		{name: "mid-string anchor", value: "then", input: "x then y", pos: 2, expectOK: true, expectText: "then"},
		{name: "case insensitive", value: "IF", ignoreCase: true, input: "if", pos: 0, expectOK: true, expectText: "IF"},
		{name: "case sensitive mismatch", value: "IF", ignoreCase: false, input: "if", pos: 0, expectOK: false},
		{name: "runs past end of input", value: "long", input: "lo", pos: 0, expectOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			lit := NewLiteral(tc.value, tc.ignoreCase)
			matched, ok := lit.Match(tc.input, tc.pos)
			assert.Equal(tc.expectOK, ok)
			if tc.expectOK {
				assert.Equal(tc.expectText, matched)
			}
		})
	}
}

func Test_Regex_Match_IsAnchored(t *testing.T) {
	assert := assert.New(t)

	re, err := NewRegex(`[0-9]+`, false, location.Location{})
	assert.NoError(err)

	matched, ok := re.Match("123abc", 0)
	assert.True(ok)
	assert.Equal("123", matched)

	_, ok = re.Match("abc123", 0)
	assert.False(ok, "regex must not search forward from pos")

	matched, ok = re.Match("abc123", 3)
	assert.True(ok)
	assert.Equal("123", matched)
}

func Test_Regex_CompileError(t *testing.T) {
	assert := assert.New(t)

	_, err := NewRegex(`[`, false, location.New("g.pg", "KEYWORD: /[/;", 10))
	assert.Error(err)
}

func Test_Regex_FullMatch(t *testing.T) {
	assert := assert.New(t)

	re, err := NewRegex(`\w+`, false, location.Location{})
	assert.NoError(err)

	assert.True(re.FullMatch("if"))
	assert.False(re.FullMatch("if "))
}

func Test_Sentinels(t *testing.T) {
	assert := assert.New(t)

	matched, ok := Empty.Match("anything", 3)
	assert.True(ok)
	assert.Equal("", matched)

	_, ok = EOF.Match("abc", 1)
	assert.False(ok)

	_, ok = EOF.Match("abc", 3)
	assert.True(ok)

	_, ok = Stop.Match("abc", 0)
	assert.False(ok)
}
