package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Collect_SeedsThenAppends(t *testing.T) {
	assert := assert.New(t)

	seed := Collect("E_1", []interface{}{"x"})
	assert.Equal([]interface{}{"x"}, seed)

	grown := Collect("E_1", []interface{}{seed, "y"})
	assert.Equal([]interface{}{"x", "y"}, grown)
}

func Test_CollectSep_DropsSeparator(t *testing.T) {
	assert := assert.New(t)

	seed := CollectSep("E_1_comma", []interface{}{"x"})
	grown := CollectSep("E_1_comma", []interface{}{seed, ",", "y"})
	assert.Equal([]interface{}{"x", "y"}, grown)
}

func Test_ZeroOrMore_EmptyWhenAbsent(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]interface{}{}, ZeroOrMore("E_0", nil))
	assert.Equal([]interface{}{"x"}, ZeroOrMore("E_0", []interface{}{[]interface{}{"x"}}))
}

func Test_Optional(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(Optional("X_opt", nil))
	assert.Equal("v", Optional("X_opt", []interface{}{"v"}))
}

func Test_NewObj_BuildsRecordByIndexAndBoolAssignment(t *testing.T) {
	assert := assert.New(t)

	obj := NewObj([]Attribute{
		{Name: "name", Index: 0},
		{Name: "exported", Index: 1, Boolean: true},
	})

	record := obj("Decl", []interface{}{"Foo", "pub"}).(map[string]interface{})
	assert.Equal("Foo", record["name"])
	assert.Equal(true, record["exported"])

	record = obj("Decl", []interface{}{"Bar", nil}).(map[string]interface{})
	assert.Equal(false, record["exported"])
}

func Test_Lookup(t *testing.T) {
	assert := assert.New(t)

	_, ok := Lookup("collect")
	assert.True(ok)

	_, ok = Lookup("obj")
	assert.False(ok, "obj must be built via NewObj, not the generic lookup")

	_, ok = Lookup("not_a_real_action")
	assert.False(ok)
}
