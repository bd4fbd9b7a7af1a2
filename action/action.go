// Package action holds the built-in semantic actions a grammar symbol can
// reference by name (via the `@name` rule annotation or an implicit
// desugared name such as `collect`). Resolving these names to callables is
// the grammar finalizer's job (see grammar.Grammar's action-resolution
// step); this package only supplies the callables themselves.
//
// Evaluating a parse tree against these actions is the downstream runtime
// parser's responsibility and out of scope here, so the implementations
// below are exercised directly against synthetic child-value slices in this
// package's tests rather than against any parser of ours.
package action

// Action is a semantic action: given the name of the rule (LHS nonterminal)
// that fired and the already-evaluated values of its RHS children (EMPTY
// elided), it returns the value to associate with the parent node.
type Action func(ruleName string, children []interface{}) interface{}

// Attribute describes one named match recorded for a rule, mirroring
// grammar.PGAttribute closely enough for Obj to build a record from it
// without importing the grammar package (which would create an import
// cycle, since grammar resolves action names from this package).
type Attribute struct {
	Name         string
	Index        int
	Boolean      bool // true for `?=` (presence) assignments
	OneOrMore    bool // true if this name was assigned more than once
}

// PassNone always returns nil, regardless of children. Bound to EMPTY and
// EOF, whose tokens never carry a meaningful value.
func PassNone(_ string, _ []interface{}) interface{} {
	return nil
}

// PassSingle returns the value of the sole RHS child. Used for productions
// that exist only to rename or wrap a single symbol.
func PassSingle(_ string, children []interface{}) interface{} {
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// Collect implements the fold for a one-or-more-without-separator
// production pair `X_1 -> X_1 X | X`: a one-child call seeds a new list, a
// two-child call appends the second child to the first (the accumulated
// list so far).
func Collect(_ string, children []interface{}) interface{} {
	switch len(children) {
	case 1:
		return []interface{}{children[0]}
	case 2:
		return appendTo(children[0], children[1])
	default:
		return nil
	}
}

// CollectSep implements the fold for a one-or-more-with-separator
// production pair `X_1_S -> X_1_S S X | X`: identical to Collect but the
// three-child case drops the middle (separator) child.
func CollectSep(_ string, children []interface{}) interface{} {
	switch len(children) {
	case 1:
		return []interface{}{children[0]}
	case 3:
		return appendTo(children[0], children[2])
	default:
		return nil
	}
}

func appendTo(list interface{}, elem interface{}) []interface{} {
	existing, _ := list.([]interface{})
	out := make([]interface{}, len(existing), len(existing)+1)
	copy(out, existing)
	return append(out, elem)
}

// Optional implements `X_opt -> X | EMPTY`: a present child is returned as
// is, an absent one (the EMPTY alternative evaluates to no children) yields
// nil.
func Optional(_ string, children []interface{}) interface{} {
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// ZeroOrMore implements the wrapper `X_0 -> X_1 | EMPTY`. It is bound
// directly as a symbol's resolved action at materialization time rather
// than looked up by name, since it is never referenced by a user-facing
// action_name (see grammar's multiplicity desugaring).
func ZeroOrMore(_ string, children []interface{}) interface{} {
	if len(children) > 0 {
		return children[0]
	}
	return []interface{}{}
}

// NewObj builds the `obj` action for a rule with named matches: it returns
// a map from attribute name to value, consulting attrs for each name's RHS
// index and whether it is a boolean (`?=`) assignment (value becomes
// whether the child is non-nil rather than the child itself).
func NewObj(attrs []Attribute) Action {
	// copy so later mutation of the caller's slice can't affect the bound
	// closure.
	own := make([]Attribute, len(attrs))
	copy(own, attrs)

	return func(ruleName string, children []interface{}) interface{} {
		record := make(map[string]interface{}, len(own))
		for _, a := range own {
			if a.Index < 0 || a.Index >= len(children) {
				continue
			}
			val := children[a.Index]
			if a.Boolean {
				record[a.Name] = val != nil
			} else {
				record[a.Name] = val
			}
		}
		record["_rule"] = ruleName
		return record
	}
}

// builtins maps the names resolvable by `@name` rule annotations and the
// implicit multiplicity-desugaring names to their Action. "obj" is
// deliberately absent: it must be built per-rule via NewObj since it needs
// attribute metadata the generic lookup does not have access to.
var builtins = map[string]Action{
	"pass_none":   PassNone,
	"pass_single": PassSingle,
	"collect":     Collect,
	"collect_sep": CollectSep,
	"optional":    Optional,
}

// Lookup returns the built-in Action registered under name, and whether one
// was found. It does not know about "obj"; callers that need it must use
// NewObj directly once they have the rule's attribute list.
func Lookup(name string) (Action, bool) {
	a, ok := builtins[name]
	return a, ok
}
