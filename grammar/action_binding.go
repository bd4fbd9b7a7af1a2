package grammar

import "github.com/dekarrin/gudgeon/action"

// These are the GrammarAction values bound onto symbols materialized by
// multiplicity desugaring (grammar package's makeMultiplicitySymbol). They
// exist as distinct package-level values (rather than calling action.Lookup
// by name each time) so a synthesized symbol's action is wired at the
// moment of construction, matching how the built-in actions are described
// in spec §4.3 as "bound to the synthesized rule, not merely named on it."
var (
	optionalAction   = action.Optional
	collectAction    = action.Collect
	collectSepAction = action.CollectSep
	zeroOrMoreAction = action.ZeroOrMore
)
