package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/dekarrin/gudgeon/registry"
	"github.com/dekarrin/gudgeon/server/middle"
	"github.com/dekarrin/gudgeon/server/result"
	"github.com/dekarrin/gudgeon/server/serr"
)

// HTTPCompileGrammar returns a HandlerFunc that compiles a grammar from
// source and persists the result under the logged-in user's account.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the logged-in user of the client making the request.
func (api API) HTTPCompileGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCompileGrammar)
}

func (api API) epCompileGrammar(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(registry.User)

	var compileReq CompileGrammarRequest
	err := parseJSON(req, &compileReq)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	if compileReq.Source == "" {
		return result.BadRequest("source: property is empty or missing from request", "empty source")
	}

	name := compileReq.Name
	if name == "" {
		name = "unnamed grammar"
	}

	compiled, err := api.Backend.CompileGrammar(req.Context(), user.ID, name, compileReq.Source)
	if err != nil {
		if errors.Is(err, serr.ErrBadArgument) {
			return result.Response(
				http.StatusUnprocessableEntity,
				map[string]string{"error": err.Error()},
				"user '%s' submitted grammar '%s' that did not compile: %s", user.Username, name, err.Error(),
			)
		}
		return result.InternalServerError(err.Error())
	}

	resp := GrammarModel{
		URI:             PathPrefix + "/grammars/" + compiled.Entry.ID.String(),
		ID:              compiled.Entry.ID.String(),
		Name:            compiled.Entry.Name,
		StartSymbol:     compiled.Entry.StartSymbol,
		TerminalCount:   compiled.Entry.TerminalCount,
		NonTermCount:    compiled.Entry.NonTermCount,
		ProductionCount: compiled.Entry.ProductionCount,
		Created:         compiled.Entry.Created.Format(time.RFC3339),
	}

	return result.Created(resp, "user '%s' compiled grammar '%s' (%s)", user.Username, resp.Name, resp.ID)
}

// HTTPGetGrammar returns a HandlerFunc that retrieves the summary of a
// previously compiled grammar by ID.
//
// The handler has requirements for the request context it receives, and if
// the requirements are not met it may return an HTTP-500. The context must
// contain the ID of the grammar being retrieved and the logged-in user of the
// client making the request.
func (api API) HTTPGetGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetGrammar)
}

func (api API) epGetGrammar(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(registry.User)
	id := requireIDParam(req)

	g, err := api.Backend.GetGrammarSummary(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	resp := GrammarModel{
		URI:             PathPrefix + "/grammars/" + g.ID.String(),
		ID:              g.ID.String(),
		Name:            g.Name,
		StartSymbol:     g.StartSymbol,
		TerminalCount:   g.TerminalCount,
		NonTermCount:    g.NonTermCount,
		ProductionCount: g.ProductionCount,
		Created:         g.Created.Format(time.RFC3339),
	}

	return result.OK(resp, "user '%s' got grammar '%s' (%s)", user.Username, resp.Name, resp.ID)
}
