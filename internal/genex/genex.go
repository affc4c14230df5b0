// Package genex evaluates deferred `$<...>` generator expressions
// embedded in target property values. Expressions stay unevaluated while
// the graph is built and only collapse to literal text once a concrete
// build configuration is chosen.
//
// Supported forms:
//
//	$<CONFIG:name>              1 if the active configuration equals name
//	$<COMPILER_ID:name>         1 if the compiler identity equals name
//	$<BOOL:var>                 1 unless var's value is a false token
//	$<STREQUAL:a,b>             1 if a and b evaluate to the same string
//	$<AND:c...> $<OR:c...>      short-circuit over boolean children
//	$<NOT:c>                    boolean negation
//	$<TARGET_PROPERTY:t,prop>   resolved property values of target t
//	$<TARGET_PROPERTY:prop>     same, for the subject target
//	$<cond:payload>             payload when cond is 1, nothing otherwise
//
// Evaluation is pure: the same expression against the same context always
// yields the same result.
package genex

import (
	"errors"

	"github.com/crest-build/crest/internal/target"
)

// MaxDepth bounds expression nesting so that a malformed or maliciously
// deep expression fails instead of recursing without limit.
const MaxDepth = 64

var (
	ErrSyntax          = errors.New("malformed generator expression")
	ErrUnknownVariable = errors.New("undefined context variable")
	ErrDepthExceeded   = errors.New("generator expression nested too deeply")
)

// Context carries the concrete values one evaluation pass runs against.
// It must not change while an expression is being evaluated.
type Context struct {
	// Configuration is the active build configuration name, e.g. "Debug".
	// Empty means no configuration was ever selected; $<CONFIG:...> then
	// fails rather than silently evaluating to false.
	Configuration string

	// CompilerID identifies the compiler, e.g. "Clang" or "GNU".
	CompilerID string

	// Vars backs $<BOOL:...> lookups. A variable missing from the map is
	// an authoring error, not false.
	Vars map[string]string

	// Graph and Subject back $<TARGET_PROPERTY:...> lookups. The subject
	// target sees its full self view; other targets expose only their
	// usage surface.
	Graph   *target.Graph
	Subject string
}
