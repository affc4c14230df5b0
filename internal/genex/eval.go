package genex

import (
	"fmt"
	"strings"

	"github.com/crest-build/crest/internal/target"
)

var falseTokens = map[string]bool{
	"":      true,
	"0":     true,
	"off":   true,
	"false": true,
	"n":     true,
	"no":    true,
}

// Truthy reports whether a textual value counts as true: non-empty and
// not one of the recognized false tokens (case-insensitive).
func Truthy(s string) bool {
	return !falseTokens[strings.ToLower(s)]
}

type result struct {
	text string
	// omit marks a value that disappears from the output entirely (a
	// guard whose condition was false), as opposed to an empty string.
	omit bool
}

// Expand parses and evaluates a property value against the context.
// The boolean is false when the whole value is omitted from output.
func Expand(s string, ctx *Context) (string, bool, error) {
	e, err := Parse(s)
	if err != nil {
		return "", false, err
	}
	r, err := eval(e, ctx, 0)
	if err != nil {
		return "", false, err
	}
	return r.text, !r.omit, nil
}

// ExpandAll expands a value list, dropping omitted entries.
func ExpandAll(values []string, ctx *Context) ([]string, error) {
	var out []string
	for _, v := range values {
		text, keep, err := Expand(v, ctx)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, text)
		}
	}
	return out, nil
}

func boolText(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func eval(e *Expr, ctx *Context, depth int) (result, error) {
	if depth > MaxDepth {
		return result{}, fmt.Errorf("%w (limit %d)", ErrDepthExceeded, MaxDepth)
	}

	switch e.kind {
	case exprLiteral:
		return result{text: e.text}, nil

	case exprConcat:
		var sb strings.Builder
		omitted := true
		for _, part := range e.args {
			r, err := eval(part, ctx, depth+1)
			if err != nil {
				return result{}, err
			}
			if !r.omit {
				omitted = false
				sb.WriteString(r.text)
			}
		}
		// a concat of nothing but false guards vanishes as a whole
		return result{text: sb.String(), omit: omitted}, nil

	case exprConfig:
		if ctx.Configuration == "" {
			return result{}, fmt.Errorf("$<CONFIG>: no active configuration: %w", ErrUnknownVariable)
		}
		want, err := evalText(e.args[0], ctx, depth+1)
		if err != nil {
			return result{}, err
		}
		return result{text: boolText(ctx.Configuration == want)}, nil

	case exprCompilerID:
		if ctx.CompilerID == "" {
			return result{}, fmt.Errorf("$<COMPILER_ID>: no compiler identity: %w", ErrUnknownVariable)
		}
		want, err := evalText(e.args[0], ctx, depth+1)
		if err != nil {
			return result{}, err
		}
		return result{text: boolText(ctx.CompilerID == want)}, nil

	case exprBool:
		name, err := evalText(e.args[0], ctx, depth+1)
		if err != nil {
			return result{}, err
		}
		val, ok := ctx.Vars[name]
		if !ok {
			return result{}, fmt.Errorf("$<BOOL:%s>: %w", name, ErrUnknownVariable)
		}
		return result{text: boolText(Truthy(val))}, nil

	case exprStrEqual:
		a, err := evalText(e.args[0], ctx, depth+1)
		if err != nil {
			return result{}, err
		}
		b, err := evalText(e.args[1], ctx, depth+1)
		if err != nil {
			return result{}, err
		}
		return result{text: boolText(a == b)}, nil

	case exprAnd:
		for _, arg := range e.args {
			b, err := evalBool(arg, ctx, depth+1)
			if err != nil {
				return result{}, err
			}
			if !b {
				return result{text: "0"}, nil
			}
		}
		return result{text: "1"}, nil

	case exprOr:
		for _, arg := range e.args {
			b, err := evalBool(arg, ctx, depth+1)
			if err != nil {
				return result{}, err
			}
			if b {
				return result{text: "1"}, nil
			}
		}
		return result{text: "0"}, nil

	case exprNot:
		b, err := evalBool(e.args[0], ctx, depth+1)
		if err != nil {
			return result{}, err
		}
		return result{text: boolText(!b)}, nil

	case exprTargetProperty:
		return evalTargetProperty(e, ctx, depth)

	case exprGuard:
		b, err := evalBool(e.args[0], ctx, depth+1)
		if err != nil {
			return result{}, err
		}
		if !b {
			return result{omit: true}, nil
		}
		return eval(e.args[1], ctx, depth+1)
	}

	return result{}, fmt.Errorf("%w: unhandled expression kind %d", ErrSyntax, int(e.kind))
}

func evalTargetProperty(e *Expr, ctx *Context, depth int) (result, error) {
	if ctx.Graph == nil {
		return result{}, fmt.Errorf("$<TARGET_PROPERTY>: no target graph in context: %w", ErrUnknownVariable)
	}

	name := ctx.Subject
	propArg := e.args[0]
	if len(e.args) == 2 {
		var err error
		name, err = evalText(e.args[0], ctx, depth+1)
		if err != nil {
			return result{}, err
		}
		propArg = e.args[1]
	}
	prop, err := evalText(propArg, ctx, depth+1)
	if err != nil {
		return result{}, err
	}

	// the subject sees its full self view; anything else only exposes
	// its usage surface, exactly as a link edge would
	var view *target.View
	if name == ctx.Subject {
		view, err = ctx.Graph.Resolve(name)
	} else {
		view, err = ctx.Graph.Usage(name)
	}
	if err != nil {
		return result{}, err
	}
	return result{text: strings.Join(view.Get(prop), ";")}, nil
}

// evalText evaluates a child and flattens omission to an empty string;
// only a top-level guard removes a value from output.
func evalText(e *Expr, ctx *Context, depth int) (string, error) {
	r, err := eval(e, ctx, depth)
	if err != nil {
		return "", err
	}
	if r.omit {
		return "", nil
	}
	return r.text, nil
}

// evalBool evaluates a condition operand, requiring a strict "1" or "0".
func evalBool(e *Expr, ctx *Context, depth int) (bool, error) {
	r, err := eval(e, ctx, depth)
	if err != nil {
		return false, err
	}
	switch r.text {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: condition evaluated to %q, want \"1\" or \"0\"", ErrSyntax, r.text)
}
