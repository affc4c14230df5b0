package genex

import (
	"fmt"
	"strings"
)

type exprKind int

const (
	exprLiteral exprKind = iota
	exprConcat
	exprConfig
	exprCompilerID
	exprBool
	exprStrEqual
	exprAnd
	exprOr
	exprNot
	exprTargetProperty
	exprGuard
)

// Expr is one node of a parsed expression tree: either terminal literal
// text or an operator over child expressions.
type Expr struct {
	kind exprKind
	text string // literal text, or operator name for error reporting
	args []*Expr
}

// arity of each named operator; max < 0 means unbounded.
var operators = map[string]struct {
	kind     exprKind
	min, max int
}{
	"CONFIG":          {exprConfig, 1, 1},
	"COMPILER_ID":     {exprCompilerID, 1, 1},
	"BOOL":            {exprBool, 1, 1},
	"STREQUAL":        {exprStrEqual, 2, 2},
	"AND":             {exprAnd, 1, -1},
	"OR":              {exprOr, 1, -1},
	"NOT":             {exprNot, 1, 1},
	"TARGET_PROPERTY": {exprTargetProperty, 1, 2},
}

type parser struct {
	src string
	pos int
}

// Parse turns a property value string into an expression tree. Plain
// strings parse to a single literal; `$<...>` fragments become operator
// nodes and may nest.
func Parse(s string) (*Expr, error) {
	p := &parser{src: s}
	e, err := p.sequence("")
	if err != nil {
		return nil, err
	}
	if p.pos != len(s) {
		return nil, p.syntaxf("unexpected %q", s[p.pos])
	}
	return e, nil
}

func (p *parser) syntaxf(format string, a ...any) error {
	return fmt.Errorf("%w: %s (at offset %d of %q)", ErrSyntax, fmt.Sprintf(format, a...), p.pos, p.src)
}

// sequence parses literal runs and $<...> nodes until EOF or one of the
// stop bytes, returning a single node (concat when mixed).
func (p *parser) sequence(stops string) (*Expr, error) {
	var parts []*Expr
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, &Expr{kind: exprLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if strings.IndexByte(stops, c) >= 0 {
			break
		}
		if c == '$' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '<' {
			flush()
			e, err := p.genex()
			if err != nil {
				return nil, err
			}
			parts = append(parts, e)
			continue
		}
		lit.WriteByte(c)
		p.pos++
	}
	flush()

	switch len(parts) {
	case 0:
		return &Expr{kind: exprLiteral}, nil
	case 1:
		return parts[0], nil
	}
	return &Expr{kind: exprConcat, args: parts}, nil
}

// genex parses one `$<...>` fragment with p.pos on the '$'.
func (p *parser) genex() (*Expr, error) {
	p.pos += 2 // consume "$<"

	// guarded form: the condition is itself an expression
	if strings.HasPrefix(p.src[p.pos:], "$<") {
		cond, err := p.genex()
		if err != nil {
			return nil, err
		}
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		payload, err := p.sequence(">")
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return &Expr{kind: exprGuard, text: "guard", args: []*Expr{cond, payload}}, nil
	}

	name := p.ident()
	if name == "" {
		return nil, p.syntaxf("expected expression name after $<")
	}

	// literal guard condition: $<1:payload> and $<0:payload>
	if (name == "0" || name == "1") && p.pos < len(p.src) && p.src[p.pos] == ':' {
		p.pos++
		payload, err := p.sequence(">")
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		cond := &Expr{kind: exprLiteral, text: name}
		return &Expr{kind: exprGuard, text: "guard", args: []*Expr{cond, payload}}, nil
	}

	op, ok := operators[name]
	if !ok {
		return nil, p.syntaxf("unknown expression $<%s>", name)
	}

	if p.pos >= len(p.src) {
		return nil, p.syntaxf("unterminated $<%s", name)
	}
	if p.src[p.pos] == '>' {
		return nil, p.syntaxf("$<%s> takes arguments", name)
	}
	if p.src[p.pos] != ':' {
		return nil, p.syntaxf("expected ':' after $<%s", name)
	}
	p.pos++

	var args []*Expr
	for {
		a, err := p.sequence(",>")
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.pos >= len(p.src) {
			return nil, p.syntaxf("unterminated $<%s:...>", name)
		}
		if p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		p.pos++ // '>'
		break
	}

	if len(args) < op.min || (op.max >= 0 && len(args) > op.max) {
		return nil, p.syntaxf("$<%s> got %d arguments", name, len(args))
	}
	return &Expr{kind: op.kind, text: name, args: args}, nil
}

func (p *parser) expect(c byte) error {
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return p.syntaxf("expected %q", string(c))
	}
	p.pos++
	return nil
}

// ident consumes an operator name: uppercase letters, digits, underscore.
func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}
