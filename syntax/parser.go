// This file is part of galaxypad.
//
// Package syntax implements the textual "ap"-prefix codec for Galaxy
// expressions: Parse/Unparse and the NAME = TOKENS… definitions-file
// format.
//
// The parser is iterative, not recursive descent: Galaxy's definitions
// contain deeply right-nested cons lists that trivially blow a call stack
// in a naive implementation. It keeps a work stack of partial applications;
// each new token either fills the first unset child of the stack's top
// frame, fills the second (popping any applications that become complete as
// a result), or is itself pushed as a fresh, still-empty application.
package syntax

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/akesling/galaxypad/expr"
	"github.com/pkg/errors"
)

var intToken = regexp.MustCompile(`^-?\d+$`)

// Parse consumes a single complete expression from s. It is an error for
// tokens to remain unconsumed, or for the expression to be incomplete.
func Parse(s string) (expr.Expr, error) {
	return ParseTokens(fields(s))
}

// ParseTokens parses a single complete expression from tokens. It returns
// an error if any tokens remain afterwards or if the expression was
// missing an operand.
func ParseTokens(tokens []string) (expr.Expr, error) {
	e, rest, err := parsePrefix(tokens)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, errors.Errorf("syntax: unexpected trailing tokens %q", rest)
	}
	return e, nil
}

// parsePrefix parses one expression off the front of tokens and returns it
// along with whatever tokens remain.
func parsePrefix(tokens []string) (expr.Expr, []string, error) {
	if len(tokens) == 0 {
		return nil, nil, errors.New("syntax: empty expression")
	}

	var stack []*expr.App
	var cur expr.Expr

	for len(tokens) > 0 {
		tok := tokens[0]
		tokens = tokens[1:]

		if tok == "ap" {
			cur = expr.Ap(nil, nil)
		} else {
			a, err := atomFromToken(tok)
			if err != nil {
				return nil, tokens, err
			}
			cur = a
		}

		if len(stack) > 0 {
			top := stack[len(stack)-1]
			switch {
			case top.Left == nil:
				top.Left = cur
			case top.Right == nil:
				top.Right = cur
				// If the right child is itself an incomplete application,
				// it must go on the stack above its parent right now: the
				// parent's two fields are both non-nil as of this
				// assignment, which would otherwise make the pop loop
				// below mistake it for complete.
				if app, ok := cur.(*expr.App); ok {
					stack = append(stack, app)
				}
			default:
				return nil, tokens, errors.Errorf("syntax: parser stack corrupted near %q", tok)
			}
		}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.Left != nil && top.Right != nil {
				stack = stack[:len(stack)-1]
				cur = top
			} else {
				break
			}
		}

		if app, ok := cur.(*expr.App); ok && (app.Left == nil || app.Right == nil) {
			stack = append(stack, app)
		}

		if len(stack) == 0 {
			break
		}
	}

	if len(stack) != 0 {
		return nil, tokens, errors.New("syntax: incomplete application, missing operand")
	}
	return cur, tokens, nil
}

func atomFromToken(tok string) (*expr.Atom, error) {
	if intToken.MatchString(tok) {
		n, ok := new(big.Int).SetString(tok, 10)
		if !ok {
			return nil, errors.Errorf("syntax: malformed integer literal %q", tok)
		}
		return expr.Int(n), nil
	}
	return expr.Sym(tok), nil
}

// fields splits on any run of whitespace, matching the "whitespace-separated
// tokens" grammar of spec.md §4.B.
func fields(s string) []string {
	return strings.Fields(s)
}
