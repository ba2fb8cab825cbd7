// Package modem implements the self-delimiting bit-level "modulation" codec
// used to exchange expressions with the remote alien server: a prefix tag
// (nil / positive int / negative int / cons cell) followed by a
// variable-length payload. See spec.md §4.C for the exact bit layout.
//
// Both directions are implemented with an explicit work stack rather than
// recursion: modulated pixel/image lists from the driver can nest a cons
// cell per list element, easily exceeding a few thousand levels.
package modem

import (
	"math/big"
	"strings"

	"github.com/akesling/galaxypad/expr"
	"github.com/pkg/errors"
)

// ErrNotModulatable is wrapped into the returned error when an expression
// is not a plain value tree (nil / integer / cons of value trees).
var ErrNotModulatable = errors.New("modem: expression is not modulatable")

// Modulate encodes a value-shaped expression (nil, integers, and
// cons/vec pairs) into its ASCII '0'/'1' wire representation.
func Modulate(e expr.Expr) (string, error) {
	var sb strings.Builder
	// Stack of pending nodes to encode, processed depth-first. Pushing
	// tail before head means head is popped (and fully encoded) first,
	// matching the "11" + modulate(head) + modulate(tail) layout.
	stack := []expr.Expr{e}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := n.(type) {
		case *expr.Atom:
			if v.IsInt() {
				sb.WriteString(encodeInt(v.Int))
				continue
			}
			if v.Name() == "nil" {
				sb.WriteString("00")
				continue
			}
			return "", errors.Wrapf(ErrNotModulatable, "atom %q", v.Name())
		case *expr.App:
			head, tail, ok := expr.ConsParts(v)
			if !ok {
				return "", errors.Wrap(ErrNotModulatable, "application is not a cons cell")
			}
			sb.WriteString("11")
			stack = append(stack, tail, head)
		default:
			return "", errors.Wrap(ErrNotModulatable, "unrecognized expression node")
		}
	}
	return sb.String(), nil
}

func encodeInt(n *big.Int) string {
	if n.Sign() == 0 {
		return "010"
	}
	sign := "01"
	if n.Sign() < 0 {
		sign = "10"
	}
	abs := new(big.Int).Abs(n)
	bin := abs.Text(2)
	units := (len(bin) + 3) / 4
	pad := units*4 - len(bin)

	var sb strings.Builder
	sb.WriteString(sign)
	sb.WriteString(strings.Repeat("1", units))
	sb.WriteByte('0')
	sb.WriteString(strings.Repeat("0", pad))
	sb.WriteString(bin)
	return sb.String()
}
