package modem

import (
	"math/big"

	"github.com/akesling/galaxypad/expr"
	"github.com/pkg/errors"
)

// ErrTruncated is wrapped into the returned error when the bit string ends
// in the middle of an item.
var ErrTruncated = errors.New("modem: truncated modulation")

// ErrMalformed is wrapped into the returned error for any other malformed
// input (bad prefix, stray characters).
var ErrMalformed = errors.New("modem: malformed modulation")

var consAtom = expr.Sym("cons")

// Demodulate decodes a complete modulation. It is an error for bits to
// contain anything left over once the single item has been decoded.
func Demodulate(bits string) (expr.Expr, error) {
	e, rest, err := DemodulatePartial(bits)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, errors.Wrapf(ErrMalformed, "leftover bits %q", rest)
	}
	return e, nil
}

// consFrame is a pending cons cell: head is nil until its half of the pair
// has been decoded.
type consFrame struct {
	head expr.Expr
}

// DemodulatePartial decodes the first complete item from bits and returns
// it along with whatever bits remain. It runs on an explicit stack of
// pending cons cells instead of recursion, since a modulated image/pixel
// list nests one cons cell per element.
func DemodulatePartial(bits string) (expr.Expr, string, error) {
	pos := 0
	var stack []*consFrame
	var item expr.Expr

	for {
		if len(bits)-pos < 2 {
			return nil, "", errors.Wrapf(ErrTruncated, "at bit %d", pos)
		}
		prefix := bits[pos : pos+2]
		switch prefix {
		case "00":
			item = expr.Nil
			pos += 2
		case "01", "10":
			v, next, err := decodeInt(bits, pos, prefix == "10")
			if err != nil {
				return nil, "", err
			}
			item = expr.Int(v)
			pos = next
		case "11":
			stack = append(stack, &consFrame{})
			pos += 2
			continue
		default:
			return nil, "", errors.Wrapf(ErrMalformed, "invalid prefix %q", prefix)
		}

		for {
			if len(stack) == 0 {
				return item, bits[pos:], nil
			}
			top := stack[len(stack)-1]
			if top.head == nil {
				top.head = item
				break
			}
			stack = stack[:len(stack)-1]
			item = expr.Ap(expr.Ap(consAtom, top.head), item)
		}
	}
}

func decodeInt(bits string, pos int, negative bool) (*big.Int, int, error) {
	pos += 2 // sign prefix already identified by caller
	k := 0
	for pos+k < len(bits) && bits[pos+k] == '1' {
		k++
	}
	if pos+k >= len(bits) {
		return nil, 0, errors.Wrapf(ErrTruncated, "unterminated unary length at bit %d", pos)
	}
	pos += k + 1 // skip the run of 1s and the terminating 0
	width := 4 * k
	if len(bits)-pos < width {
		return nil, 0, errors.Wrapf(ErrTruncated, "magnitude at bit %d", pos)
	}
	magnitude := bits[pos : pos+width]
	pos += width

	v := new(big.Int)
	if k > 0 {
		if _, ok := v.SetString(magnitude, 2); !ok {
			return nil, 0, errors.Wrapf(ErrMalformed, "magnitude bits %q", magnitude)
		}
	}
	if negative {
		v.Neg(v)
	}
	return v, pos, nil
}
