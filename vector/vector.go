// Package vector implements the host-friendly "vector view" shadow of a
// cons-list expression tree: the empty list, an integer, a proper pair, or
// a proper list. See spec.md §4.D.
//
// Vectorize walks the cons spine of an expression iteratively, since image
// and pixel lists produced by the driver nest one cons cell per element and
// can run thousands of elements deep; only the (shallow) elements themselves
// are vectorized by recursive descent.
package vector

import (
	"math/big"

	"github.com/akesling/galaxypad/expr"
	"github.com/pkg/errors"
)

// ErrNotVectorizable is wrapped into the returned error when an expression
// has no corresponding view (an unresolved symbol, a partial application).
var ErrNotVectorizable = errors.New("vector: expression has no vector view")

// View is the sum type of vector views: List, Int, or Pair.
type View interface {
	isView()
}

// List is a proper list view, including the empty list as List(nil).
type List []View

// Int is an integer view.
type Int struct {
	*big.Int
}

// Pair is an improper pair view: a cons cell whose tail is not itself a
// list (and not nil).
type Pair struct {
	Head, Tail View
}

func (List) isView() {}
func (Int) isView()  {}
func (Pair) isView() {}

// IntN builds an Int view from a native int, for tests and small literals.
func IntN(n int64) Int { return Int{big.NewInt(n)} }

// Vectorize converts an expression into its vector view. e must already be
// in weak-head normal form for every cons cell and integer along its spine;
// callers typically pass the result of engine.Evaluate.
func Vectorize(e expr.Expr) (View, error) {
	switch v := e.(type) {
	case *expr.Atom:
		if v.IsInt() {
			return Int{new(big.Int).Set(v.Int)}, nil
		}
		if v.Name() == "nil" {
			return List(nil), nil
		}
		return nil, errors.Wrapf(ErrNotVectorizable, "atom %q", v.Name())
	case *expr.App:
		return vectorizeCons(v)
	default:
		return nil, errors.Wrap(ErrNotVectorizable, "unrecognized expression node")
	}
}

// vectorizeCons walks a chain of `ap (ap cons h) t` cells iteratively,
// collecting heads until the spine bottoms out at nil (a proper list) or
// something else (an improper pair at the end of the collected heads).
func vectorizeCons(e *expr.App) (View, error) {
	var heads []expr.Expr
	var tail expr.Expr = e
	for {
		app, ok := tail.(*expr.App)
		if !ok {
			break
		}
		head, rest, ok := expr.ConsParts(app)
		if !ok {
			break
		}
		heads = append(heads, head)
		tail = rest
	}
	if len(heads) == 0 {
		return nil, errors.Wrap(ErrNotVectorizable, "application is not a cons cell")
	}

	tailView, err := Vectorize(tail)
	if err != nil {
		// The final tail isn't itself vectorizable as a bare value (e.g. an
		// unresolved atom): only valid when it terminates a proper list
		// position, which requires it to vectorize successfully. Propagate.
		return nil, err
	}

	headViews := make([]View, len(heads))
	for i, h := range heads {
		hv, err := Vectorize(h)
		if err != nil {
			return nil, err
		}
		headViews[i] = hv
	}

	if lst, ok := tailView.(List); ok {
		return append(append(List{}, headViews...), lst...), nil
	}

	// Improper: attach the last head and the non-list tail as a Pair,
	// then prepend the remaining heads as a proper list wrapping it.
	last := Pair{Head: headViews[len(headViews)-1], Tail: tailView}
	if len(headViews) == 1 {
		return last, nil
	}
	return append(List{}, append(headViews[:len(headViews)-1], View(last))...), nil
}

// Unvectorize builds the right-nested cons expression denoted by v.
func Unvectorize(v View) (expr.Expr, error) {
	switch x := v.(type) {
	case Int:
		return expr.Int(x.Int), nil
	case List:
		if len(x) == 0 {
			return expr.Nil, nil
		}
		tail, err := Unvectorize(x[len(x)-1])
		if err != nil {
			return nil, err
		}
		// The last element of a List terminates with nil unless it is
		// itself a Pair, in which case it already denotes an improper
		// tail and must not be cons-nil-wrapped.
		if _, ok := x[len(x)-1].(Pair); !ok {
			tail = expr.Ap(expr.Ap(expr.Sym("cons"), tail), expr.Nil)
		}
		for i := len(x) - 2; i >= 0; i-- {
			head, err := Unvectorize(x[i])
			if err != nil {
				return nil, err
			}
			tail = expr.Ap(expr.Ap(expr.Sym("cons"), head), tail)
		}
		return tail, nil
	case Pair:
		head, err := Unvectorize(x.Head)
		if err != nil {
			return nil, err
		}
		tail, err := Unvectorize(x.Tail)
		if err != nil {
			return nil, err
		}
		return expr.Ap(expr.Ap(expr.Sym("cons"), head), tail), nil
	default:
		return nil, errors.Errorf("vector: unrecognized view %T", v)
	}
}
