// Package engine implements the lazy, memoizing reducer: weak-head
// evaluation of Galaxy expressions against a definitions environment. See
// spec.md §4.E.
//
// Reduction inspects at most three levels of an application's left spine
// per rewrite step (the deepest built-in redex, the ternary combinators,
// needs exactly that much). The sequence of rewrite steps needed to reach
// normal form is run by Evaluate's outer work loop over a single
// current-expression pointer, with a shared step budget threaded through
// every nested evaluation a step performs. Those nested evaluations
// (forcing a spine level, an argument, or both halves of a cons pair) are
// ordinary recursive calls, so Go stack depth grows with how deeply such
// forcing nests: forcing a cons list, for instance, recurses once per cell.
package engine

import (
	"math/big"
	"sort"

	"github.com/akesling/galaxypad/expr"
	"github.com/akesling/galaxypad/syntax"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Sentinel errors, named per spec.md §7's error taxonomy.
var (
	ErrUndefinedAtom            = errors.New("engine: undefined atom")
	ErrTypeMismatch             = errors.New("engine: type mismatch")
	ErrEvaluationBudgetExceeded = errors.New("engine: evaluation budget exceeded")
)

// primitiveNames are the fixed built-in operators: as bare (unapplied)
// atoms they are already in weak-head normal form rather than undefined.
var primitiveNames = map[string]bool{
	"t": true, "f": true, "nil": true,
	"neg": true, "inc": true, "dec": true, "add": true, "mul": true, "div": true,
	"lt": true, "eq": true,
	"i": true, "s": true, "c": true, "b": true,
	"cons": true, "vec": true, "car": true, "cdr": true,
	"isnil": true,
}

// PrimitiveNames returns the fixed built-in operator names in sorted order,
// for diagnostics (e.g. a CLI flag listing what the reducer recognizes
// outside of the loaded definitions environment).
func PrimitiveNames() []string {
	names := lo.Keys(primitiveNames)
	sort.Strings(names)
	return names
}

// Reducer evaluates expressions against a fixed, read-only definitions
// environment. A Reducer is safe to reuse across any number of independent
// top-level Evaluate calls; it holds no per-call mutable state itself.
type Reducer struct {
	Env syntax.Environment
	// Budget caps the number of rewrite steps a single top-level Evaluate
	// call (and everything it forces transitively) may perform. Zero means
	// unlimited.
	Budget int
}

// New builds a Reducer bound to env, with the given step budget (0 for
// unlimited).
func New(env syntax.Environment, budget int) *Reducer {
	return &Reducer{Env: env, Budget: budget}
}

// counter threads a single step budget through one top-level Evaluate call
// and every nested evaluation it performs while forcing spines and
// arguments.
type counter struct {
	budget, steps int
}

func (c *counter) tick(partial expr.Expr) error {
	c.steps++
	if c.budget > 0 && c.steps > c.budget {
		return errors.Wrapf(ErrEvaluationBudgetExceeded, "after %d steps, partial result %s", c.steps, syntax.Unparse(partial))
	}
	return nil
}

// Evaluate reduces e to weak-head normal form, populating eval slots along
// the way. It is idempotent: calling it again on the same node (or on any
// sub-node the reduction forced on its own, such as a spine level or an
// argument) returns the memoized result immediately.
func (r *Reducer) Evaluate(e expr.Expr) (expr.Expr, error) {
	return r.evaluate(e, &counter{budget: r.Budget})
}

// EvaluateInt evaluates e and demands the result be an integer atom.
func (r *Reducer) EvaluateInt(e expr.Expr) (*big.Int, error) {
	return r.evaluateInt(e, &counter{budget: r.Budget})
}

func (r *Reducer) evaluate(e expr.Expr, c *counter) (expr.Expr, error) {
	if v := e.Eval(); v != nil {
		return v, nil
	}
	current := e
	for {
		next, changed, err := r.step(current, c)
		if err != nil {
			return nil, err
		}
		if !changed {
			// next is current itself, or its memoized normal form.
			current = next
			break
		}
		if err := c.tick(next); err != nil {
			return nil, err
		}
		current = next
	}
	if e.Eval() == nil {
		e.SetEval(current)
	}
	return current, nil
}

func (r *Reducer) evaluateInt(e expr.Expr, c *counter) (*big.Int, error) {
	v, err := r.evaluate(e, c)
	if err != nil {
		return nil, err
	}
	a, ok := v.(*expr.Atom)
	if !ok || !a.IsInt() {
		return nil, errors.Wrapf(ErrTypeMismatch, "expected integer, got %s", syntax.Unparse(v))
	}
	return a.Int, nil
}

// step performs at most one rewrite of n, reporting whether progress was
// made. changed=false with a nil error means n is already in (or has just
// reached) weak-head normal form.
func (r *Reducer) step(n expr.Expr, c *counter) (expr.Expr, bool, error) {
	if v := n.Eval(); v != nil {
		return v, false, nil
	}
	switch cur := n.(type) {
	case *expr.Atom:
		return r.stepAtom(cur)
	case *expr.App:
		return r.stepApp(cur, c)
	default:
		return nil, false, errors.Errorf("engine: unrecognized expression node %T", n)
	}
}

func (r *Reducer) stepAtom(a *expr.Atom) (expr.Expr, bool, error) {
	if a.IsInt() || primitiveNames[a.Sym] {
		return a, false, nil
	}
	if rhs, ok := r.Env[a.Sym]; ok {
		return rhs, true, nil
	}
	return nil, false, errors.Wrapf(ErrUndefinedAtom, "%q", a.Sym)
}

// stepApp inspects up to three levels of n's forced left spine (left,
// left2, left3) to find a matching redex, per spec.md §4.E's evaluation
// strategy. Variable names x, y, z follow the source convention: x is n's
// own argument (outermost-applied), y the next one in, z the innermost.
func (r *Reducer) stepApp(n *expr.App, c *counter) (expr.Expr, bool, error) {
	left, err := r.evaluate(n.Left, c)
	if err != nil {
		return nil, false, err
	}
	x := n.Right

	if la, ok := left.(*expr.Atom); ok {
		switch la.Sym {
		case "neg":
			v, err := r.evaluateInt(x, c)
			if err != nil {
				return nil, false, err
			}
			return expr.Int(new(big.Int).Neg(v)), true, nil
		case "inc":
			v, err := r.evaluateInt(x, c)
			if err != nil {
				return nil, false, err
			}
			return expr.Int(new(big.Int).Add(v, big.NewInt(1))), true, nil
		case "dec":
			v, err := r.evaluateInt(x, c)
			if err != nil {
				return nil, false, err
			}
			return expr.Int(new(big.Int).Sub(v, big.NewInt(1))), true, nil
		case "i":
			return x, true, nil
		case "nil":
			return expr.True, true, nil
		case "isnil":
			return expr.Ap(x, expr.Ap(expr.True, expr.Ap(expr.True, expr.False))), true, nil
		case "car":
			return expr.Ap(x, expr.True), true, nil
		case "cdr":
			return expr.Ap(x, expr.False), true, nil
		}
	}

	leftApp, ok := left.(*expr.App)
	if !ok {
		return n, false, nil
	}
	left2, err := r.evaluate(leftApp.Left, c)
	if err != nil {
		return nil, false, err
	}
	y := leftApp.Right

	if la2, ok := left2.(*expr.Atom); ok {
		switch la2.Sym {
		case "t":
			return y, true, nil
		case "f":
			return x, true, nil
		case "add":
			xv, yv, err := r.evaluateIntPair(x, y, c)
			if err != nil {
				return nil, false, err
			}
			return expr.Int(new(big.Int).Add(xv, yv)), true, nil
		case "mul":
			xv, yv, err := r.evaluateIntPair(x, y, c)
			if err != nil {
				return nil, false, err
			}
			return expr.Int(new(big.Int).Mul(xv, yv)), true, nil
		case "div":
			xv, yv, err := r.evaluateIntPair(x, y, c)
			if err != nil {
				return nil, false, err
			}
			if xv.Sign() == 0 {
				return nil, false, errors.Wrap(ErrTypeMismatch, "div: division by zero")
			}
			// y is the dividend (inner argument, closer to the operator),
			// x the divisor (outer argument). Quo truncates toward zero.
			return expr.Int(new(big.Int).Quo(yv, xv)), true, nil
		case "lt":
			xv, yv, err := r.evaluateIntPair(x, y, c)
			if err != nil {
				return nil, false, err
			}
			if yv.Cmp(xv) < 0 {
				return expr.True, true, nil
			}
			return expr.False, true, nil
		case "eq":
			xv, yv, err := r.evaluateIntPair(x, y, c)
			if err != nil {
				return nil, false, err
			}
			if yv.Cmp(xv) == 0 {
				return expr.True, true, nil
			}
			return expr.False, true, nil
		case "cons", "vec":
			res, err := r.evalCons(y, x, c)
			if err != nil {
				return nil, false, err
			}
			return res, true, nil
		}
	}

	leftApp2, ok := left2.(*expr.App)
	if !ok {
		return n, false, nil
	}
	left3, err := r.evaluate(leftApp2.Left, c)
	if err != nil {
		return nil, false, err
	}
	z := leftApp2.Right

	if la3, ok := left3.(*expr.Atom); ok {
		switch la3.Sym {
		case "s":
			return expr.Ap(expr.Ap(z, x), expr.Ap(y, x)), true, nil
		case "c":
			return expr.Ap(expr.Ap(z, x), y), true, nil
		case "b":
			return expr.Ap(z, expr.Ap(y, x)), true, nil
		case "cons", "vec":
			return expr.Ap(expr.Ap(x, z), y), true, nil
		}
	}
	return n, false, nil
}

// evaluateIntPair forces both x and y to integers, in that order; neither
// arithmetic rule depends on evaluation order since both sides are pure.
func (r *Reducer) evaluateIntPair(x, y expr.Expr, c *counter) (xv, yv *big.Int, err error) {
	xv, err = r.evaluateInt(x, c)
	if err != nil {
		return nil, nil, err
	}
	yv, err = r.evaluateInt(y, c)
	if err != nil {
		return nil, nil, err
	}
	return xv, yv, nil
}

// evalCons forces both halves of a pair to normal form and self-memoizes
// the constructed node, per spec.md §4.E's "Cons evaluation (special)":
// without this, a forced pair would keep matching the cons head of further
// car/cdr rules and be re-reduced indefinitely.
func (r *Reducer) evalCons(a, b expr.Expr, c *counter) (*expr.App, error) {
	av, err := r.evaluate(a, c)
	if err != nil {
		return nil, err
	}
	bv, err := r.evaluate(b, c)
	if err != nil {
		return nil, err
	}
	res := expr.Ap(expr.Ap(expr.Sym("cons"), av), bv)
	res.SetEval(res)
	return res, nil
}
