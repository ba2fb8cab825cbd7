// Package expr implements the in-memory tree representation of Galaxy
// expressions: atoms and binary applications, each carrying a write-once
// evaluation slot used by package engine to memoize weak-head normal forms.
//
// Two nodes compare equal iff the preorder sequence of their atom names
// matches; application ("ap") nodes are positional skeletons only. The slot
// is never part of that comparison.
package expr

import "math/big"

// Expr is the sum type of the expression tree: either an *Atom or an *App.
type Expr interface {
	// Eval returns the node's cached weak-head normal form, or nil if the
	// node has not been reduced yet.
	Eval() Expr
	// SetEval fills the node's evaluation slot. Callers must not call this
	// more than once per node; package engine enforces that invariant.
	SetEval(Expr)
	isExpr()
}

// Atom is a leaf node: an integer literal, a primitive operator name, a
// procedure reference (":N" or a bare name such as "galaxy"), or any other
// opaque symbol resolved later via an environment.
type Atom struct {
	// Int holds the parsed value when the atom is an integer literal, else nil.
	Int *big.Int
	// Sym holds the symbolic name when Int is nil.
	Sym string

	slot Expr
}

// App is a binary application node: Left is the function position, Right
// the argument.
type App struct {
	Left, Right Expr

	slot Expr
}

func (a *Atom) isExpr() {}
func (a *App) isExpr()  {}

// Eval returns the memoized weak-head normal form, if any.
func (a *Atom) Eval() Expr { return a.slot }

// SetEval fills the atom's evaluation slot.
func (a *Atom) SetEval(v Expr) { a.slot = v }

// Eval returns the memoized weak-head normal form, if any.
func (a *App) Eval() Expr { return a.slot }

// SetEval fills the application's evaluation slot.
func (a *App) SetEval(v Expr) { a.slot = v }

// Int builds an integer-literal atom.
func Int(n *big.Int) *Atom { return &Atom{Int: new(big.Int).Set(n)} }

// IntN builds an integer-literal atom from a native int, for tests and
// small literals produced internally by the reducer.
func IntN(n int64) *Atom { return &Atom{Int: big.NewInt(n)} }

// Sym builds a symbolic atom: a primitive name, a procedure reference, or
// any other opaque name.
func Sym(name string) *Atom { return &Atom{Sym: name} }

// Ap builds an application node.
func Ap(left, right Expr) *App { return &App{Left: left, Right: right} }

// Name returns the atom's canonical textual form: the decimal
// representation of Int if set, else Sym.
func (a *Atom) Name() string {
	if a.Int != nil {
		return a.Int.String()
	}
	return a.Sym
}

// IsInt reports whether the atom is an integer literal.
func (a *Atom) IsInt() bool { return a.Int != nil }

// Well-known primitive atoms. These are distinct *Atom values but compare
// equal to any other atom of the same name via Equal.
var (
	Nil   = Sym("nil")
	True  = Sym("t")
	False = Sym("f")
)

// frame is a work-stack entry used by the iterative preorder walk below.
type frame struct {
	e Expr
}

// Preorder returns every node of e in root-left-right (NLR) preorder,
// computed iteratively with an explicit stack: Galaxy's definitions produce
// cons-list chains that are too deep for recursive descent.
func Preorder(e Expr) []Expr {
	if e == nil {
		return nil
	}
	var out []Expr
	stack := []frame{{e}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, top.e)
		if app, ok := top.e.(*App); ok {
			stack = append(stack, frame{app.Right}, frame{app.Left})
		}
	}
	return out
}

// Equal compares two expressions by the preorder sequence of their atom
// names (App nodes contribute no token to the comparison, matching the
// "ap" skeleton semantics of spec.md's equality rule). Evaluation slots are
// never consulted.
func Equal(x, y Expr) bool {
	xs := atomNames(x)
	ys := atomNames(y)
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if xs[i] != ys[i] {
			return false
		}
	}
	return true
}

// ConsParts reports whether e has the shape `ap (ap cons head) tail` or its
// `vec` alias, returning (head, tail, true) if so.
func ConsParts(e *App) (head, tail Expr, ok bool) {
	inner, ok := e.Left.(*App)
	if !ok {
		return nil, nil, false
	}
	a, ok := inner.Left.(*Atom)
	if !ok || a.IsInt() || (a.Sym != "cons" && a.Sym != "vec") {
		return nil, nil, false
	}
	return inner.Right, e.Right, true
}

func atomNames(e Expr) []string {
	var names []string
	for _, n := range Preorder(e) {
		if a, ok := n.(*Atom); ok {
			names = append(names, a.Name())
		}
	}
	return names
}
