package vector

import (
	"testing"

	"github.com/akesling/galaxypad/expr"
	"github.com/akesling/galaxypad/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cons(h, t expr.Expr) expr.Expr { return expr.Ap(expr.Ap(expr.Sym("cons"), h), t) }

func TestVectorizeEmptyList(t *testing.T) {
	v, err := Vectorize(expr.Nil)
	require.NoError(t, err)
	assert.Equal(t, List(nil), v)
}

func TestVectorizeInteger(t *testing.T) {
	v, err := Vectorize(expr.IntN(42))
	require.NoError(t, err)
	assert.Equal(t, IntN(42), v)
}

func TestVectorizeProperList(t *testing.T) {
	e := cons(expr.IntN(1), cons(expr.IntN(2), expr.Nil))
	v, err := Vectorize(e)
	require.NoError(t, err)
	assert.Equal(t, List{IntN(1), IntN(2)}, v)
}

func TestVectorizeImproperPair(t *testing.T) {
	e := cons(expr.IntN(1), expr.IntN(2))
	v, err := Vectorize(e)
	require.NoError(t, err)
	assert.Equal(t, Pair{Head: IntN(1), Tail: IntN(2)}, v)
}

func TestVectorizeListEndingInImproperPair(t *testing.T) {
	// [1, 2 . 3] -> cons(1, cons(2, 3))
	e := cons(expr.IntN(1), cons(expr.IntN(2), expr.IntN(3)))
	v, err := Vectorize(e)
	require.NoError(t, err)
	assert.Equal(t, List{IntN(1), Pair{Head: IntN(2), Tail: IntN(3)}}, v)
}

func TestVectorizeConsAndVecAreSynonyms(t *testing.T) {
	e := expr.Ap(expr.Ap(expr.Sym("vec"), expr.IntN(1)), expr.Nil)
	v, err := Vectorize(e)
	require.NoError(t, err)
	assert.Equal(t, List{IntN(1)}, v)
}

func TestUnvectorizeRoundTrip(t *testing.T) {
	cases := []View{
		List(nil),
		IntN(0),
		IntN(-7),
		List{IntN(1), IntN(2), IntN(3)},
		Pair{Head: IntN(1), Tail: IntN(2)},
		List{IntN(1), Pair{Head: IntN(2), Tail: IntN(3)}},
		List{List{IntN(1), IntN(2)}, IntN(3)},
	}
	for _, v := range cases {
		e, err := Unvectorize(v)
		require.NoError(t, err)
		back, err := Vectorize(e)
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}
}

func TestVectorizeUnparseRoundTrip(t *testing.T) {
	const src = "ap ap cons 1 ap ap cons 2 nil"
	e, err := syntax.Parse(src)
	require.NoError(t, err)
	v, err := Vectorize(e)
	require.NoError(t, err)
	back, err := Unvectorize(v)
	require.NoError(t, err)
	assert.Equal(t, syntax.Unparse(e), syntax.Unparse(back))
}

func TestVectorizeDeepList(t *testing.T) {
	var e expr.Expr = expr.Nil
	for i := 0; i < 2000; i++ {
		e = cons(expr.IntN(int64(i)), e)
	}
	v, err := Vectorize(e)
	require.NoError(t, err)
	lst, ok := v.(List)
	require.True(t, ok)
	assert.Len(t, lst, 2000)
}

func TestVectorizeRejectsUnresolvedAtom(t *testing.T) {
	_, err := Vectorize(expr.Sym("galaxy"))
	assert.Error(t, err)
}

func TestVectorizeRejectsNonConsApplication(t *testing.T) {
	_, err := Vectorize(expr.Ap(expr.Sym("add"), expr.IntN(1)))
	assert.Error(t, err)
}
