package syntax

import (
	"strings"

	"github.com/akesling/galaxypad/expr"
)

// Unparse renders e back into the space-separated "ap"-prefix token
// language. Unparse(Parse(s)) == s for any well-formed s.
func Unparse(e expr.Expr) string {
	nodes := expr.Preorder(e)
	tokens := make([]string, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *expr.App:
			tokens = append(tokens, "ap")
		case *expr.Atom:
			tokens = append(tokens, v.Name())
		}
	}
	return strings.Join(tokens, " ")
}
