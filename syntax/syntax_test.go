package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnparseRoundTrip(t *testing.T) {
	cases := []string{
		"1",
		"-1",
		"galaxy",
		":1337",
		"ap ap add 1 2",
		"ap ap ap s add inc 1",
		"ap ap cons 0 nil",
		"ap ap cons 1 ap ap cons 2 nil",
	}
	for _, c := range cases {
		e, err := Parse(c)
		require.NoError(t, err, c)
		assert.Equal(t, c, Unparse(e), c)
	}
}

func TestParseRejectsTrailingTokens(t *testing.T) {
	_, err := Parse("1 2")
	assert.Error(t, err)
}

func TestParseRejectsIncompleteApplication(t *testing.T) {
	_, err := Parse("ap ap add 1")
	assert.Error(t, err)
}

func TestParseDeepRightNestedList(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		sb.WriteString("ap ap cons ")
		sb.WriteString("0")
		sb.WriteString(" ")
	}
	sb.WriteString("nil")
	e, err := Parse(sb.String())
	require.NoError(t, err)
	assert.Equal(t, sb.String(), Unparse(e))
}

func TestLoadDefinitionsDuplicateIsError(t *testing.T) {
	_, err := ReadDefinitions(strings.NewReader("galaxy = 1\ngalaxy = 2\n"))
	assert.Error(t, err)
}

func TestLoadDefinitionsSkipsBlankLines(t *testing.T) {
	env, err := ReadDefinitions(strings.NewReader("\ngalaxy = ap ap add 1 2\n\n:0 = t\n"))
	require.NoError(t, err)
	assert.Len(t, env, 2)
	assert.Contains(t, env, "galaxy")
	assert.Contains(t, env, ":0")
}
