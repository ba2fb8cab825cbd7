package syntax

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/akesling/galaxypad/expr"
	"github.com/pkg/errors"
)

// Environment is the immutable (after loading) mapping from procedure name
// to bound expression. Names are otherwise ordinary atoms; package engine
// resolves an unbound atom by looking it up here.
type Environment map[string]expr.Expr

// LoadDefinitions reads a definitions file: one NAME = TOKEN TOKEN … per
// non-blank line. Blank lines are ignored; there are no comments. Duplicate
// names are an error.
func LoadDefinitions(path string) (Environment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "syntax: open %s", path)
	}
	defer f.Close()
	env, err := ReadDefinitions(f)
	if err != nil {
		return nil, errors.Wrapf(err, "syntax: load %s", path)
	}
	return env, nil
}

// ReadDefinitions is the io.Reader-based counterpart of LoadDefinitions, for
// embedding definitions or reading them from something other than a plain
// file (e.g. an in-memory galaxy.txt fixture in tests).
func ReadDefinitions(r io.Reader) (Environment, error) {
	env := make(Environment)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		name, rhs, err := splitDefinition(line)
		if err != nil {
			return nil, errors.Wrapf(err, "syntax: line %d", lineNo)
		}
		if _, dup := env[name]; dup {
			return nil, errors.Errorf("syntax: line %d: duplicate definition of %q", lineNo, name)
		}
		e, err := Parse(rhs)
		if err != nil {
			return nil, errors.Wrapf(err, "syntax: line %d: defining %q", lineNo, name)
		}
		env[name] = e
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "syntax: scan")
	}
	return env, nil
}

func splitDefinition(line string) (name, rhs string, err error) {
	parts := strings.SplitN(line, "=", 2)
	if len(parts) != 2 {
		return "", "", errors.Errorf("malformed definition %q, expected NAME = TOKENS", line)
	}
	name = strings.TrimSpace(parts[0])
	rhs = strings.TrimSpace(parts[1])
	if name == "" {
		return "", "", errors.Errorf("malformed definition %q, empty name", line)
	}
	if rhs == "" {
		return "", "", errors.Errorf("malformed definition %q, empty right-hand side", line)
	}
	return name, rhs, nil
}
