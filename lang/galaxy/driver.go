// Package galaxy implements the interaction driver: the
// `interact(state, event) -> (state', images)` loop of spec.md §4.F that
// repeatedly applies the `galaxy` procedure to a view-shaped state and
// event, and bounces a modulated payload off a remote exchange whenever
// the result's flag demands it.
package galaxy

import (
	"context"

	"github.com/akesling/galaxypad/engine"
	"github.com/akesling/galaxypad/expr"
	"github.com/akesling/galaxypad/modem"
	"github.com/akesling/galaxypad/syntax"
	"github.com/akesling/galaxypad/vector"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sentinel errors, named per spec.md §7's error taxonomy.
var (
	// ErrInvariantViolation indicates the reducer or modulation codec
	// produced something the driver's own protocol assumptions disagree
	// with: a bug in those layers, not in caller input.
	ErrInvariantViolation = errors.New("galaxy: invariant violation")
	// ErrRemoteFailure wraps a non-200 response, transport error, or
	// timeout from the remote exchange.
	ErrRemoteFailure = errors.New("galaxy: remote exchange failed")
)

// Remote exchanges one modulated bit-string payload with the alien server
// and returns its reply, or an error. It is injected so Driver can be
// tested without a network.
type Remote func(ctx context.Context, bits string) (string, error)

// Driver runs the galaxy protocol loop against a fixed definitions
// environment. The zero value is not usable; build one with New.
type Driver struct {
	Reducer *engine.Reducer
	Remote  Remote
	Log     *logrus.Logger
}

// New builds a Driver bound to env (which must define "galaxy"), with the
// given per-call reduction step budget (0 for unlimited) and remote
// exchange callback. A nil log installs logrus's standard logger.
func New(env syntax.Environment, budget int, remote Remote, log *logrus.Logger) *Driver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Driver{Reducer: engine.New(env, budget), Remote: remote, Log: log}
}

// Interact runs the protocol to completion for one host event, performing
// as many remote exchanges as the flag demands, and returns the updated
// state view and the image list view to render.
func (d *Driver) Interact(ctx context.Context, state, event vector.View) (newState, images vector.View, err error) {
	for {
		stateExpr, err := vector.Unvectorize(state)
		if err != nil {
			return nil, nil, errors.Wrap(err, "galaxy: unvectorize state")
		}
		eventExpr, err := vector.Unvectorize(event)
		if err != nil {
			return nil, nil, errors.Wrap(err, "galaxy: unvectorize event")
		}

		call := expr.Ap(expr.Ap(expr.Sym("galaxy"), stateExpr), eventExpr)
		result, err := d.Reducer.Evaluate(call)
		if err != nil {
			return nil, nil, errors.Wrap(err, "galaxy: evaluate")
		}
		if err := checkRoundTrip(result); err != nil {
			return nil, nil, err
		}

		triple, err := vector.Vectorize(result)
		if err != nil {
			return nil, nil, errors.Wrap(err, "galaxy: vectorize result")
		}
		flag, nextState, data, err := unpackTriple(triple)
		if err != nil {
			return nil, nil, err
		}

		if flag == 0 {
			return nextState, data, nil
		}

		if d.Remote == nil {
			return nil, nil, errors.Wrap(ErrRemoteFailure, "remote exchange requested but no remote is configured")
		}
		reply, err := d.exchange(ctx, data)
		if err != nil {
			return nil, nil, err
		}
		state, event = nextState, reply
	}
}

// exchange modulates data, sends it through the injected Remote, and
// vectorizes the demodulated reply.
func (d *Driver) exchange(ctx context.Context, data vector.View) (vector.View, error) {
	dataExpr, err := vector.Unvectorize(data)
	if err != nil {
		return nil, errors.Wrap(err, "galaxy: unvectorize outgoing data")
	}
	bits, err := modem.Modulate(dataExpr)
	if err != nil {
		return nil, errors.Wrapf(ErrInvariantViolation, "outgoing data is not modulatable: %v", err)
	}

	replyBits, err := d.Remote(ctx, bits)
	if err != nil {
		return nil, errors.Wrap(ErrRemoteFailure, err.Error())
	}
	if replyBits == "" {
		return vector.List(nil), nil
	}

	replyExpr, err := modem.Demodulate(replyBits)
	if err != nil {
		return nil, errors.Wrap(err, "galaxy: demodulate remote reply")
	}
	replyView, err := vector.Vectorize(replyExpr)
	if err != nil {
		return nil, errors.Wrap(err, "galaxy: vectorize remote reply")
	}
	return replyView, nil
}

// checkRoundTrip enforces spec.md §4.F step 3: the reducer's result must be
// a plain value tree, verified by round-tripping it through the modulation
// codec. Failure here means the reducer produced something malformed, not
// a problem with caller input.
func checkRoundTrip(result expr.Expr) error {
	bits, err := modem.Modulate(result)
	if err != nil {
		return errors.Wrapf(ErrInvariantViolation, "result is not a plain value tree: %v", err)
	}
	back, err := modem.Demodulate(bits)
	if err != nil {
		return errors.Wrapf(ErrInvariantViolation, "re-demodulating result failed: %v", err)
	}
	if syntax.Unparse(result) != syntax.Unparse(back) {
		return errors.Wrap(ErrInvariantViolation, "modem round-trip mismatch on reducer result")
	}
	return nil
}

// unpackTriple decodes the (flag, (state, (data, term))) result shape,
// tolerating either a proper list or a chain of improper pairs for the
// rest positions.
func unpackTriple(v vector.View) (flag int64, state, data vector.View, err error) {
	flagV, rest, ok := takeHead(v)
	if !ok {
		return 0, nil, nil, errors.Wrap(ErrInvariantViolation, "reducer result is not a pair or list")
	}
	flagInt, ok := flagV.(vector.Int)
	if !ok || !flagInt.IsInt64() {
		return 0, nil, nil, errors.Wrap(ErrInvariantViolation, "reducer result's flag is not a small integer")
	}
	state, rest, ok = takeHead(rest)
	if !ok {
		return 0, nil, nil, errors.Wrap(ErrInvariantViolation, "reducer result is missing state")
	}
	data, _, ok = takeHead(rest)
	if !ok {
		return 0, nil, nil, errors.Wrap(ErrInvariantViolation, "reducer result is missing data")
	}
	return flagInt.Int64(), state, data, nil
}

// takeHead splits the first element off a List or Pair view.
func takeHead(v vector.View) (head, rest vector.View, ok bool) {
	switch x := v.(type) {
	case vector.List:
		if len(x) == 0 {
			return nil, nil, false
		}
		if len(x) == 1 {
			return x[0], vector.List(nil), true
		}
		return x[0], x[1:], true
	case vector.Pair:
		return x.Head, x.Tail, true
	default:
		return nil, nil, false
	}
}
