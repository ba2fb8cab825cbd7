// Package netlog provides the small correlation-id-tagged logging helper
// shared by the interaction driver's remote exchange. Every call to the
// remote alien server gets a fresh UUID, so each request/response pair can
// be picked out of the logs; separate exchanges within one interact call
// carry different ids.
package netlog

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Exchange is a logger scoped to one remote bit-string exchange, carrying a
// correlation id so its request/response pair can be grepped out of a
// shared log stream.
type Exchange struct {
	*logrus.Entry
	ID uuid.UUID
}

// NewExchange starts a new correlation-scoped logger against the given
// base logger. Pass logrus.StandardLogger() to use the package-level
// default.
func NewExchange(base *logrus.Logger) *Exchange {
	id := uuid.New()
	return &Exchange{
		Entry: base.WithField("exchange_id", id.String()),
		ID:    id,
	}
}
