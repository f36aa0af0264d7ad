package events

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Event represents a structured state change emitted by the membership core.
type Event struct {
	Type       string
	Attributes map[string]string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(*Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events.
// It is the default for engines whose caller does not care about events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(*Event) {}

// Recorder collects emitted events in order. Tests use it to assert on the
// event stream produced by an operation.
type Recorder struct {
	Events []*Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt *Event) {
	if evt == nil {
		return
	}
	r.Events = append(r.Events, evt)
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func formatAddr(addr common.Address) string {
	return addr.Hex()
}
