package common

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrModulePaused  = errors.New("module paused")
	ErrReentrantCall = errors.New("reentrant call")
)

// PauseView reports whether a named module is administratively paused.
type PauseView interface {
	IsPaused(module string) bool
}

// Guard rejects mutations against a paused module.
func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// ReentryGuard prevents a mutating operation from re-entering another
// mutating operation on the same participant while external calls (mint,
// burn, native transfer) run mid-operation. The flag is set on entry,
// cleared on exit, and checked at entry; view operations never take it.
type ReentryGuard struct {
	inFlight map[common.Address]bool
}

// NewReentryGuard constructs an empty guard.
func NewReentryGuard() *ReentryGuard {
	return &ReentryGuard{inFlight: make(map[common.Address]bool)}
}

// Enter marks the address as mid-operation. It fails deterministically when
// the address already holds the flag.
func (g *ReentryGuard) Enter(addr common.Address) error {
	if g == nil {
		return nil
	}
	if g.inFlight[addr] {
		return ErrReentrantCall
	}
	g.inFlight[addr] = true
	return nil
}

// Exit clears the in-flight flag. Callers defer Exit only after a
// successful Enter so a rejected re-entry cannot clear the outer flag.
func (g *ReentryGuard) Exit(addr common.Address) {
	if g == nil {
		return
	}
	delete(g.inFlight, addr)
}
