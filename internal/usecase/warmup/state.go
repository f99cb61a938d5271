package warmup

import "sync/atomic"

// State tracks whether the cache warmup finished. It starts false and moves
// to true exactly once; nothing in the running service moves it back.
type State struct {
	ready atomic.Bool
}

var defaultState = &State{}

// Default is the process-wide state read by health checks.
func Default() *State {
	return defaultState
}

func NewState() *State {
	return &State{}
}

func (s *State) Ready() bool {
	return s.ready.Load()
}

// markReady reports whether this call performed the transition.
func (s *State) markReady() bool {
	return s.ready.CompareAndSwap(false, true)
}
