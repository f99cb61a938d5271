package warmup

// ResetForTest puts the state back to not-ready. It only exists in test builds.
func (s *State) ResetForTest() {
	s.ready.Store(false)
}
