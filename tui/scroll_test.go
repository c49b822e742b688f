package tui

// pending returns a buffered notification without blocking, standing in for
// the program running wait.
func (s *scrollSync) pending() (turnsChangedMsg, bool) {
	select {
	case n := <-s.ch:
		return turnsChangedMsg{count: n}, true
	default:
		return turnsChangedMsg{}, false
	}
}
