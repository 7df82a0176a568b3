package onair

// Signal is something which tells the world that the operator is on air.
type Signal interface {
	// Ensure switches the signal to the given state.
	Ensure(State) error
	// Update refreshes everything the signal has discovered about its
	// targets.
	Update() error
	Dispose() error

	GetType() Type
}
