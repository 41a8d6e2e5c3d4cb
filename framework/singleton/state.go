package singleton

// State is the initialization state of one registry entry.
//
// An entry only moves forward Uninitialized → InProgress → Ready. The single
// exception is a failed construction, which drops InProgress back to
// Uninitialized so a later caller can retry.
type State int32

const (
	Uninitialized State = iota
	InProgress
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case InProgress:
		return "in-progress"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}
