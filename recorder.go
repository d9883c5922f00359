package hotparam

import "fmt"

// EventKind is the outcome of a completed admission decision.
type EventKind int

const (
	// RequestPassed indicates the call was admitted.
	RequestPassed EventKind = iota
	// RequestBlocked indicates the call was denied.
	RequestBlocked
)

func (k EventKind) String() string {
	switch k {
	case RequestPassed:
		return "RequestPassed"
	case RequestBlocked:
		return "RequestBlocked"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Recorder observes admission outcomes. Record is called once per completed
// decision, fire-and-forget; value is the normalized triggering parameter
// key on a block and empty on a pass. Implementations must be safe for
// concurrent use and should not block, since they run on the admission hot
// path. A Limiter without a recorder discards events.
type Recorder interface {
	Record(kind EventKind, resource string, value string)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(kind EventKind, resource string, value string)

func (f RecorderFunc) Record(kind EventKind, resource string, value string) {
	f(kind, resource, value)
}
