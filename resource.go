package hotparam

import "fmt"

// TrafficType distinguishes the call direction of a protected resource.
type TrafficType int

const (
	// Inbound marks traffic entering the process (e.g. handling a request).
	Inbound TrafficType = iota
	// Outbound marks traffic leaving the process (e.g. calling a downstream).
	Outbound
)

func (t TrafficType) String() string {
	switch t {
	case Inbound:
		return "Inbound"
	case Outbound:
		return "Outbound"
	default:
		return fmt.Sprintf("TrafficType(%d)", int(t))
	}
}

// Resource identifies a protected operation. Rules bind to a resource by
// name; the traffic direction is carried for observability and does not
// affect rule matching.
type Resource struct {
	Name    string      // unique identifier, e.g. "GET:/api/orders"
	Traffic TrafficType // Inbound or Outbound
}
