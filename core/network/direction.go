package network

// Direction tells how a socket came to be connected.
type Direction uint8

const (
	// Unknown is the direction of a socket that is not connected yet.
	Unknown Direction = iota
	// Inbound is for a socket filled in by Accept.
	Inbound
	// Outbound is for a socket that connected actively.
	Outbound
	// Passive is for a socket bound to a local endpoint and waiting for connections.
	Passive
)

var (
	directions = []string{"Unknown", "Inbound", "Outbound", "Passive"}
)

func (d Direction) String() string {
	if int(d) >= len(directions) {
		return "[unrecognized]"
	}
	return directions[d]
}
