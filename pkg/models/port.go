package models

// Default port names used when a connection does not target a specific port.
const (
	DefaultOutputPort = "main"
	DefaultInputPort  = "main"
)

// Connection connects two ports directly (fully normalized).
type Connection struct {
	ID         string `json:"id"`
	SourcePort string `json:"source_port" validate:"required"` // "{node_id}:{port_name}"
	TargetPort string `json:"target_port" validate:"required"` // "{node_id}:{port_name}"
}

// SourceNodeID returns the node id half of the source port.
func (c *Connection) SourceNodeID() string {
	nodeID, _, _ := ParsePortID(c.SourcePort)

	return nodeID
}

// TargetNodeID returns the node id half of the target port.
func (c *Connection) TargetNodeID() string {
	nodeID, _, _ := ParsePortID(c.TargetPort)

	return nodeID
}

// ParsePortID parses a port ID in format "{node_id}:{port_name}" into components.
func ParsePortID(portID string) (string, string, bool) {
	for i := range len(portID) {
		if portID[i] == ':' {
			return portID[:i], portID[i+1:], true
		}
	}

	return "", "", false
}

// MakePortID creates a port ID from node ID and port name.
func MakePortID(nodeID, portName string) string {
	return nodeID + ":" + portName
}
