package domain

import "time"

// Device is a switch participating in a service.
type Device struct {
	Name string `json:"name"`

	// Role is contextual metadata supplied by an external device-role
	// lookup (leaf/spine/superspine). Carried opaquely, never consumed
	// by classification or signature logic.
	Role string `json:"role,omitempty"`
}

// Interface is one service attachment point on a device.
type Interface struct {
	Device string `json:"device"`
	Name   string `json:"name"`
}

// Key returns the deduplication key for an interface.
func (i Interface) Key() string {
	return i.Device + "/" + i.Name
}

// PathSegment is one hop of a multi-hop path between two devices.
type PathSegment struct {
	SourceDevice    string `json:"source_device"`
	SourceInterface string `json:"source_interface,omitempty"`
	DestDevice      string `json:"dest_device"`
	DestInterface   string `json:"dest_interface,omitempty"`
}

// Path is a named multi-hop path with declared endpoints.
type Path struct {
	Name      string        `json:"name"`
	SourceDev string        `json:"source_device"`
	DestDev   string        `json:"dest_device"`
	Segments  []PathSegment `json:"segments,omitempty"`
}

// TopologyGraph is the set of devices, interfaces and paths attached to
// a service instance. Its internal consistency is checked by
// ValidateTopology before a consolidated record is accepted.
type TopologyGraph struct {
	Devices    []Device    `json:"devices,omitempty"`
	Interfaces []Interface `json:"interfaces,omitempty"`
	Paths      []Path      `json:"paths,omitempty"`
}

// DeviceSet returns the set of device names in the graph.
func (g *TopologyGraph) DeviceSet() map[string]struct{} {
	set := make(map[string]struct{}, len(g.Devices))
	for _, d := range g.Devices {
		set[d.Name] = struct{}{}
	}
	return set
}

// ServiceInstance is one discovered occurrence of a logical service.
// Instances are never mutated after discovery; consolidation produces a
// new instance instead of editing members in place.
type ServiceInstance struct {
	// Name is the admin-assigned service name, e.g. "g_alice_v100".
	// Untrusted display text except for username/scope extraction.
	Name string `json:"name"`

	// Username is the owning user parsed from Name; empty when no naming
	// convention matched.
	Username string `json:"username,omitempty"`

	Scope Scope       `json:"scope"`
	Type  ServiceType `json:"type"`

	// VLANID is the declared primary VLAN id, if any.
	VLANID *int `json:"vlan_id,omitempty"`

	// OuterVLAN/InnerVLAN carry the QinQ identity for QinQ types.
	OuterVLAN *int `json:"outer_vlan,omitempty"`
	InnerVLAN *int `json:"inner_vlan,omitempty"`

	// Imposition records where QinQ tags are imposed (edge vs leaf).
	Imposition string `json:"imposition,omitempty"`

	// Interfaces holds the raw tag configs the instance was built from.
	Interfaces []InterfaceTagConfig `json:"interfaces,omitempty"`

	Topology TopologyGraph `json:"topology"`

	// Signature is the canonical identity string, set at discovery time
	// when generation succeeded; empty means the instance is queued for
	// review and must never be merged.
	Signature string `json:"signature,omitempty"`

	// Confidence in [0,1], derived from the classifier verdict.
	Confidence float64 `json:"confidence"`

	DiscoveredAt time.Time `json:"discovered_at"`
}

// ManipulationPresent reports whether any interface of the instance has
// active tag manipulation. One of the pairwise consolidation checks.
func (s *ServiceInstance) ManipulationPresent() bool {
	for i := range s.Interfaces {
		m := s.Interfaces[i].Manipulation
		if m != nil && m.Active() {
			return true
		}
	}
	return false
}

// DeviceCount is the number of devices in the instance topology.
func (s *ServiceInstance) DeviceCount() int {
	return len(s.Topology.Devices)
}
