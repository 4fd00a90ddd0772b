package domain

import "fmt"

// ViolationKind enumerates the topology invariants a graph can break.
type ViolationKind int

const (
	// UnknownInterfaceDevice: an interface references a device missing
	// from the device set.
	UnknownInterfaceDevice ViolationKind = iota
	// UnknownPathEndpoint: a path's declared source or destination device
	// is missing from the device set.
	UnknownPathEndpoint
	// PathSourceMismatch: the first segment's source differs from the
	// path's declared source.
	PathSourceMismatch
	// PathDestMismatch: the last segment's destination differs from the
	// path's declared destination.
	PathDestMismatch
	// SegmentDiscontinuity: adjacent segments do not chain (segment i's
	// destination != segment i+1's source).
	SegmentDiscontinuity
)

func (k ViolationKind) String() string {
	switch k {
	case UnknownInterfaceDevice:
		return "unknown interface device"
	case UnknownPathEndpoint:
		return "unknown path endpoint"
	case PathSourceMismatch:
		return "path source mismatch"
	case PathDestMismatch:
		return "path destination mismatch"
	case SegmentDiscontinuity:
		return "segment discontinuity"
	default:
		return fmt.Sprintf("violation(%d)", int(k))
	}
}

// Violation is one broken topology invariant, with an operator-readable
// detail string.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	Detail string        `json:"detail"`
}

func (v Violation) String() string {
	return v.Kind.String() + ": " + v.Detail
}

// ValidateTopology checks the referential and continuity invariants of a
// service topology. An empty result means the graph is consistent. The
// graph is never auto-repaired; callers decide remediation per violation.
//
// Continuity is the check that fails most in the wild: segments collected
// in different discovery passes routinely disagree about hop boundaries.
func ValidateTopology(g *TopologyGraph) []Violation {
	var violations []Violation
	devices := g.DeviceSet()

	for _, iface := range g.Interfaces {
		if _, ok := devices[iface.Device]; !ok {
			violations = append(violations, Violation{
				Kind:   UnknownInterfaceDevice,
				Detail: fmt.Sprintf("interface %s references device %s not in device set", iface.Name, iface.Device),
			})
		}
	}

	for _, path := range g.Paths {
		violations = append(violations, validatePath(&path, devices)...)
	}

	return violations
}

func validatePath(p *Path, devices map[string]struct{}) []Violation {
	var violations []Violation

	if _, ok := devices[p.SourceDev]; !ok {
		violations = append(violations, Violation{
			Kind:   UnknownPathEndpoint,
			Detail: fmt.Sprintf("path %s source device %s not in device set", p.Name, p.SourceDev),
		})
	}
	if _, ok := devices[p.DestDev]; !ok {
		violations = append(violations, Violation{
			Kind:   UnknownPathEndpoint,
			Detail: fmt.Sprintf("path %s destination device %s not in device set", p.Name, p.DestDev),
		})
	}

	if len(p.Segments) == 0 {
		return violations
	}

	first := p.Segments[0]
	if first.SourceDevice != p.SourceDev {
		violations = append(violations, Violation{
			Kind:   PathSourceMismatch,
			Detail: fmt.Sprintf("path %s declares source %s but first segment starts at %s", p.Name, p.SourceDev, first.SourceDevice),
		})
	}

	last := p.Segments[len(p.Segments)-1]
	if last.DestDevice != p.DestDev {
		violations = append(violations, Violation{
			Kind:   PathDestMismatch,
			Detail: fmt.Sprintf("path %s declares destination %s but last segment ends at %s", p.Name, p.DestDev, last.DestDevice),
		})
	}

	for i := 0; i < len(p.Segments)-1; i++ {
		cur, next := p.Segments[i], p.Segments[i+1]
		if cur.DestDevice != next.SourceDevice {
			violations = append(violations, Violation{
				Kind: SegmentDiscontinuity,
				Detail: fmt.Sprintf("path %s: segment %d ends at %s but segment %d starts at %s",
					p.Name, i, cur.DestDevice, i+1, next.SourceDevice),
			})
		}
	}

	return violations
}
