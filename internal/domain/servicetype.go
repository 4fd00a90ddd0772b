package domain

import "fmt"

// ServiceType is the closed taxonomy of bridge-domain service patterns.
// Every downstream decision (signature format, consolidation safety)
// switches on this type; it is never re-derived from display text.
type ServiceType int

const (
	EmptyBridgeDomain ServiceType = iota
	PortMode
	SingleTagged
	SingleTaggedRange
	SingleTaggedList
	DoubleTagged
	QinQSingleBD
	QinQMultiBD
	Hybrid
)

// AllServiceTypes lists every variant, for exhaustiveness checks in tests.
var AllServiceTypes = []ServiceType{
	EmptyBridgeDomain,
	PortMode,
	SingleTagged,
	SingleTaggedRange,
	SingleTaggedList,
	DoubleTagged,
	QinQSingleBD,
	QinQMultiBD,
	Hybrid,
}

var serviceTypeNames = map[ServiceType]string{
	EmptyBridgeDomain: "empty",
	PortMode:          "port-mode",
	SingleTagged:      "single-tagged",
	SingleTaggedRange: "single-tagged-range",
	SingleTaggedList:  "single-tagged-list",
	DoubleTagged:      "double-tagged",
	QinQSingleBD:      "qinq-single-bd",
	QinQMultiBD:       "qinq-multi-bd",
	Hybrid:            "hybrid",
}

func (t ServiceType) String() string {
	if name, ok := serviceTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("servicetype(%d)", int(t))
}

// IsQinQ reports whether the type carries an outer/inner tag identity.
func (t ServiceType) IsQinQ() bool {
	switch t {
	case DoubleTagged, QinQSingleBD, QinQMultiBD:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler so the type serializes
// as its stable name in JSON and YAML.
func (t ServiceType) MarshalText() ([]byte, error) {
	name, ok := serviceTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown service type %d", int(t))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ServiceType) UnmarshalText(text []byte) error {
	s := string(text)
	for st, name := range serviceTypeNames {
		if name == s {
			*t = st
			return nil
		}
	}
	return fmt.Errorf("unknown service type %q", s)
}

// Scope says whether a service's VLAN id is significant on one device
// only (local) or fabric-wide (global).
type Scope int

const (
	ScopeUnspecified Scope = iota
	ScopeLocal
	ScopeGlobal
)

var scopeNames = map[Scope]string{
	ScopeUnspecified: "unspecified",
	ScopeLocal:       "local",
	ScopeGlobal:      "global",
}

func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Scope) MarshalText() ([]byte, error) {
	name, ok := scopeNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown scope %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scope) UnmarshalText(text []byte) error {
	str := string(text)
	for sc, name := range scopeNames {
		if name == str {
			*s = sc
			return nil
		}
	}
	return fmt.Errorf("unknown scope %q", str)
}
