package snapshot

// Snapshot is the top-level structure of the scraped-config snapshot
// file produced by the collector. All VLAN fields are already-normalized
// integers; the loader does no raw config-text parsing.
type Snapshot struct {
	Version       int                `yaml:"version"`
	BridgeDomains []BridgeDomainSpec `yaml:"bridge_domains"`
}

// BridgeDomainSpec is one candidate service as scraped: its
// admin-assigned name plus per-device interface configs and paths.
type BridgeDomainSpec struct {
	Name       string       `yaml:"name"`
	Scope      string       `yaml:"scope,omitempty"` // local | global
	Imposition string       `yaml:"imposition,omitempty"`
	VLAN       *int         `yaml:"vlan,omitempty"`
	Outer      *int         `yaml:"outer,omitempty"`
	Inner      *int         `yaml:"inner,omitempty"`
	Devices    []DeviceSpec `yaml:"devices"`
	Paths      []PathSpec   `yaml:"paths,omitempty"`
}

// DeviceSpec is one device participating in a bridge domain.
type DeviceSpec struct {
	Name       string          `yaml:"name"`
	Role       string          `yaml:"role,omitempty"` // leaf | spine | superspine
	Interfaces []InterfaceSpec `yaml:"interfaces"`
}

// InterfaceSpec mirrors domain.InterfaceTagConfig in file form.
type InterfaceSpec struct {
	Name             string `yaml:"name"`
	Kind             string `yaml:"kind,omitempty"` // physical | bundle | tagged
	VLAN             *int   `yaml:"vlan,omitempty"`
	RangeStart       *int   `yaml:"range_start,omitempty"`
	RangeEnd         *int   `yaml:"range_end,omitempty"`
	List             []int  `yaml:"list,omitempty"`
	Outer            *int   `yaml:"outer,omitempty"`
	Inner            *int   `yaml:"inner,omitempty"`
	PushOuter        string `yaml:"push_outer,omitempty"`
	PopOuter         bool   `yaml:"pop_outer,omitempty"`
	L2Service        bool   `yaml:"l2_service,omitempty"`
	FromDeviceConfig bool   `yaml:"from_device_config,omitempty"`
}

// PathSpec is a declared multi-hop path between two devices.
type PathSpec struct {
	Name     string        `yaml:"name"`
	From     string        `yaml:"from"`
	To       string        `yaml:"to"`
	Segments []SegmentSpec `yaml:"segments,omitempty"`
}

// SegmentSpec is one hop of a path.
type SegmentSpec struct {
	From   string `yaml:"from"`
	FromIf string `yaml:"from_if,omitempty"`
	To     string `yaml:"to"`
	ToIf   string `yaml:"to_if,omitempty"`
}
