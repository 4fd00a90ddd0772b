package domain

// VLAN ids live in [1,4094]; 0 and 4095 are reserved on every platform we scrape.
const (
	VLANMin = 1
	VLANMax = 4094
)

// InterfaceKind describes how the scraped interface is realized on the device.
type InterfaceKind int

const (
	KindPhysical InterfaceKind = iota
	KindBundle
	KindTaggedSub
)

func (k InterfaceKind) String() string {
	switch k {
	case KindPhysical:
		return "physical"
	case KindBundle:
		return "bundle"
	case KindTaggedSub:
		return "tagged"
	default:
		return "unknown"
	}
}

// VLANRange is an inclusive range of VLAN ids.
type VLANRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsFull reports whether the range covers the entire usable VLAN space.
func (r VLANRange) IsFull() bool {
	return r.Start == VLANMin && r.End == VLANMax
}

// TagPair is an outer/inner (service/customer) QinQ tag pair.
type TagPair struct {
	Outer int `json:"outer"`
	Inner int `json:"inner"`
}

// Valid reports whether both tags are in range and genuinely distinct.
// Parsers occasionally echo the same id into both fields; such pairs are
// artifacts, not double tagging, and must never count as QinQ evidence.
func (p TagPair) Valid() bool {
	return p.Outer != p.Inner &&
		p.Outer >= VLANMin && p.Outer <= VLANMax &&
		p.Inner >= VLANMin && p.Inner <= VLANMax
}

// TagManipulation describes switch-imposed tag rewriting on an interface.
type TagManipulation struct {
	// PushOuter is the raw push operation as scraped, e.g. "outer-tag 445".
	// It is evidence of manipulation only; ids inside it are never trusted
	// as service identity.
	PushOuter string `json:"push_outer,omitempty"`
	PopOuter  bool   `json:"pop_outer,omitempty"`
}

// Active reports whether any manipulation is configured.
func (m TagManipulation) Active() bool {
	return m.PushOuter != "" || m.PopOuter
}

// Symmetric reports whether the interface both pushes and pops tags,
// the signature move of switch-imposed QinQ.
func (m TagManipulation) Symmetric() bool {
	return m.PushOuter != "" && m.PopOuter
}

// InterfaceTagConfig is one interface's tagging configuration as produced
// by the upstream collector. VLAN fields are either nil/empty or already
// normalized integers; no raw text parsing happens past this point.
//
// Values are immutable once built. Classification and signature generation
// only ever read them.
type InterfaceTagConfig struct {
	// Name is the interface name, e.g. "et-0/0/1" or "et-0/0/1.100".
	Name string `json:"name"`

	// Device is the owning device name.
	Device string `json:"device"`

	Kind InterfaceKind `json:"kind"`

	// VLANID is the single access/sub-interface VLAN, if any.
	VLANID *int `json:"vlan_id,omitempty"`

	// Range is the configured VLAN range, if any.
	Range *VLANRange `json:"range,omitempty"`

	// List is the configured VLAN list, if any.
	List []int `json:"list,omitempty"`

	// Pair is the configured outer/inner tag pair, if any.
	Pair *TagPair `json:"pair,omitempty"`

	// Manipulation is the configured tag manipulation, if any.
	Manipulation *TagManipulation `json:"manipulation,omitempty"`

	// L2Service marks the interface as carrying an L2 service.
	L2Service bool `json:"l2_service"`

	// FromDeviceConfig is true when this record was scraped from actual
	// device configuration, as opposed to being inferred from names or
	// sub-interface numerals. Only device-sourced records may contribute
	// VLAN identity to a service signature.
	FromDeviceConfig bool `json:"from_device_config"`
}

// HasVLANConfig reports whether the interface carries any VLAN-related
// configuration at all.
func (c *InterfaceTagConfig) HasVLANConfig() bool {
	return c.VLANID != nil || c.Range != nil || len(c.List) > 0 ||
		c.Pair != nil || (c.Manipulation != nil && c.Manipulation.Active())
}
