package domain

import "sort"

// ClassificationAnalysis is the summary the classifier decides on.
// Computed once per classification call, read-only afterwards.
type ClassificationAnalysis struct {
	// PhysicalCount is the number of physical (non-sub) interfaces.
	PhysicalCount int `json:"physical_count"`

	// TaggedCount is the number of tagged sub-interfaces.
	TaggedCount int `json:"tagged_count"`

	// Ranges collects every VLAN range configured across the interfaces.
	Ranges []VLANRange `json:"ranges,omitempty"`

	// Lists collects every VLAN list configured across the interfaces.
	Lists [][]int `json:"lists,omitempty"`

	// FullRangeCount counts interfaces configured with the full 1-4094 range.
	FullRangeCount int `json:"full_range_count"`

	// PushCount and PopCount split the manipulation operations seen.
	PushCount int `json:"push_count"`
	PopCount  int `json:"pop_count"`

	// ValidPairs holds every outer/inner pair with both tags in range and
	// outer != inner. Pairs failing those checks are dropped here, never
	// surfaced downstream.
	ValidPairs []TagPair `json:"valid_pairs,omitempty"`

	// VLANIDs is the sorted set of every distinct VLAN id observed in
	// single-VLAN, list and pair configurations.
	VLANIDs []int `json:"vlan_ids,omitempty"`

	// L2ServiceCount counts interfaces with L2 service enabled.
	L2ServiceCount int `json:"l2_service_count"`

	// PlainSingleCount counts interfaces carrying only a single VLAN id
	// (no range, list, pair or manipulation).
	PlainSingleCount int `json:"plain_single_count"`
}

// ManipulationCount is the total number of push and pop operations seen.
func (a *ClassificationAnalysis) ManipulationCount() int {
	return a.PushCount + a.PopCount
}

// HasManipulation reports whether any tag manipulation was observed.
func (a *ClassificationAnalysis) HasManipulation() bool {
	return a.ManipulationCount() > 0
}

// HasSymmetricManipulation reports whether both push and pop were observed.
func (a *ClassificationAnalysis) HasSymmetricManipulation() bool {
	return a.PushCount > 0 && a.PopCount > 0
}

// HasFullRange reports whether any interface carries the full 1-4094 range.
func (a *ClassificationAnalysis) HasFullRange() bool {
	return a.FullRangeCount > 0
}

// HasSpecificRanges reports whether any configured range is narrower than
// the full VLAN space.
func (a *ClassificationAnalysis) HasSpecificRanges() bool {
	return len(a.Ranges) > a.FullRangeCount
}

// DistinctVLANs is the number of distinct VLAN ids observed.
func (a *ClassificationAnalysis) DistinctVLANs() int {
	return len(a.VLANIDs)
}

// Analyze aggregates a set of interface configs into the statistics the
// classifier needs. Pure function over its input.
func Analyze(interfaces []InterfaceTagConfig) ClassificationAnalysis {
	var a ClassificationAnalysis
	vlanSet := make(map[int]struct{})

	addVLAN := func(id int) {
		if id >= VLANMin && id <= VLANMax {
			vlanSet[id] = struct{}{}
		}
	}

	for i := range interfaces {
		cfg := &interfaces[i]

		switch cfg.Kind {
		case KindTaggedSub:
			a.TaggedCount++
		default:
			a.PhysicalCount++
		}

		if cfg.L2Service {
			a.L2ServiceCount++
		}

		if cfg.VLANID != nil {
			addVLAN(*cfg.VLANID)
			if cfg.Range == nil && len(cfg.List) == 0 && cfg.Pair == nil &&
				(cfg.Manipulation == nil || !cfg.Manipulation.Active()) {
				a.PlainSingleCount++
			}
		}

		if cfg.Range != nil {
			a.Ranges = append(a.Ranges, *cfg.Range)
			if cfg.Range.IsFull() {
				a.FullRangeCount++
			}
		}

		if len(cfg.List) > 0 {
			list := make([]int, len(cfg.List))
			copy(list, cfg.List)
			a.Lists = append(a.Lists, list)
			for _, id := range list {
				addVLAN(id)
			}
		}

		if cfg.Pair != nil {
			if cfg.Pair.Valid() {
				a.ValidPairs = append(a.ValidPairs, *cfg.Pair)
				addVLAN(cfg.Pair.Outer)
				addVLAN(cfg.Pair.Inner)
			}
		}

		if cfg.Manipulation != nil {
			if cfg.Manipulation.PushOuter != "" {
				a.PushCount++
			}
			if cfg.Manipulation.PopOuter {
				a.PopCount++
			}
		}
	}

	a.VLANIDs = make([]int, 0, len(vlanSet))
	for id := range vlanSet {
		a.VLANIDs = append(a.VLANIDs, id)
	}
	sort.Ints(a.VLANIDs)

	return a
}
