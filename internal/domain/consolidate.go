package domain

import (
	"fmt"
	"sort"
	"strings"
)

// GroupOutcome is the validation verdict for one consolidation group.
type GroupOutcome int

const (
	Approved GroupOutcome = iota
	Rejected
	NeedsReview
)

var outcomeNames = map[GroupOutcome]string{
	Approved:    "approved",
	Rejected:    "rejected",
	NeedsReview: "needs-review",
}

func (o GroupOutcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o GroupOutcome) MarshalText() ([]byte, error) {
	name, ok := outcomeNames[o]
	if !ok {
		return nil, fmt.Errorf("unknown outcome %d", int(o))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *GroupOutcome) UnmarshalText(text []byte) error {
	s := string(text)
	for oc, name := range outcomeNames {
		if name == s {
			*o = oc
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", s)
}

// ConsolidationGroup is a set of instances sharing one signature plus the
// outcome of merging them. Rejected and review groups keep their members
// unconsolidated and carry an operator-readable reason.
type ConsolidationGroup struct {
	Signature string             `json:"signature,omitempty"`
	Members   []*ServiceInstance `json:"members"`
	Outcome   GroupOutcome       `json:"outcome"`
	Reason    string             `json:"reason,omitempty"`

	// Merged is the single consolidated instance replacing the members.
	// Only set for approved groups.
	Merged *ServiceInstance `json:"merged,omitempty"`
}

// ConsolidationResult is the full, inspectable outcome of one run.
// Silent consolidation is never acceptable: rejected and review groups
// are first-class output, not log lines.
type ConsolidationResult struct {
	Groups []ConsolidationGroup `json:"groups"`

	ApprovedCount int `json:"approved_count"`
	RejectedCount int `json:"rejected_count"`
	ReviewCount   int `json:"review_count"`
}

// Consolidate groups instances by signature, validates every group with
// pairwise safety checks, and merges the groups that pass. Instances
// whose signature cannot be generated become singleton review groups.
// One bad group never aborts the batch.
func Consolidate(instances []*ServiceInstance) ConsolidationResult {
	bysig := make(map[string][]*ServiceInstance)
	var sigs []string
	var result ConsolidationResult

	for _, inst := range instances {
		sig := inst.Signature
		if sig == "" {
			generated, err := GenerateSignature(inst)
			if err != nil {
				result.Groups = append(result.Groups, ConsolidationGroup{
					Members: []*ServiceInstance{inst},
					Outcome: NeedsReview,
					Reason:  fmt.Sprintf("signature unresolvable for %q: %v", inst.Name, err),
				})
				continue
			}
			sig = generated
		}
		if _, seen := bysig[sig]; !seen {
			sigs = append(sigs, sig)
		}
		bysig[sig] = append(bysig[sig], inst)
	}

	// Deterministic group order regardless of input order.
	sort.Strings(sigs)

	for _, sig := range sigs {
		result.Groups = append(result.Groups, consolidateGroup(sig, bysig[sig]))
	}

	for _, g := range result.Groups {
		switch g.Outcome {
		case Approved:
			result.ApprovedCount++
		case Rejected:
			result.RejectedCount++
		case NeedsReview:
			result.ReviewCount++
		}
	}

	return result
}

// consolidateGroup validates and merges one signature group.
func consolidateGroup(sig string, members []*ServiceInstance) ConsolidationGroup {
	group := ConsolidationGroup{Signature: sig, Members: members}

	// Approval requires every pairwise combination to pass, not a
	// spanning subset: transitive-only approval can chain two instances
	// that were never compared directly.
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if err := checkPairSafety(members[i], members[j]); err != nil {
				group.Outcome = Rejected
				group.Reason = fmt.Sprintf("instances %q and %q: %v",
					members[i].Name, members[j].Name, err)
				return group
			}
		}
	}

	merged := mergeInstances(sig, members)

	if violations := ValidateTopology(&merged.Topology); len(violations) > 0 {
		details := make([]string, len(violations))
		for i, v := range violations {
			details[i] = v.String()
		}
		group.Outcome = Rejected
		group.Reason = "merged topology failed validation: " + strings.Join(details, "; ")
		return group
	}

	group.Outcome = Approved
	group.Merged = merged
	return group
}

// checkPairSafety runs every pairwise safety rule on two instances that
// share a signature. Any failure is fatal for the whole group's merge.
func checkPairSafety(a, b *ServiceInstance) error {
	if a.Type != b.Type {
		return &UnsafeMergeError{
			Rule:   "service type",
			Detail: fmt.Sprintf("%s vs %s", a.Type, b.Type),
		}
	}

	if a.Type.IsQinQ() {
		if !intPtrEq(a.OuterVLAN, b.OuterVLAN) || !intPtrEq(a.InnerVLAN, b.InnerVLAN) {
			return &UnsafeMergeError{
				Rule: "qinq tags",
				Detail: fmt.Sprintf("outer/inner %s/%s vs %s/%s",
					fmtIntPtr(a.OuterVLAN), fmtIntPtr(a.InnerVLAN),
					fmtIntPtr(b.OuterVLAN), fmtIntPtr(b.InnerVLAN)),
			}
		}
		if a.Imposition != b.Imposition {
			return &UnsafeMergeError{
				Rule:   "imposition location",
				Detail: fmt.Sprintf("%q vs %q", a.Imposition, b.Imposition),
			}
		}
	}

	if a.Scope != b.Scope {
		return &UnsafeMergeError{
			Rule:   "scope",
			Detail: fmt.Sprintf("%s vs %s", a.Scope, b.Scope),
		}
	}

	small, big := a.DeviceCount(), b.DeviceCount()
	if small > big {
		small, big = big, small
	}
	allowed := small / 5
	if allowed < 2 {
		allowed = 2
	}
	if big-small > allowed {
		return &UnsafeMergeError{
			Rule:   "device count",
			Detail: fmt.Sprintf("%d vs %d exceeds allowed delta %d", a.DeviceCount(), b.DeviceCount(), allowed),
		}
	}

	if a.ManipulationPresent() != b.ManipulationPresent() {
		return &UnsafeMergeError{
			Rule:   "vlan manipulation",
			Detail: "manipulation present on one instance only",
		}
	}

	return nil
}

// mergeInstances produces the single consolidated instance for a group
// that passed all safety checks. Members are never modified.
func mergeInstances(sig string, members []*ServiceInstance) *ServiceInstance {
	first := members[0]

	merged := &ServiceInstance{
		Username:     first.Username,
		Scope:        first.Scope,
		Type:         first.Type,
		VLANID:       copyIntPtr(first.VLANID),
		OuterVLAN:    copyIntPtr(first.OuterVLAN),
		InnerVLAN:    copyIntPtr(first.InnerVLAN),
		Imposition:   first.Imposition,
		Signature:    sig,
		Confidence:   first.Confidence,
		DiscoveredAt: first.DiscoveredAt,
	}

	deviceSeen := make(map[string]struct{})
	ifaceSeen := make(map[string]struct{})
	pathSeen := make(map[string]struct{})
	cfgSeen := make(map[string]struct{})

	for _, m := range members {
		// The merged record is never more trustworthy than its least
		// trusted member.
		if m.Confidence < merged.Confidence {
			merged.Confidence = m.Confidence
		}
		if m.DiscoveredAt.Before(merged.DiscoveredAt) {
			merged.DiscoveredAt = m.DiscoveredAt
		}

		for _, d := range m.Topology.Devices {
			if _, ok := deviceSeen[d.Name]; ok {
				continue
			}
			deviceSeen[d.Name] = struct{}{}
			merged.Topology.Devices = append(merged.Topology.Devices, d)
		}
		for _, iface := range m.Topology.Interfaces {
			if _, ok := ifaceSeen[iface.Key()]; ok {
				continue
			}
			ifaceSeen[iface.Key()] = struct{}{}
			merged.Topology.Interfaces = append(merged.Topology.Interfaces, iface)
		}
		for _, p := range m.Topology.Paths {
			if _, ok := pathSeen[p.Name]; ok {
				continue
			}
			pathSeen[p.Name] = struct{}{}
			merged.Topology.Paths = append(merged.Topology.Paths, p)
		}
		for i := range m.Interfaces {
			cfg := m.Interfaces[i]
			key := cfg.Device + "/" + cfg.Name
			if _, ok := cfgSeen[key]; ok {
				continue
			}
			cfgSeen[key] = struct{}{}
			merged.Interfaces = append(merged.Interfaces, cfg)
		}
	}

	sortTopology(&merged.Topology)

	merged.Name = mergedName(first)
	return merged
}

// mergedName derives the consolidated record's name from the owner and
// VLAN when available, falling back to a generic prefix otherwise.
func mergedName(first *ServiceInstance) string {
	if first.Username != "" {
		vlan := first.VLANID
		if vlan == nil {
			vlan = first.OuterVLAN
		}
		if vlan != nil {
			return fmt.Sprintf("%s_v%d_consolidated", first.Username, *vlan)
		}
	}
	return "consolidated_" + first.Name
}

// GroupByOwnerVLAN partitions instances by the coarser (username, VLAN)
// key. The result is review tooling only: coarse groups never auto-merge
// because two different services can legitimately share an owner and a
// VLAN id across scopes or types.
func GroupByOwnerVLAN(instances []*ServiceInstance) []ConsolidationGroup {
	bykey := make(map[string][]*ServiceInstance)
	var keys []string

	for _, inst := range instances {
		if inst.Username == "" || (inst.VLANID == nil && inst.OuterVLAN == nil) {
			continue
		}
		vlan := inst.VLANID
		if vlan == nil {
			vlan = inst.OuterVLAN
		}
		key := fmt.Sprintf("%s:%d", inst.Username, *vlan)
		if _, seen := bykey[key]; !seen {
			keys = append(keys, key)
		}
		bykey[key] = append(bykey[key], inst)
	}

	sort.Strings(keys)

	groups := make([]ConsolidationGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, ConsolidationGroup{
			Signature: key,
			Members:   bykey[key],
			Outcome:   NeedsReview,
			Reason:    "coarse owner/VLAN grouping, manual review required",
		})
	}
	return groups
}

func sortTopology(g *TopologyGraph) {
	sort.Slice(g.Devices, func(i, j int) bool { return g.Devices[i].Name < g.Devices[j].Name })
	sort.Slice(g.Interfaces, func(i, j int) bool { return g.Interfaces[i].Key() < g.Interfaces[j].Key() })
	sort.Slice(g.Paths, func(i, j int) bool { return g.Paths[i].Name < g.Paths[j].Name })
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtIntPtr(p *int) string {
	if p == nil {
		return "nil"
	}
	return fmt.Sprintf("%d", *p)
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
