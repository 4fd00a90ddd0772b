package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleTaggedInstance(name string, devices ...string) *ServiceInstance {
	inst := &ServiceInstance{
		Name:         name,
		Username:     "alice",
		Scope:        ScopeGlobal,
		Type:         SingleTagged,
		VLANID:       intp(100),
		Signature:    "global:alice:vlan:100",
		Confidence:   0.9,
		DiscoveredAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range devices {
		inst.Topology.Devices = append(inst.Topology.Devices, Device{Name: d})
	}
	return inst
}

func TestConsolidateApprovesMatchingPair(t *testing.T) {
	a := singleTaggedInstance("g_alice_v100", "leaf1", "leaf2")
	b := singleTaggedInstance("g_alice_v100_b", "leaf2", "leaf3")
	b.Confidence = 0.7
	b.DiscoveredAt = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	result := Consolidate([]*ServiceInstance{a, b})

	require.Len(t, result.Groups, 1)
	group := result.Groups[0]
	require.Equal(t, Approved, group.Outcome, "reason: %s", group.Reason)
	require.NotNil(t, group.Merged)

	merged := group.Merged
	assert.Equal(t, "global:alice:vlan:100", merged.Signature)
	assert.Equal(t, "alice_v100_consolidated", merged.Name)
	assert.Equal(t, 0.7, merged.Confidence, "merged confidence is the minimum of the members")
	assert.Equal(t, b.DiscoveredAt, merged.DiscoveredAt, "merged keeps the earliest discovery time")

	names := make([]string, 0, len(merged.Topology.Devices))
	for _, d := range merged.Topology.Devices {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"leaf1", "leaf2", "leaf3"}, names, "devices deduplicated and sorted")

	assert.Equal(t, 1, result.ApprovedCount)
}

func TestConsolidateMembersNeverMutated(t *testing.T) {
	a := singleTaggedInstance("g_alice_v100", "leaf1")
	b := singleTaggedInstance("g_alice_v100_b", "leaf2")

	Consolidate([]*ServiceInstance{a, b})

	assert.Len(t, a.Topology.Devices, 1)
	assert.Len(t, b.Topology.Devices, 1)
}

func TestConsolidateRejectsUnsafePairs(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(b *ServiceInstance)
		wantInMsg string
	}{
		{
			name:      "type mismatch",
			mutate:    func(b *ServiceInstance) { b.Type = PortMode },
			wantInMsg: "service type",
		},
		{
			name:      "scope mismatch",
			mutate:    func(b *ServiceInstance) { b.Scope = ScopeLocal },
			wantInMsg: "scope",
		},
		{
			name: "manipulation asymmetry",
			mutate: func(b *ServiceInstance) {
				b.Interfaces = []InterfaceTagConfig{
					{Name: "et-0/0/1", Manipulation: &TagManipulation{PushOuter: "outer-tag 445"}},
				}
			},
			wantInMsg: "vlan manipulation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := singleTaggedInstance("g_alice_v100", "leaf1")
			b := singleTaggedInstance("g_alice_v100_b", "leaf1")
			tt.mutate(b)

			result := Consolidate([]*ServiceInstance{a, b})

			require.Len(t, result.Groups, 1)
			group := result.Groups[0]
			assert.Equal(t, Rejected, group.Outcome)
			assert.Nil(t, group.Merged)
			assert.Contains(t, group.Reason, tt.wantInMsg)
			assert.Contains(t, group.Reason, a.Name, "reason names the conflicting instances")
			assert.Contains(t, group.Reason, b.Name)
		})
	}
}

func TestConsolidateRejectsQinQTagMismatch(t *testing.T) {
	a := singleTaggedInstance("g_alice_v100", "leaf1")
	a.Type = QinQSingleBD
	a.OuterVLAN = intp(445)
	a.InnerVLAN = intp(100)

	b := singleTaggedInstance("g_alice_v100_b", "leaf1")
	b.Type = QinQSingleBD
	b.OuterVLAN = intp(445)
	b.InnerVLAN = intp(200)

	result := Consolidate([]*ServiceInstance{a, b})

	require.Len(t, result.Groups, 1)
	assert.Equal(t, Rejected, result.Groups[0].Outcome)
	assert.Contains(t, result.Groups[0].Reason, "qinq tags")
}

func TestConsolidateRejectsImpositionMismatch(t *testing.T) {
	a := singleTaggedInstance("g_alice_v100", "leaf1")
	a.Type = QinQSingleBD
	a.OuterVLAN = intp(445)
	a.Imposition = "edge"

	b := singleTaggedInstance("g_alice_v100_b", "leaf1")
	b.Type = QinQSingleBD
	b.OuterVLAN = intp(445)
	b.Imposition = "leaf"

	result := Consolidate([]*ServiceInstance{a, b})

	require.Len(t, result.Groups, 1)
	assert.Equal(t, Rejected, result.Groups[0].Outcome)
	assert.Contains(t, result.Groups[0].Reason, "imposition")
}

func TestConsolidateRejectsLargeDeviceDelta(t *testing.T) {
	a := singleTaggedInstance("g_alice_v100", "leaf1")
	b := singleTaggedInstance("g_alice_v100_b",
		"leaf1", "leaf2", "leaf3", "leaf4", "leaf5", "leaf6", "leaf7", "leaf8", "leaf9", "leaf10")

	result := Consolidate([]*ServiceInstance{a, b})

	require.Len(t, result.Groups, 1)
	assert.Equal(t, Rejected, result.Groups[0].Outcome)
	assert.Contains(t, result.Groups[0].Reason, "device count")
}

func TestConsolidateAllowsSmallDeviceDelta(t *testing.T) {
	a := singleTaggedInstance("g_alice_v100", "leaf1")
	b := singleTaggedInstance("g_alice_v100_b", "leaf1", "leaf2", "leaf3")

	result := Consolidate([]*ServiceInstance{a, b})

	require.Len(t, result.Groups, 1)
	assert.Equal(t, Approved, result.Groups[0].Outcome, "delta of 2 stays within tolerance")
}

func TestConsolidateRejectsPairwiseNotTransitively(t *testing.T) {
	// a-b and b-c are each within the device tolerance, but a-c is not.
	// Transitive chaining must not approve the group.
	a := singleTaggedInstance("g_alice_v100_a", "leaf1")
	b := singleTaggedInstance("g_alice_v100_b", "leaf1", "leaf2", "leaf3")
	c := singleTaggedInstance("g_alice_v100_c",
		"leaf1", "leaf2", "leaf3", "leaf4", "leaf5")

	result := Consolidate([]*ServiceInstance{a, b, c})

	require.Len(t, result.Groups, 1)
	group := result.Groups[0]
	assert.Equal(t, Rejected, group.Outcome)
	assert.Contains(t, group.Reason, a.Name)
	assert.Contains(t, group.Reason, c.Name)
}

func TestConsolidateUnsignedGoesToReview(t *testing.T) {
	inst := &ServiceInstance{Name: "g_alice_v100", Type: Hybrid}

	result := Consolidate([]*ServiceInstance{inst})

	require.Len(t, result.Groups, 1)
	group := result.Groups[0]
	assert.Equal(t, NeedsReview, group.Outcome)
	assert.Empty(t, group.Signature)
	assert.Equal(t, 1, result.ReviewCount)
}

func TestConsolidateRejectsInvalidMergedTopology(t *testing.T) {
	a := singleTaggedInstance("g_alice_v100", "leaf1")
	a.Topology.Paths = []Path{{Name: "p1", SourceDev: "leaf1", DestDev: "ghost"}}

	result := Consolidate([]*ServiceInstance{a})

	require.Len(t, result.Groups, 1)
	group := result.Groups[0]
	assert.Equal(t, Rejected, group.Outcome)
	assert.Contains(t, group.Reason, "topology failed validation")
}

func TestConsolidateDeterministicGroupOrder(t *testing.T) {
	a := singleTaggedInstance("g_alice_v100", "leaf1")
	z := singleTaggedInstance("g_zoe_v200", "leaf1")
	z.Username = "zoe"
	z.VLANID = intp(200)
	z.Signature = "global:zoe:vlan:200"

	first := Consolidate([]*ServiceInstance{z, a})
	second := Consolidate([]*ServiceInstance{a, z})

	require.Len(t, first.Groups, 2)
	require.Len(t, second.Groups, 2)
	assert.Equal(t, first.Groups[0].Signature, second.Groups[0].Signature)
	assert.Equal(t, "global:alice:vlan:100", first.Groups[0].Signature)
}

func TestGroupByOwnerVLAN(t *testing.T) {
	a := singleTaggedInstance("g_alice_v100", "leaf1")
	b := singleTaggedInstance("g_alice_v100_b", "leaf2")
	b.Type = DoubleTagged // different type still lands in the same coarse group
	noOwner := &ServiceInstance{Name: "445_legacy", VLANID: intp(100)}

	groups := GroupByOwnerVLAN([]*ServiceInstance{a, b, noOwner})

	require.Len(t, groups, 1)
	assert.Equal(t, "alice:100", groups[0].Signature)
	assert.Len(t, groups[0].Members, 2)
	assert.Equal(t, NeedsReview, groups[0].Outcome, "coarse groups never auto-merge")
}
