package snapshot

import (
	"strings"
	"testing"

	"github.com/netfab/bdscan/internal/domain"
)

func intp(v int) *int { return &v }

func TestMapServices(t *testing.T) {
	snap := &Snapshot{
		Version: 1,
		BridgeDomains: []BridgeDomainSpec{
			{
				Name:  "g_alice_v100",
				Scope: "global",
				VLAN:  intp(100),
				Devices: []DeviceSpec{
					{
						Name: "leaf1",
						Role: "leaf",
						Interfaces: []InterfaceSpec{
							{Name: "et-0/0/1.100", Kind: "tagged", VLAN: intp(100), FromDeviceConfig: true},
						},
					},
					{
						Name: "leaf2",
						Role: "leaf",
						Interfaces: []InterfaceSpec{
							{Name: "et-0/0/2.100", Kind: "tagged", VLAN: intp(100), FromDeviceConfig: true},
						},
					},
				},
				Paths: []PathSpec{
					{
						Name: "p1", From: "leaf1", To: "leaf2",
						Segments: []SegmentSpec{{From: "leaf1", To: "leaf2"}},
					},
				},
			},
		},
	}

	inputs, cache, err := NewMapper().MapServices(snap)
	if err != nil {
		t.Fatalf("MapServices() error: %v", err)
	}

	if len(inputs) != 1 {
		t.Fatalf("MapServices() produced %d inputs, want 1", len(inputs))
	}

	in := inputs[0]
	if in.Name != "g_alice_v100" {
		t.Errorf("Name = %q, want g_alice_v100", in.Name)
	}
	if in.Scope != domain.ScopeGlobal {
		t.Errorf("Scope = %s, want global", in.Scope)
	}
	if in.VLANID == nil || *in.VLANID != 100 {
		t.Errorf("VLANID = %v, want 100", in.VLANID)
	}
	if len(in.Interfaces) != 2 {
		t.Errorf("Interfaces = %d, want 2", len(in.Interfaces))
	}
	if in.Interfaces[0].Kind != domain.KindTaggedSub {
		t.Errorf("Kind = %s, want tagged", in.Interfaces[0].Kind)
	}
	if len(in.Topology.Devices) != 2 || len(in.Topology.Paths) != 1 {
		t.Errorf("Topology = %+v, want 2 devices and 1 path", in.Topology)
	}

	if len(cache["leaf1"]) != 1 || len(cache["leaf2"]) != 1 {
		t.Errorf("cache = %v, want one config per device", cache)
	}
}

func TestMapServicesRejectsBadVLANs(t *testing.T) {
	tests := []struct {
		name    string
		iface   InterfaceSpec
		wantErr string
	}{
		{
			name:    "vlan out of range",
			iface:   InterfaceSpec{Name: "et-0/0/1", VLAN: intp(4095)},
			wantErr: "out of range",
		},
		{
			name:    "inverted range",
			iface:   InterfaceSpec{Name: "et-0/0/1", RangeStart: intp(200), RangeEnd: intp(100)},
			wantErr: "inverted range",
		},
		{
			name:    "half open range",
			iface:   InterfaceSpec{Name: "et-0/0/1", RangeStart: intp(100)},
			wantErr: "both start and end",
		},
		{
			name:    "list entry out of range",
			iface:   InterfaceSpec{Name: "et-0/0/1", List: []int{100, 0}},
			wantErr: "out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &Snapshot{BridgeDomains: []BridgeDomainSpec{
				{Name: "bd1", Devices: []DeviceSpec{{Name: "leaf1", Interfaces: []InterfaceSpec{tt.iface}}}},
			}}

			_, _, err := NewMapper().MapServices(snap)
			if err == nil {
				t.Fatal("MapServices() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestMapServicesCarriesInvalidPairsThrough(t *testing.T) {
	// Same-tag pairs are parser artifacts. They are mapped as-is and
	// discarded later by analysis, not rejected at ingest.
	snap := &Snapshot{BridgeDomains: []BridgeDomainSpec{
		{
			Name: "bd1",
			Devices: []DeviceSpec{{
				Name: "leaf1",
				Interfaces: []InterfaceSpec{
					{Name: "et-0/0/1.1", Outer: intp(100), Inner: intp(100)},
				},
			}},
		},
	}}

	inputs, _, err := NewMapper().MapServices(snap)
	if err != nil {
		t.Fatalf("MapServices() error: %v", err)
	}
	pair := inputs[0].Interfaces[0].Pair
	if pair == nil || pair.Outer != 100 || pair.Inner != 100 {
		t.Errorf("Pair = %v, want the raw 100/100 pair carried through", pair)
	}
}

func TestMapServicesRequiresNames(t *testing.T) {
	snap := &Snapshot{BridgeDomains: []BridgeDomainSpec{{Name: ""}}}
	if _, _, err := NewMapper().MapServices(snap); err == nil {
		t.Error("MapServices() should fail for a nameless bridge domain")
	}

	snap = &Snapshot{BridgeDomains: []BridgeDomainSpec{
		{Name: "bd1", Devices: []DeviceSpec{{Name: ""}}},
	}}
	if _, _, err := NewMapper().MapServices(snap); err == nil {
		t.Error("MapServices() should fail for a nameless device")
	}
}
