package domain

import (
	"reflect"
	"testing"
)

func intp(v int) *int { return &v }

func TestAnalyzeCounts(t *testing.T) {
	interfaces := []InterfaceTagConfig{
		{Name: "et-0/0/1", Device: "leaf1", Kind: KindPhysical, L2Service: true},
		{Name: "et-0/0/2.100", Device: "leaf1", Kind: KindTaggedSub, VLANID: intp(100)},
		{Name: "et-0/0/3.200", Device: "leaf2", Kind: KindTaggedSub, VLANID: intp(200)},
	}

	a := Analyze(interfaces)

	if a.PhysicalCount != 1 {
		t.Errorf("PhysicalCount = %d, want 1", a.PhysicalCount)
	}
	if a.TaggedCount != 2 {
		t.Errorf("TaggedCount = %d, want 2", a.TaggedCount)
	}
	if a.L2ServiceCount != 1 {
		t.Errorf("L2ServiceCount = %d, want 1", a.L2ServiceCount)
	}
	if a.PlainSingleCount != 2 {
		t.Errorf("PlainSingleCount = %d, want 2", a.PlainSingleCount)
	}
	if !reflect.DeepEqual(a.VLANIDs, []int{100, 200}) {
		t.Errorf("VLANIDs = %v, want [100 200]", a.VLANIDs)
	}
}

func TestAnalyzeDropsInvalidPairs(t *testing.T) {
	interfaces := []InterfaceTagConfig{
		// same id on both sides is a parser artifact, never QinQ evidence
		{Name: "et-0/0/1.1", Kind: KindTaggedSub, Pair: &TagPair{Outer: 100, Inner: 100}},
		{Name: "et-0/0/1.2", Kind: KindTaggedSub, Pair: &TagPair{Outer: 0, Inner: 200}},
		{Name: "et-0/0/1.3", Kind: KindTaggedSub, Pair: &TagPair{Outer: 445, Inner: 100}},
	}

	a := Analyze(interfaces)

	if len(a.ValidPairs) != 1 {
		t.Fatalf("ValidPairs = %v, want exactly one valid pair", a.ValidPairs)
	}
	if a.ValidPairs[0] != (TagPair{Outer: 445, Inner: 100}) {
		t.Errorf("ValidPairs[0] = %v, want 445/100", a.ValidPairs[0])
	}
	if !reflect.DeepEqual(a.VLANIDs, []int{100, 445}) {
		t.Errorf("VLANIDs = %v, want tags of the valid pair only", a.VLANIDs)
	}
}

func TestAnalyzeRanges(t *testing.T) {
	interfaces := []InterfaceTagConfig{
		{Name: "et-0/0/1", Kind: KindPhysical, Range: &VLANRange{Start: 1, End: 4094}},
		{Name: "et-0/0/2", Kind: KindPhysical, Range: &VLANRange{Start: 100, End: 200}},
	}

	a := Analyze(interfaces)

	if a.FullRangeCount != 1 {
		t.Errorf("FullRangeCount = %d, want 1", a.FullRangeCount)
	}
	if !a.HasFullRange() {
		t.Error("HasFullRange() = false, want true")
	}
	if !a.HasSpecificRanges() {
		t.Error("HasSpecificRanges() = false, want true with a 100-200 range present")
	}
}

func TestAnalyzeManipulation(t *testing.T) {
	interfaces := []InterfaceTagConfig{
		{Name: "et-0/0/1", Kind: KindPhysical, Manipulation: &TagManipulation{PushOuter: "outer-tag 445"}},
		{Name: "et-0/0/2", Kind: KindPhysical, Manipulation: &TagManipulation{PopOuter: true}},
	}

	a := Analyze(interfaces)

	if a.PushCount != 1 || a.PopCount != 1 {
		t.Errorf("PushCount/PopCount = %d/%d, want 1/1", a.PushCount, a.PopCount)
	}
	if !a.HasSymmetricManipulation() {
		t.Error("HasSymmetricManipulation() = false, want true")
	}
}

func TestAnalyzeIgnoresOutOfRangeVLANs(t *testing.T) {
	interfaces := []InterfaceTagConfig{
		{Name: "et-0/0/1.0", Kind: KindTaggedSub, VLANID: intp(0)},
		{Name: "et-0/0/1.4095", Kind: KindTaggedSub, VLANID: intp(4095)},
		{Name: "et-0/0/1.100", Kind: KindTaggedSub, VLANID: intp(100)},
	}

	a := Analyze(interfaces)

	if !reflect.DeepEqual(a.VLANIDs, []int{100}) {
		t.Errorf("VLANIDs = %v, want [100]", a.VLANIDs)
	}
}
