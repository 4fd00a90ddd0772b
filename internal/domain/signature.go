package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Username extraction patterns, evaluated in order. The order is part of
// the persisted-identity contract: signatures must stay byte-stable
// across releases, so new patterns go at the end.
var (
	// scope-prefixed forms: g_alice_v100, l_alice
	reScopePrefixed = regexp.MustCompile(`^([gl])_([a-z0-9]+)`)
	// bare name_vNNN forms: alice_v100
	reBareVLAN = regexp.MustCompile(`^([a-z0-9]+)_v\d+`)
	// compound hyphenated forms reduced to their base token: alice-mgmt-2
	reCompound = regexp.MustCompile(`^([a-z0-9]+)-[a-z0-9-]+`)
)

// ExtractUsername parses the owning username out of an admin-assigned
// service name, along with the scope encoded by the name prefix (if any).
// Returns ErrNoUsername when no naming convention matches; display names
// are untrusted hints and get no further interpretation.
func ExtractUsername(name string) (string, Scope, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", ScopeUnspecified, ErrNoUsername
	}

	if m := reScopePrefixed.FindStringSubmatch(n); m != nil {
		scope := ScopeGlobal
		if m[1] == "l" {
			scope = ScopeLocal
		}
		return m[2], scope, nil
	}
	if m := reBareVLAN.FindStringSubmatch(n); m != nil {
		return m[1], ScopeUnspecified, nil
	}
	if m := reCompound.FindStringSubmatch(n); m != nil {
		return m[1], ScopeUnspecified, nil
	}

	return "", ScopeUnspecified, ErrNoUsername
}

// GenerateSignature builds the canonical identity string for an instance,
// or fails when authoritative identity data is absent. It never invents a
// VLAN id and never reads identity out of free-text display names beyond
// the username extraction above.
func GenerateSignature(inst *ServiceInstance) (string, error) {
	username, nameScope, userErr := ExtractUsername(inst.Name)

	scope := inst.Scope
	if scope == ScopeUnspecified {
		scope = nameScope
	}

	switch inst.Type {
	case PortMode:
		if userErr != nil {
			return "", userErr
		}
		return "portmode:" + username, nil

	case SingleTagged, DoubleTagged, QinQSingleBD, QinQMultiBD:
		vlan, err := resolveVLANIdentity(inst)
		if err != nil {
			return "", err
		}
		if scope == ScopeLocal {
			// Local scope is only meaningful relative to an owner.
			if userErr != nil {
				return "", userErr
			}
			return fmt.Sprintf("local:%s:vlan:%d", username, vlan), nil
		}
		if username != "" {
			return fmt.Sprintf("global:%s:vlan:%d", username, vlan), nil
		}
		return fmt.Sprintf("global:vlan:%d", vlan), nil

	case SingleTaggedRange:
		if userErr != nil {
			return "", userErr
		}
		r, err := resolveRangeIdentity(inst)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s:range:%d-%d", username, r.Start, r.End), nil

	case SingleTaggedList:
		if userErr != nil {
			return "", userErr
		}
		ids, err := resolveListIdentity(inst)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.Itoa(id)
		}
		return username + ":list:" + strings.Join(parts, "_"), nil

	default:
		// Hybrid and empty bridge domains have no canonical identity;
		// they are routed to the review queue instead.
		return "", fmt.Errorf("%w: %s", ErrNoSignatureForm, inst.Type)
	}
}

// resolveVLANIdentity resolves the single VLAN id that identifies the
// service, using only authoritative sources in strict priority order:
// QinQ outer tag, declared primary VLAN, then an interface VLAN id from a
// record scraped off actual device configuration. The outer tag is the
// network-visible identifier for QinQ services; the inner/customer tag
// never contributes.
func resolveVLANIdentity(inst *ServiceInstance) (int, error) {
	if inst.Type.IsQinQ() && inst.OuterVLAN != nil && inRange(*inst.OuterVLAN) {
		return *inst.OuterVLAN, nil
	}
	if inst.VLANID != nil && inRange(*inst.VLANID) {
		return *inst.VLANID, nil
	}
	for i := range inst.Interfaces {
		cfg := &inst.Interfaces[i]
		if cfg.FromDeviceConfig && cfg.VLANID != nil && inRange(*cfg.VLANID) {
			return *cfg.VLANID, nil
		}
	}
	return 0, ErrNoAuthoritativeVLAN
}

// resolveRangeIdentity picks the VLAN range identity from device-sourced
// interface configs.
func resolveRangeIdentity(inst *ServiceInstance) (VLANRange, error) {
	for i := range inst.Interfaces {
		cfg := &inst.Interfaces[i]
		if cfg.FromDeviceConfig && cfg.Range != nil &&
			inRange(cfg.Range.Start) && inRange(cfg.Range.End) {
			return *cfg.Range, nil
		}
	}
	return VLANRange{}, ErrNoAuthoritativeVLAN
}

// resolveListIdentity unions the VLAN lists of device-sourced interface
// configs, sorted and deduplicated.
func resolveListIdentity(inst *ServiceInstance) ([]int, error) {
	set := make(map[int]struct{})
	for i := range inst.Interfaces {
		cfg := &inst.Interfaces[i]
		if !cfg.FromDeviceConfig {
			continue
		}
		for _, id := range cfg.List {
			if inRange(id) {
				set[id] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		return nil, ErrNoAuthoritativeVLAN
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

func inRange(id int) bool {
	return id >= VLANMin && id <= VLANMax
}
