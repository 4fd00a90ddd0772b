package snapshot

import (
	"fmt"

	"github.com/netfab/bdscan/internal/discovery"
	"github.com/netfab/bdscan/internal/domain"
)

// DeviceConfigCache is the per-run view of interface configs grouped by
// device name. It is built by one mapping pass, handed to whoever needs
// it, and dropped at the end of the run; never a process-wide singleton.
type DeviceConfigCache map[string][]domain.InterfaceTagConfig

// Mapper converts snapshot specs into discovery inputs.
type Mapper struct{}

// NewMapper creates a mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapServices converts a snapshot into discovery inputs and the per-run
// device config cache. Out-of-range VLAN values are rejected here; the
// core assumes normalized input.
func (m *Mapper) MapServices(snap *Snapshot) ([]discovery.ServiceInput, DeviceConfigCache, error) {
	inputs := make([]discovery.ServiceInput, 0, len(snap.BridgeDomains))
	cache := make(DeviceConfigCache)

	for i := range snap.BridgeDomains {
		bd := &snap.BridgeDomains[i]
		if bd.Name == "" {
			return nil, nil, fmt.Errorf("bridge domain %d has no name", i)
		}

		input := discovery.ServiceInput{
			Name:       bd.Name,
			Scope:      parseScope(bd.Scope),
			Imposition: bd.Imposition,
			VLANID:     bd.VLAN,
			OuterVLAN:  bd.Outer,
			InnerVLAN:  bd.Inner,
		}

		for _, dev := range bd.Devices {
			if dev.Name == "" {
				return nil, nil, fmt.Errorf("bridge domain %q has a device without a name", bd.Name)
			}
			input.Topology.Devices = append(input.Topology.Devices, domain.Device{
				Name: dev.Name,
				Role: dev.Role,
			})

			for _, spec := range dev.Interfaces {
				cfg, err := mapInterface(dev.Name, &spec)
				if err != nil {
					return nil, nil, fmt.Errorf("bridge domain %q: %w", bd.Name, err)
				}
				input.Interfaces = append(input.Interfaces, cfg)
				input.Topology.Interfaces = append(input.Topology.Interfaces, domain.Interface{
					Device: dev.Name,
					Name:   spec.Name,
				})
				cache[dev.Name] = append(cache[dev.Name], cfg)
			}
		}

		for _, p := range bd.Paths {
			path := domain.Path{
				Name:      p.Name,
				SourceDev: p.From,
				DestDev:   p.To,
			}
			for _, seg := range p.Segments {
				path.Segments = append(path.Segments, domain.PathSegment{
					SourceDevice:    seg.From,
					SourceInterface: seg.FromIf,
					DestDevice:      seg.To,
					DestInterface:   seg.ToIf,
				})
			}
			input.Topology.Paths = append(input.Topology.Paths, path)
		}

		inputs = append(inputs, input)
	}

	return inputs, cache, nil
}

func mapInterface(device string, spec *InterfaceSpec) (domain.InterfaceTagConfig, error) {
	cfg := domain.InterfaceTagConfig{
		Name:             spec.Name,
		Device:           device,
		Kind:             parseKind(spec.Kind),
		List:             spec.List,
		L2Service:        spec.L2Service,
		FromDeviceConfig: spec.FromDeviceConfig,
	}

	if spec.Name == "" {
		return cfg, fmt.Errorf("device %s has an interface without a name", device)
	}

	if spec.VLAN != nil {
		if err := checkVLAN(*spec.VLAN); err != nil {
			return cfg, fmt.Errorf("interface %s/%s: %w", device, spec.Name, err)
		}
		cfg.VLANID = spec.VLAN
	}

	if spec.RangeStart != nil || spec.RangeEnd != nil {
		if spec.RangeStart == nil || spec.RangeEnd == nil {
			return cfg, fmt.Errorf("interface %s/%s: range needs both start and end", device, spec.Name)
		}
		if err := checkVLAN(*spec.RangeStart); err != nil {
			return cfg, fmt.Errorf("interface %s/%s: %w", device, spec.Name, err)
		}
		if err := checkVLAN(*spec.RangeEnd); err != nil {
			return cfg, fmt.Errorf("interface %s/%s: %w", device, spec.Name, err)
		}
		if *spec.RangeStart > *spec.RangeEnd {
			return cfg, fmt.Errorf("interface %s/%s: inverted range %d-%d", device, spec.Name, *spec.RangeStart, *spec.RangeEnd)
		}
		cfg.Range = &domain.VLANRange{Start: *spec.RangeStart, End: *spec.RangeEnd}
	}

	for _, id := range spec.List {
		if err := checkVLAN(id); err != nil {
			return cfg, fmt.Errorf("interface %s/%s: %w", device, spec.Name, err)
		}
	}

	if spec.Outer != nil && spec.Inner != nil {
		// Out-of-range or outer==inner pairs are carried through; the
		// analyzer drops them from the valid-pair list itself.
		cfg.Pair = &domain.TagPair{Outer: *spec.Outer, Inner: *spec.Inner}
	}

	if spec.PushOuter != "" || spec.PopOuter {
		cfg.Manipulation = &domain.TagManipulation{
			PushOuter: spec.PushOuter,
			PopOuter:  spec.PopOuter,
		}
	}

	return cfg, nil
}

func parseScope(s string) domain.Scope {
	switch s {
	case "local":
		return domain.ScopeLocal
	case "global":
		return domain.ScopeGlobal
	default:
		return domain.ScopeUnspecified
	}
}

func parseKind(s string) domain.InterfaceKind {
	switch s {
	case "bundle":
		return domain.KindBundle
	case "tagged":
		return domain.KindTaggedSub
	default:
		return domain.KindPhysical
	}
}

func checkVLAN(id int) error {
	if id < domain.VLANMin || id > domain.VLANMax {
		return fmt.Errorf("vlan id %d out of range [%d,%d]", id, domain.VLANMin, domain.VLANMax)
	}
	return nil
}
