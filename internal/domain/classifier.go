package domain

// Classification confidence levels, 0..100. The exact values are part of
// the published contract and surface directly in operator output.
const (
	ConfidenceEmpty          = 10
	ConfidencePortMode       = 95
	ConfidenceStaticDouble   = 95
	ConfidenceQinQSingle     = 95
	ConfidenceQinQMulti      = 90
	ConfidenceHybrid         = 75
	ConfidenceQinQFallback   = 60
	ConfidenceTaggedRange    = 85
	ConfidenceTaggedList     = 85
	ConfidenceSingleOne      = 90
	ConfidenceSingleMany     = 70
	ConfidenceSingleFallback = 30
)

// Classification is the classifier's full verdict: type, confidence and
// the analysis it was derived from, so callers can surface uncertainty
// instead of silently trusting a guess.
type Classification struct {
	Type       ServiceType            `json:"type"`
	Confidence int                    `json:"confidence"`
	Analysis   ClassificationAnalysis `json:"analysis"`

	// Reason is a short human-readable explanation of the winning rule.
	Reason string `json:"reason"`

	// Ambiguous is set when QinQ evidence was found but no sub-type rule
	// matched cleanly and the fallback applied. Not an error; the caller
	// decides whether a conf-60 verdict is actionable.
	Ambiguous bool `json:"ambiguous,omitempty"`
}

// Classify runs the ordered decision procedure over a service's interface
// configs. First match wins; later rules are stricter fallbacks. Pure and
// deterministic: identical input always yields the identical verdict.
func Classify(interfaces []InterfaceTagConfig) Classification {
	analysis := Analyze(interfaces)

	if len(interfaces) == 0 {
		return Classification{
			Type:       EmptyBridgeDomain,
			Confidence: ConfidenceEmpty,
			Analysis:   analysis,
			Reason:     "no interfaces",
		}
	}

	if noVLANConfig(interfaces) {
		if allPhysical(interfaces) && analysis.L2ServiceCount > 0 {
			return Classification{
				Type:       PortMode,
				Confidence: ConfidencePortMode,
				Analysis:   analysis,
				Reason:     "physical interfaces with L2 service and no VLAN configuration",
			}
		}
		return Classification{
			Type:       EmptyBridgeDomain,
			Confidence: ConfidenceEmpty,
			Analysis:   analysis,
			Reason:     "no VLAN configuration on any interface",
		}
	}

	if reason, ok := qinqEvidence(&analysis); ok {
		// The sub-type rule's confidence is authoritative once generic
		// QinQ evidence has been established.
		c := qinqSubtype(&analysis)
		c.Analysis = analysis
		c.Reason = reason + "; " + c.Reason
		return c
	}

	if len(analysis.Ranges) > 0 && !analysis.HasManipulation() {
		return Classification{
			Type:       SingleTaggedRange,
			Confidence: ConfidenceTaggedRange,
			Analysis:   analysis,
			Reason:     "VLAN ranges without manipulation",
		}
	}

	if len(analysis.Lists) > 0 && !analysis.HasManipulation() {
		return Classification{
			Type:       SingleTaggedList,
			Confidence: ConfidenceTaggedList,
			Analysis:   analysis,
			Reason:     "VLAN lists without manipulation",
		}
	}

	switch analysis.DistinctVLANs() {
	case 1:
		return Classification{
			Type:       SingleTagged,
			Confidence: ConfidenceSingleOne,
			Analysis:   analysis,
			Reason:     "single distinct VLAN id",
		}
	case 0:
		return Classification{
			Type:       SingleTagged,
			Confidence: ConfidenceSingleFallback,
			Analysis:   analysis,
			Reason:     "default single-tagged verdict with no distinct VLAN ids",
		}
	default:
		return Classification{
			Type:       SingleTagged,
			Confidence: ConfidenceSingleMany,
			Analysis:   analysis,
			Reason:     "multiple distinct VLAN ids without range/list/QinQ evidence",
		}
	}
}

// qinqEvidence evaluates the four QinQ evidence rules in strict priority
// order. Returns the matched rule's explanation.
func qinqEvidence(a *ClassificationAnalysis) (string, bool) {
	if a.HasSymmetricManipulation() &&
		(len(a.ValidPairs) > 0 || len(a.Ranges) > 0 || a.HasFullRange()) {
		return "push+pop manipulation with pair/range evidence", true
	}
	if len(a.ValidPairs) > 0 {
		return "valid outer/inner tag pairs", true
	}
	if a.HasManipulation() && len(a.Ranges) > 0 && a.DistinctVLANs() > 1 {
		return "manipulation with VLAN ranges and multiple VLANs", true
	}
	if a.HasFullRange() && (a.HasManipulation() || a.DistinctVLANs() > 1) {
		return "full 1-4094 range with manipulation or multiple VLANs", true
	}
	return "", false
}

// qinqSubtype selects the specific DNAAS sub-pattern once generic QinQ
// evidence has been established.
func qinqSubtype(a *ClassificationAnalysis) Classification {
	switch {
	case len(a.ValidPairs) > 0 && !a.HasManipulation():
		return Classification{
			Type:       DoubleTagged,
			Confidence: ConfidenceStaticDouble,
			Reason:     "static double-tag pairs without manipulation",
		}
	case a.HasFullRange() && a.HasManipulation():
		return Classification{
			Type:       QinQSingleBD,
			Confidence: ConfidenceQinQSingle,
			Reason:     "full range with manipulation",
		}
	case a.HasSpecificRanges() && a.HasManipulation():
		return Classification{
			Type:       QinQMultiBD,
			Confidence: ConfidenceQinQMulti,
			Reason:     "specific ranges with manipulation",
		}
	case a.HasManipulation() && len(a.ValidPairs) > 0:
		return Classification{
			Type:       Hybrid,
			Confidence: ConfidenceHybrid,
			Reason:     "mixed manipulation and static double-tag patterns",
		}
	default:
		return Classification{
			Type:       DoubleTagged,
			Confidence: ConfidenceQinQFallback,
			Reason:     "QinQ evidence without a clean sub-type match",
			Ambiguous:  true,
		}
	}
}

func noVLANConfig(interfaces []InterfaceTagConfig) bool {
	for i := range interfaces {
		if interfaces[i].HasVLANConfig() {
			return false
		}
	}
	return true
}

func allPhysical(interfaces []InterfaceTagConfig) bool {
	for i := range interfaces {
		if interfaces[i].Kind == KindTaggedSub {
			return false
		}
	}
	return true
}
