package domain

import "errors"

// Signature generation failures. All are intentional fail-closed
// outcomes: an instance without an authoritative identity goes to the
// review queue, it is never given a fabricated signature.
var (
	// ErrNoUsername means no naming-convention pattern matched the
	// service's admin-assigned name.
	ErrNoUsername = errors.New("no username")

	// ErrNoAuthoritativeVLAN means VLAN identity could not be resolved
	// from any authoritative source (QinQ outer tag, declared primary
	// VLAN, device-sourced interface VLAN).
	ErrNoAuthoritativeVLAN = errors.New("no authoritative VLAN")

	// ErrNoSignatureForm means the service type has no defined signature
	// format (hybrid and empty bridge domains are reviewed by hand).
	ErrNoSignatureForm = errors.New("service type has no signature form")
)

// UnsafeMergeError reports the specific pairwise safety rule that failed
// inside a consolidation group. The message is operator-facing.
type UnsafeMergeError struct {
	Rule   string // failing rule, e.g. "service type"
	Detail string
}

func (e *UnsafeMergeError) Error() string {
	return "unsafe merge: " + e.Rule + ": " + e.Detail
}
