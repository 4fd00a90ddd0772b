package redis

import "fmt"

const (
	// KeyPrefixInstance is the prefix for instance keys, suffixed with
	// the exact signature string. Lookups are byte-exact, never fuzzy.
	KeyPrefixInstance = "bdscan:instance:"
	// KeyAllInstances is the set of all stored signatures.
	KeyAllInstances = "bdscan:instances:all"
	// KeyPrefixGroup is the prefix for consolidation-group records.
	KeyPrefixGroup = "bdscan:group:"
	// KeyAllGroups is the set of all stored group signatures.
	KeyAllGroups = "bdscan:groups:all"
	// KeyReview holds the JSON-encoded review queue of the latest run.
	KeyReview = "bdscan:review"
)

// InstanceKey returns the redis key for an instance by signature.
func InstanceKey(signature string) string {
	return KeyPrefixInstance + signature
}

// GroupKey returns the redis key for a consolidation group by signature.
func GroupKey(signature string) string {
	return KeyPrefixGroup + signature
}

// ExtractSignature extracts the signature from an instance key.
func ExtractSignature(key string) (string, error) {
	if len(key) <= len(KeyPrefixInstance) {
		return "", fmt.Errorf("invalid instance key: %s", key)
	}
	return key[len(KeyPrefixInstance):], nil
}
