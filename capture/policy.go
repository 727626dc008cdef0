package capture

import "fmt"

// MergePolicy governs what happens when a capture name is reused within a
// document.
type MergePolicy string

const (
	// PolicyError rejects a re-capture whose content differs from the stored
	// value; identical re-captures are idempotent. This is the default.
	PolicyError MergePolicy = "error"
	// PolicyOverwrite discards the stored value and keeps the new content.
	PolicyOverwrite MergePolicy = "overwrite"
	// PolicyAppend appends the new content to the stored value.
	PolicyAppend MergePolicy = "append"
)

// ParsePolicy maps a policy option to its MergePolicy. The empty string
// selects the default. Unknown values are rejected before any rendering
// takes place.
func ParsePolicy(raw string) (MergePolicy, error) {
	switch MergePolicy(raw) {
	case "":
		return PolicyError, nil
	case PolicyError, PolicyOverwrite, PolicyAppend:
		return MergePolicy(raw), nil
	default:
		return "", &UsageError{Msg: fmt.Sprintf("unknown merge policy %q (want error, overwrite, or append)", raw)}
	}
}
