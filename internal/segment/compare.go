package segment

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

const fnvSeed = uint64(1469598103934665603)

// fnvString folds s into the running FNV-1a hash h.
func fnvString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// xxhashString is used where a faster, non-cryptographic digest over
// larger key material is wanted (header uniqueID's companion hashCode).
func xxhashString(s string) uint64 {
	return xxhash.Sum64String(s)
}

// compareValues orders two cube values with a deterministic, NULL-last
// rule: nil sorts after every non-nil value. Non-nil values are compared
// by type-specific ordering where possible, falling back to their
// formatted text form so the ordering stays total and deterministic.
func compareValues(a, b Value) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}

	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return compareOrdered(av, bv)
		}
	case int:
		if bv, ok := b.(int); ok {
			return compareOrdered(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return compareOrdered(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return compareOrdered(av, bv)
		}
	}

	as, bs := formatValue(a), formatValue(b)
	return compareOrdered(as, bs)
}

func compareOrdered[T int | int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// formatValue renders a cube value to a deterministic textual form, used
// both as a fallback ordering key and as key material for hashing.
func formatValue(v Value) string {
	if v == nil {
		return "\x00NULL"
	}
	return fmt.Sprintf("%v", v)
}
