package particle

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// ParseRange parses a value string from an emitter profile.
// Supports two formats:
//   - Fixed value: "9.8" → min=9.8, max=9.8
//   - Range: "[0.6 1.2]" → min=0.6, max=1.2
//
// An empty string yields 0, 0. A range whose bounds are reversed is
// normalized so that min <= max. NaN and infinite values are rejected.
func ParseRange(s string) (min, max float64, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}

	if !strings.HasPrefix(s, "[") {
		v, err := parseFinite(s)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid value %q: %w", s, err)
		}
		return v, v, nil
	}

	if !strings.HasSuffix(s, "]") {
		return 0, 0, fmt.Errorf("invalid range %q: missing ']'", s)
	}

	parts := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
	switch len(parts) {
	case 1:
		v, err := parseFinite(parts[0])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range %q: %w", s, err)
		}
		return v, v, nil
	case 2:
		min, err = parseFinite(parts[0])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range min %q: %w", s, err)
		}
		max, err = parseFinite(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range max %q: %w", s, err)
		}
		if min > max {
			min, max = max, min
		}
		return min, max, nil
	default:
		return 0, 0, fmt.Errorf("invalid range %q: expected 1 or 2 values, got %d", s, len(parts))
	}
}

// parseFinite parses a float and rejects NaN and ±Inf, which strconv accepts.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not finite", s)
	}
	return v, nil
}

// ParseSingle parses a fixed value, falling back to def when s is empty.
// A range is accepted and its midpoint returned.
func ParseSingle(s string, def float64) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	min, max, err := ParseRange(s)
	if err != nil {
		return 0, err
	}
	return (min + max) / 2, nil
}

// RandomInRange returns a random float64 in the range [min, max] drawn from rng.
func RandomInRange(rng *rand.Rand, min, max float64) float64 {
	if min >= max {
		return min
	}
	return min + rng.Float64()*(max-min)
}
