// Package units implements dimension-scoped unit conversion and display
// formatting for canonical metrics. A flat table of linear factors per
// dimension plus a format-aware strategy for time keeps the whole thing
// exhaustively checkable; there is deliberately no type hierarchy here.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Dimension is a measurement category. Units are only convertible within
// one dimension.
type Dimension string

const (
	Distance     Dimension = "distance"
	Speed        Dimension = "speed"
	Time         Dimension = "time"
	Acceleration Dimension = "acceleration"
	Percentage   Dimension = "percentage"
	Count        Dimension = "count"
)

// Configuration errors. An unknown dimension or unit means the catalog or a
// stored mapping is broken; callers must fail fast, not substitute.
var (
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrUnknownUnit      = errors.New("unknown unit for dimension")
	ErrBadTimeFormat    = errors.New("malformed time value")
)

// DefaultDisplayUnit is the fallback for rendering paths when a metric
// lookup misses entirely. Rendering a table must not crash on one bad key.
const DefaultDisplayUnit = "m"

// canonicalUnits names the authoritative unit per dimension. All linear
// factors below are expressed relative to it.
var canonicalUnits = map[Dimension]string{
	Distance:     "m",
	Speed:        "m/s",
	Time:         "s",
	Acceleration: "m/s2",
	Percentage:   "%",
	Count:        "count",
}

// linearFactors: value_in_canonical = value_in_unit * factor.
// Time carries factors too (s, min) but colon-formatted strings go through
// ParseClock before any of this applies.
var linearFactors = map[Dimension]map[string]float64{
	Distance: {
		"m":  1,
		"km": 1000,
		"yd": 0.9144,
	},
	Speed: {
		"m/s":  1,
		"km/h": 1.0 / 3.6,
	},
	Time: {
		"s":   1,
		"min": 60,
	},
	Acceleration: {
		"m/s2": 1,
	},
	Percentage: {
		"%": 1,
	},
	Count: {
		"count": 1,
	},
}

// CanonicalUnit returns the authoritative unit for a dimension.
func CanonicalUnit(d Dimension) (string, error) {
	u, ok := canonicalUnits[d]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, d)
	}
	return u, nil
}

// Valid reports whether d is a known dimension.
func Valid(d Dimension) bool {
	_, ok := canonicalUnits[d]
	return ok
}

// Known reports whether unit belongs to dimension d.
func Known(d Dimension, unit string) bool {
	fs, ok := linearFactors[d]
	if !ok {
		return false
	}
	_, ok = fs[unit]
	return ok
}

// Convert converts value between two units of the same dimension using the
// linear factor table. Both units must be registered for the dimension.
func Convert(value float64, from, to string, d Dimension) (float64, error) {
	fs, ok := linearFactors[d]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDimension, d)
	}
	ff, ok := fs[from]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %q", ErrUnknownUnit, from, d)
	}
	ft, ok := fs[to]
	if !ok {
		return 0, fmt.Errorf("%w: %q in %q", ErrUnknownUnit, to, d)
	}
	return value * ff / ft, nil
}

// ParseClock parses a colon-delimited H:MM:SS (or M:SS) string into whole
// minutes using floor(H*60 + M + round(S/60)). Plain numeric strings are
// accepted as-is in the given unit and converted to minutes.
func ParseClock(raw string, numericUnit string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadTimeFormat)
	}
	if !strings.Contains(raw, ":") {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, raw)
		}
		return Convert(v, numericUnit, "min", Time)
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, raw)
	}
	// Right-align: M:SS means zero hours.
	var h, m, s int
	var err error
	switch len(parts) {
	case 2:
		if m, err = atoiStrict(parts[0]); err == nil {
			s, err = atoiStrict(parts[1])
		}
	case 3:
		if h, err = atoiStrict(parts[0]); err == nil {
			if m, err = atoiStrict(parts[1]); err == nil {
				s, err = atoiStrict(parts[2])
			}
		}
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadTimeFormat, raw)
	}
	minutes := h*60 + m + int(math.Round(float64(s)/60.0))
	return float64(minutes), nil
}

func atoiStrict(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad segment %q", s)
	}
	return n, nil
}

// FormatClock renders a minutes value back as H:MM:SS. Fractional minutes
// become seconds; averaging time columns produces fractions routinely.
func FormatClock(minutes float64) string {
	if minutes < 0 {
		minutes = 0
	}
	totalSeconds := int(math.Round(minutes * 60))
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// FormatValue renders a numeric value for display. Percentage values are
// always whole numbers. Everything else rounds to the nearest integer unless
// precision asks for decimals (precision < 0 means "use the default").
func FormatValue(value float64, d Dimension, precision int) string {
	if d == Percentage {
		return strconv.Itoa(int(math.Round(value)))
	}
	if precision < 0 {
		precision = 0
	}
	return strconv.FormatFloat(roundTo(value, precision), 'f', precision, 64)
}

// roundTo rounds half away from zero at the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// Round1 rounds to one decimal. Percentage deviations use it everywhere so
// the math stays identical between team and player comparisons.
func Round1(v float64) float64 { return roundTo(v, 1) }
