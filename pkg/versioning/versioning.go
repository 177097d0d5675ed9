// Package versioning compares the dotted-numeric version strings used
// by provides/depends metadata. This is deliberately not a full semver
// comparator: components are plain non-negative integers and anything
// else refuses to compare.
package versioning

import (
	"errors"
	"strconv"
	"strings"
)

type Comparison int

const (
	ComparisonUnknown Comparison = iota
	ComparisonLess
	ComparisonEqual
	ComparisonGreater
)

// ErrNotNumeric is returned when a version component fails to parse as
// a non-negative integer. Callers resolving dependency ranges treat
// this as "cannot satisfy" rather than as a fatal error.
var ErrNotNumeric = errors.New("version component is not numeric")

// Compare orders two dotted-numeric versions. The shorter sequence is
// right-padded with zeros, so "1.2" equals "1.2.0".
func Compare(a, b string) (Comparison, error) {
	av, err := parse(a)
	if err != nil {
		return ComparisonUnknown, err
	}
	bv, err := parse(b)
	if err != nil {
		return ComparisonUnknown, err
	}

	for len(av) < len(bv) {
		av = append(av, 0)
	}
	for len(bv) < len(av) {
		bv = append(bv, 0)
	}

	for i := range av {
		switch {
		case av[i] < bv[i]:
			return ComparisonLess, nil
		case av[i] > bv[i]:
			return ComparisonGreater, nil
		}
	}
	return ComparisonEqual, nil
}

// InRange reports whether version lies within [min, max]. Empty bounds
// are unbounded. A non-numeric component anywhere fails closed.
func InRange(version, min, max string) bool {
	if min != "" {
		cmp, err := Compare(version, min)
		if err != nil || cmp == ComparisonLess {
			return false
		}
	}
	if max != "" {
		cmp, err := Compare(version, max)
		if err != nil || cmp == ComparisonGreater {
			return false
		}
	}
	return true
}

func parse(version string) ([]int, error) {
	parts := strings.Split(version, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, ErrNotNumeric
		}
		out = append(out, n)
	}
	return out, nil
}
