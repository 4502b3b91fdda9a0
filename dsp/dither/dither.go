// Package dither converts normalized float samples to integer PCM at a given
// bit depth, optionally adding dither noise before rounding.
package dither

import (
	"fmt"
	"strings"
)

// DitherType selects the probability distribution used for dither noise.
type DitherType int

const (
	// DitherNone applies no dither (plain rounding). Digital silence stays
	// exactly zero.
	DitherNone DitherType = iota
	// DitherRectangular uses a uniform (rectangular) PDF of ±1 LSB.
	DitherRectangular
	// DitherTriangular uses a triangular PDF (TPDF) of ±1 LSB.
	DitherTriangular

	ditherTypeCount // sentinel for validation
)

var ditherTypeNames = [ditherTypeCount]string{"None", "Rectangular", "Triangular"}

// String returns the name of the dither type.
func (dt DitherType) String() string {
	if dt.Valid() {
		return ditherTypeNames[dt]
	}
	return fmt.Sprintf("DitherType(%d)", dt)
}

// Valid reports whether dt is a known dither type.
func (dt DitherType) Valid() bool {
	return dt >= 0 && dt < ditherTypeCount
}

// ParseDitherType resolves a dither type by name, case-insensitively.
// "tpdf" and "rpdf" are accepted as aliases.
func ParseDitherType(name string) (DitherType, error) {
	switch strings.ToLower(name) {
	case "tpdf":
		return DitherTriangular, nil
	case "rpdf":
		return DitherRectangular, nil
	}
	for i, n := range ditherTypeNames {
		if strings.EqualFold(n, name) {
			return DitherType(i), nil
		}
	}
	return DitherNone, fmt.Errorf("dither: unknown dither type %q", name)
}
